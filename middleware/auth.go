package middleware

import (
	"net/http"
	"strings"

	"water-delivery-api/apperr"
	"water-delivery-api/auth"
	"water-delivery-api/models"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// AuthRequired verifies the bearer token and stores the typed claims in the
// context for later middleware and handlers.
func AuthRequired(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, apperr.Unauthorized("Authorization token required"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RoleRequired must run after AuthRequired.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireRole(ClaimsFrom(c), roles...); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the verified claims, or nil outside an authenticated route.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := val.(*auth.Claims)
	return claims
}

func abortWithError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.Status()
	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": e.Message})
}
