// Package auth issues and verifies bearer tokens, checks roles and hashes
// passwords. Verification is pure: no store access, safe for concurrent use.
package auth

import (
	"fmt"
	"strings"
	"time"

	"water-delivery-api/apperr"
	"water-delivery-api/models"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "water-delivery-api"

type Claims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a signed HS256 token for user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns its claims. Any failure (empty,
// malformed, wrong algorithm, bad signature, expired) is Unauthorized.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, apperr.Unauthorized("Authorization token required")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Invalid or expired token", Err: err}
	}
	if claims.UserID == "" {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

// RequireRole fails with Forbidden unless claims carries one of roles.
func RequireRole(claims *Claims, roles ...models.UserRole) error {
	if claims == nil {
		return apperr.Unauthorized("Authorization token required")
	}
	for _, r := range roles {
		if claims.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("Access denied. Required role(s): " + rolesString(roles))
}

func rolesString(roles []models.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
