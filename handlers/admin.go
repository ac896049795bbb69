package handlers

import (
	"net/http"

	"water-delivery-api/middleware"
	"water-delivery-api/models"

	"github.com/gin-gonic/gin"
)

type ApproveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type SetRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

// AdminGetAllUsers returns all users without password hashes (admin only)
func (h *Handlers) AdminGetAllUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if role := c.Query("role"); role != "" {
		kept := make([]models.User, 0, len(users))
		for _, u := range users {
			if string(u.Role) == role {
				kept = append(kept, u)
			}
		}
		users = kept
	}
	c.JSON(http.StatusOK, users)
}

// AdminApproveUser activates or deactivates an account (admin only)
func (h *Handlers) AdminApproveUser(c *gin.Context) {
	var req ApproveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor := middleware.ClaimsFrom(c).UserID
	if err := h.Admin.SetApproval(c.Request.Context(), actor, c.Param("user_id"), *req.IsActive); err != nil {
		h.respondError(c, err)
		return
	}

	msg := "User deactivated successfully"
	if *req.IsActive {
		msg = "User approved successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// AdminSetUserRole assigns customer or admin (admin only)
func (h *Handlers) AdminSetUserRole(c *gin.Context) {
	var req SetRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor := middleware.ClaimsFrom(c).UserID
	if err := h.Admin.SetRole(c.Request.Context(), actor, c.Param("user_id"), req.Role); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User role updated to " + string(req.Role)})
}
