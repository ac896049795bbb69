package handlers

import (
	"net/http"

	"water-delivery-api/middleware"
	"water-delivery-api/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	FullName    string   `json:"full_name" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=6"`
	PhoneNumber string   `json:"phone_number"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an inactive customer account
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully. Waiting for admin approval.",
		"token":   res.Token,
		"user":    res.User.Summary(),
	})
}

// Login authenticates a user and returns a JWT
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User.Summary(),
	})
}

// Me returns the authenticated user's profile
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.Auth.CurrentUser(c.Request.Context(), middleware.ClaimsFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
