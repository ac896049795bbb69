package handlers

import (
	"context"
	"net/http"
	"time"

	"water-delivery-api/models"
	"water-delivery-api/seed"
	"water-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

const serviceName = "Water Delivery Ordering API"

func (h *Handlers) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the " + serviceName,
		"docs":    "/api/state-machine",
		"health":  "/health",
		"roles":   []models.UserRole{models.RoleCustomer, models.RoleAdmin},
	})
}

// Health pings the store; 503 when it is unreachable
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.WithError(err).Warn("health check: store unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": "1.0.0",
	})
}

// GetStateMachineInfo lists the order statuses and allowed transitions
func (h *Handlers) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":        statemachine.Statuses(),
		"state_machine":   statemachine.GetAllTransitions(),
		"initial_state":   models.StatusPlanned,
		"terminal_states": []models.OrderStatus{},
		"description":     "Water delivery order lifecycle. Any status may follow any other.",
	})
}

// Seed loads the development catalog and admin account; routed only when enabled
func (h *Handlers) Seed(c *gin.Context) {
	res, err := seed.Run(c.Request.Context(), h.Store, h.BcryptCost, h.Log)
	if err != nil {
		h.respondError(c, err)
		return
	}
	msg := "Seed data created"
	if res.Skipped {
		msg = "Seed data already present"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "result": res})
}
