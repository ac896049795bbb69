package handlers

import (
	"net/http"

	"water-delivery-api/middleware"
	"water-delivery-api/models"
	"water-delivery-api/services"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	ReadyTime string `json:"ready_time"`
	DueTime   string `json:"due_time"`
	OrderDate string `json:"order_date"`
	Notes     string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// PlaceOrder creates a new order for the caller
func (h *Handlers) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.Orders.Create(c.Request.Context(), middleware.ClaimsFrom(c), services.CreateOrderInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		ReadyTime: req.ReadyTime,
		DueTime:   req.DueTime,
		OrderDate: req.OrderDate,
		Notes:     req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handlers) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListMine(c.Request.Context(), middleware.ClaimsFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filterByStatus(orders, c.Query("status")))
}

// GetAllOrders returns every order (admin only)
func (h *Handlers) GetAllOrders(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	orders = filterByStatus(orders, c.Query("status"))
	if customerID := c.Query("customer_id"); customerID != "" {
		kept := orders[:0]
		for _, o := range orders {
			if o.CustomerID == customerID {
				kept = append(kept, o)
			}
		}
		orders = kept
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order to its owner or an admin
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.Orders.Get(c.Request.Context(), middleware.ClaimsFrom(c), c.Param("order_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus sets a new status and records it in the change log
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.Orders.UpdateStatus(c.Request.Context(), middleware.ClaimsFrom(c), c.Param("order_id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated to " + string(req.Status)})
}

func filterByStatus(orders []models.Order, status string) []models.Order {
	if status == "" {
		return orders
	}
	kept := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if string(o.Status) == status {
			kept = append(kept, o)
		}
	}
	return kept
}
