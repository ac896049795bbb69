package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts returns the whole catalog with live stock
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
