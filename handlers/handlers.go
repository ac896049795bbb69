package handlers

import (
	"net/http"

	"water-delivery-api/apperr"
	"water-delivery-api/middleware"
	"water-delivery-api/services"
	"water-delivery-api/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers holds the services every route needs. Build one per router.
type Handlers struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Admin   *services.AdminService

	Store       store.Store
	BcryptCost  int
	SeedEnabled bool
	Log         logrus.FieldLogger
}

// respondError writes {"error": msg} with the status for the error kind.
// Internal causes are logged and replaced by a generic message.
func (h *Handlers) respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.Status()
	if status == http.StatusInternalServerError {
		h.Log.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFrom(c),
			"path":       c.FullPath(),
		}).WithError(err).Error(e.Message)
	}
	c.JSON(status, gin.H{"error": e.Message})
}

func (h *Handlers) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
