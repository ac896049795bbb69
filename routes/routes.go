package routes

import (
	"water-delivery-api/auth"
	"water-delivery-api/handlers"
	"water-delivery-api/metrics"
	"water-delivery-api/middleware"
	"water-delivery-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the engine with the global middleware and all routes.
func NewRouter(h *handlers.Handlers, tokens *auth.TokenService, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		metrics.Middleware(),
		middleware.CORS(),
	)
	SetupRoutes(r, h, tokens)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handlers, tokens *auth.TokenService) {
	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.GET("/state-machine", h.GetStateMachineInfo)

		if h.SeedEnabled {
			public.POST("/seed", h.Seed)
		}
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(tokens))
	{
		authed.GET("/auth/me", h.Me)

		authed.GET("/products", h.ListProducts)
		authed.GET("/products/:id", h.GetProduct)

		authed.POST("/orders", h.PlaceOrder)
		authed.GET("/orders/my-orders", h.GetMyOrders)
		authed.GET("/orders/:order_id", h.GetOrder)
		authed.PATCH("/orders/:order_id/status", h.UpdateOrderStatus)

		authed.GET("/orders", middleware.RoleRequired(models.RoleAdmin), h.GetAllOrders)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(tokens), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/users", h.AdminGetAllUsers)
		admin.PATCH("/users/:user_id/approve", h.AdminApproveUser)
		admin.PATCH("/users/:user_id/role", h.AdminSetUserRole)
	}
}
