// Package metrics holds the prometheus collectors for HTTP traffic and the
// order ledger, plus the gin middleware and /metrics handler.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "water_delivery"

// Rejection reasons for OrderRejections.
const (
	ReasonInactiveAccount   = "inactive_account"
	ReasonProductNotFound   = "product_not_found"
	ReasonInsufficientStock = "insufficient_stock"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Orders successfully placed.",
	})

	// OrderRejections counts order attempts refused by a business rule.
	OrderRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "rejections_total",
			Help:      "Order attempts rejected, by reason.",
		},
		[]string{"reason"},
	)

	StatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Order status updates, by new status.",
		},
		[]string{"status"},
	)
)

// Registry is private to the service so tests can build many routers
// without duplicate-registration panics on the default registry.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		OrdersCreated,
		OrderRejections,
		StatusChanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Middleware records duration and count per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// Handler serves the registry in the prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
