package v1

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logicv1 "github.com/duynhne/contact-service/internal/logic/v1"
	"github.com/duynhne/contact-service/middleware"
)

// readinessTimeout bounds the store ping behind /ready.
const readinessTimeout = 2 * time.Second

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Service *logicv1.ContactService
	Logger  *zap.Logger
	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
	// ShuttingDown flips /ready to 503 while the server drains. Optional.
	ShuttingDown *atomic.Bool
}

// NewRouter builds the gin engine with middleware, health endpoints and contact routes.
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Tracing middleware (must be first for context propagation)
	r.Use(middleware.TracingMiddleware())
	// Logging middleware (must be before Prometheus middleware)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Returns 503 once shutdown has started or when the store is unreachable.
	r.GET("/ready", func(c *gin.Context) {
		if opts.ShuttingDown != nil && opts.ShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := opts.Service.Ping(ctx); err != nil {
			middleware.GetLoggerFromGinContext(c).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	RegisterRoutes(r, NewContactHandler(opts.Service))

	return r
}

// RegisterRoutes mounts the contact CRUD routes.
func RegisterRoutes(r gin.IRouter, h *ContactHandler) {
	contacts := r.Group("/contacts")
	{
		contacts.POST("", h.CreateContact)
		contacts.GET("", h.ListContacts)
		contacts.GET("/:id", h.GetContact)
		contacts.PUT("/:id", h.UpdateContact)
		contacts.DELETE("/:id", h.DeleteContact)
	}
}
