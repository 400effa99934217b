// Package handler exposes the relay over HTTP.
package handler

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RouterConfig holds the HTTP-layer settings.
type RouterConfig struct {
	AllowedOrigins []string
}

// NewRouter builds the gin engine with middleware and all API routes registered.
func NewRouter(
	cfg RouterConfig,
	log *slog.Logger,
	tracking *TrackingHandler,
	eta *ETAHandler,
	routes *RouteHandler,
	positions *PositionHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(log))
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	tracking.RegisterRoutes(&router.RouterGroup)
	eta.RegisterRoutes(&router.RouterGroup)
	routes.RegisterRoutes(&router.RouterGroup)
	positions.RegisterRoutes(&router.RouterGroup)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func loggerMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(requestIDHeader),
		)
	}
}

func recoveryMiddleware(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "Panic while serving request",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDHeader),
		)
		c.AbortWithStatusJSON(500, gin.H{"error": "internal server error"})
	})
}
