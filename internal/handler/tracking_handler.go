package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TrackingService is the upstream proxy used by TrackingHandler.
type TrackingService interface {
	Devices(ctx context.Context) ([]byte, error)
	Positions(ctx context.Context) ([]byte, error)
}

// TrackingHandler proxies Traccar queries.
type TrackingHandler struct {
	service TrackingService
	log     *slog.Logger
}

func NewTrackingHandler(service TrackingService, log *slog.Logger) *TrackingHandler {
	return &TrackingHandler{service: service, log: log}
}

// RegisterRoutes registers the tracking proxy routes.
func (h *TrackingHandler) RegisterRoutes(r *gin.RouterGroup) {
	traccar := r.Group("/api/traccar")
	{
		traccar.GET("/devices", h.Devices)
		traccar.GET("/positions", h.Positions)
	}
}

// Devices handles GET /api/traccar/devices.
func (h *TrackingHandler) Devices(c *gin.Context) {
	body, err := h.service.Devices(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}

// Positions handles GET /api/traccar/positions.
func (h *TrackingHandler) Positions(c *gin.Context) {
	body, err := h.service.Positions(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
