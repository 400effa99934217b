package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/gin-gonic/gin"
)

// RouteRecorder is the route history used by RouteHandler.
type RouteRecorder interface {
	Submit(ctx context.Context, origin, destination string) (models.RouteEntry, error)
	Latest(ctx context.Context) ([]models.RouteEntry, error)
}

// RouteHandler serves route submission and history.
type RouteHandler struct {
	service RouteRecorder
	log     *slog.Logger
}

func NewRouteHandler(service RouteRecorder, log *slog.Logger) *RouteHandler {
	return &RouteHandler{service: service, log: log}
}

type submitRouteRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// RegisterRoutes registers the route history routes.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/submit-route", h.Submit)
	r.GET("/latest-routes", h.Latest)
}

// Submit handles POST /submit-route.
func (h *RouteHandler) Submit(c *gin.Context) {
	var req submitRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	entry, err := h.service.Submit(c.Request.Context(), req.Origin, req.Destination)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "route": entry})
}

// Latest handles GET /latest-routes.
func (h *RouteHandler) Latest(c *gin.Context) {
	routes, err := h.service.Latest(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, routes)
}
