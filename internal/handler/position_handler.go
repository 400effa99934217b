package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// PositionArchive reads archived positions.
type PositionArchive interface {
	RecentPositions(ctx context.Context, deviceID int64, limit int) ([]models.Position, error)
}

// PositionHandler serves the archived position history.
type PositionHandler struct {
	archive PositionArchive
	log     *slog.Logger
}

func NewPositionHandler(archive PositionArchive, log *slog.Logger) *PositionHandler {
	return &PositionHandler{archive: archive, log: log}
}

// RegisterRoutes registers the position history route.
func (h *PositionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/positions/history", h.History)
}

// History handles GET /api/positions/history?device_id=&limit=.
func (h *PositionHandler) History(c *gin.Context) {
	deviceID, err := strconv.ParseInt(c.Query("device_id"), 10, 64)
	if err != nil || deviceID <= 0 {
		badRequest(c, "device_id must be a positive integer")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxHistoryLimit)

	positions, err := h.archive.RecentPositions(c.Request.Context(), deviceID, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, positions)
}
