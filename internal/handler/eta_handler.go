package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/gin-gonic/gin"
)

// ETAPredictor computes straight-line ETAs.
type ETAPredictor interface {
	PredictByCoordinates(ctx context.Context, from, to models.Coordinates) (models.ETAResult, error)
	PredictByAddress(ctx context.Context, pickup, dropoff string) (models.ETAResult, error)
}

// ETAHandler serves the ETA prediction endpoints.
type ETAHandler struct {
	service ETAPredictor
	log     *slog.Logger
}

func NewETAHandler(service ETAPredictor, log *slog.Logger) *ETAHandler {
	return &ETAHandler{service: service, log: log}
}

type coordinatesRequest struct {
	CurrentLat *float64 `json:"current_lat" binding:"required"`
	CurrentLng *float64 `json:"current_lng" binding:"required"`
	DropoffLat *float64 `json:"dropoff_lat" binding:"required"`
	DropoffLng *float64 `json:"dropoff_lng" binding:"required"`
}

type coordinatesResponse struct {
	ETAMinutes float64 `json:"eta_minutes"`
	DistanceKm float64 `json:"distance_km"`
}

type addressRequest struct {
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
}

// RegisterRoutes registers the ETA routes.
func (h *ETAHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	{
		api.POST("/predict_eta", h.PredictByCoordinates)
		api.POST("/predict_eta_address", h.PredictByAddress)
	}
}

// PredictByCoordinates handles POST /api/predict_eta.
func (h *ETAHandler) PredictByCoordinates(c *gin.Context) {
	var req coordinatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "current_lat, current_lng, dropoff_lat and dropoff_lng are required numbers")
		return
	}

	result, err := h.service.PredictByCoordinates(
		c.Request.Context(),
		models.Coordinates{Latitude: *req.CurrentLat, Longitude: *req.CurrentLng},
		models.Coordinates{Latitude: *req.DropoffLat, Longitude: *req.DropoffLng},
	)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, coordinatesResponse{ETAMinutes: result.ETAMinutes, DistanceKm: result.DistanceKm})
}

// PredictByAddress handles POST /api/predict_eta_address.
func (h *ETAHandler) PredictByAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	result, err := h.service.PredictByAddress(c.Request.Context(), req.PickupAddress, req.DropoffAddress)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
