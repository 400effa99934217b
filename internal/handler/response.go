package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/gin-gonic/gin"
)

// writeError maps the error classes to HTTP statuses and writes an {error} body.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrGeocode):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrUpstream):
		status = http.StatusBadGateway
		message = "tracking service unavailable"
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "status", status, "error", err)
	}

	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
