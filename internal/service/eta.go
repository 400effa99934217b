package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/geo"
	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
)

// ETAService turns coordinate pairs or addresses into straight-line ETA estimates.
type ETAService struct {
	log          *slog.Logger
	provider     geocoding.Provider
	providerName string
	metrics      *metrics.Metrics
	timeout      time.Duration
	distance     geo.DistanceFunc
}

// NewETAService creates an ETAService. timeout bounds every single geocoding lookup.
func NewETAService(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	timeout time.Duration,
) *ETAService {
	return &ETAService{
		log:          log,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		timeout:      timeout,
		distance:     geo.Haversine,
	}
}

// WithDistance replaces the distance function used for estimates.
func (s *ETAService) WithDistance(distance geo.DistanceFunc) *ETAService {
	s.distance = distance
	return s
}

// PredictByCoordinates estimates the ETA between two validated points.
func (s *ETAService) PredictByCoordinates(_ context.Context, from, to models.Coordinates) (models.ETAResult, error) {
	if err := from.Validate(); err != nil {
		return models.ETAResult{}, fmt.Errorf("current position: %w", err)
	}
	if err := to.Validate(); err != nil {
		return models.ETAResult{}, fmt.Errorf("dropoff position: %w", err)
	}

	s.metrics.ETAPredictions.WithLabelValues("coordinates").Inc()

	return s.estimate(from, to), nil
}

// PredictByAddress geocodes both addresses and estimates the ETA between them.
// Either address failing to resolve rejects the whole request with ErrGeocode.
func (s *ETAService) PredictByAddress(ctx context.Context, pickup, dropoff string) (models.ETAResult, error) {
	pickup = strings.TrimSpace(pickup)
	dropoff = strings.TrimSpace(dropoff)
	if pickup == "" || dropoff == "" {
		return models.ETAResult{}, fmt.Errorf("%w: both pickup_address and dropoff_address are required",
			models.ErrValidation)
	}

	from, err := s.geocode(ctx, pickup)
	if err != nil {
		return models.ETAResult{}, fmt.Errorf("%w: could not geocode pickup address %q: %w", models.ErrGeocode, pickup, err)
	}
	to, err := s.geocode(ctx, dropoff)
	if err != nil {
		return models.ETAResult{}, fmt.Errorf("%w: could not geocode dropoff address %q: %w", models.ErrGeocode, dropoff, err)
	}

	s.metrics.ETAPredictions.WithLabelValues("address").Inc()

	result := s.estimate(*from, *to)
	result.Pickup = &models.Place{Address: pickup, Latitude: from.Latitude, Longitude: from.Longitude}
	result.Dropoff = &models.Place{Address: dropoff, Latitude: to.Latitude, Longitude: to.Longitude}

	return result, nil
}

func (s *ETAService) geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startTime := time.Now()
	coords, err := s.provider.Geocode(ctx, address)
	s.metrics.GeocodeSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())

	switch {
	case err == nil && coords == nil:
		s.metrics.GeocodeRequests.WithLabelValues(s.providerName, "not_found").Inc()
		return nil, geocoding.ErrNotFound
	case errors.Is(err, geocoding.ErrNotFound):
		s.metrics.GeocodeRequests.WithLabelValues(s.providerName, "not_found").Inc()
		s.log.InfoContext(ctx, "Address not found", "address", address, "error", err)
		return nil, err
	case errors.Is(err, geocoding.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		s.metrics.GeocodeRequests.WithLabelValues(s.providerName, "unavailable").Inc()
		s.log.ErrorContext(ctx, "Geocoding provider unavailable", "provider", s.providerName, "error", err)
		return nil, err
	case err != nil:
		s.metrics.GeocodeRequests.WithLabelValues(s.providerName, "failure").Inc()
		s.log.WarnContext(ctx, "Failed to geocode", "address", address, "error", err)
		return nil, err
	}
	if err = coords.Validate(); err != nil {
		s.metrics.GeocodeRequests.WithLabelValues(s.providerName, "failure").Inc()
		return nil, err
	}

	s.metrics.GeocodeRequests.WithLabelValues(s.providerName, "success").Inc()

	return coords, nil
}

func (s *ETAService) estimate(from, to models.Coordinates) models.ETAResult {
	distance := s.distance(from, to)

	return models.ETAResult{
		DistanceKm: geo.Round2(distance),
		ETAMinutes: geo.EstimateMinutes(distance),
	}
}
