package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/geo"
	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/UnknownOlympus/waypoint/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newETAService(t *testing.T) (*service.ETAService, *mocks.Provider, *metrics.Metrics) {
	t.Helper()
	provider := mocks.NewProvider(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	return service.NewETAService(slog.Default(), provider, "nominatim", appMetrics, time.Second), provider, appMetrics
}

func TestETAService_PredictByCoordinates(t *testing.T) {
	svc, _, appMetrics := newETAService(t)
	ctx := t.Context()

	t.Run("same point", func(t *testing.T) {
		point := models.Coordinates{Latitude: 50.45, Longitude: 30.52}

		result, err := svc.PredictByCoordinates(ctx, point, point)

		require.NoError(t, err)
		assert.Zero(t, result.DistanceKm)
		assert.Zero(t, result.ETAMinutes)
		assert.Nil(t, result.Pickup)
	})

	t.Run("one degree on the equator", func(t *testing.T) {
		result, err := svc.PredictByCoordinates(ctx, models.Coordinates{}, models.Coordinates{Longitude: 1})

		require.NoError(t, err)
		assert.InDelta(t, 111.19, result.DistanceKm, 0.1)
		assert.InDelta(t, 333.58, result.ETAMinutes, 0.01)
	})

	t.Run("out of range latitude", func(t *testing.T) {
		_, err := svc.PredictByCoordinates(ctx, models.Coordinates{Latitude: 91}, models.Coordinates{})

		require.ErrorIs(t, err, models.ErrValidation)
		require.ErrorContains(t, err, "current position")
	})

	t.Run("out of range longitude", func(t *testing.T) {
		_, err := svc.PredictByCoordinates(ctx, models.Coordinates{}, models.Coordinates{Longitude: -180.5})

		require.ErrorIs(t, err, models.ErrValidation)
		require.ErrorContains(t, err, "dropoff position")
	})

	assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.ETAPredictions.WithLabelValues("coordinates")), 0)
}

func TestETAService_PredictByAddress(t *testing.T) {
	t.Run("both addresses resolve", func(t *testing.T) {
		svc, provider, appMetrics := newETAService(t)

		provider.On("Geocode", mock.Anything, "Equator A").
			Return(&models.Coordinates{Latitude: 0, Longitude: 0}, nil).Once()
		provider.On("Geocode", mock.Anything, "Equator B").
			Return(&models.Coordinates{Latitude: 0, Longitude: 1}, nil).Once()

		result, err := svc.PredictByAddress(t.Context(), " Equator A ", "Equator B")

		require.NoError(t, err)
		require.NotNil(t, result.Pickup)
		require.NotNil(t, result.Dropoff)
		assert.Equal(t, "Equator A", result.Pickup.Address)
		assert.InDelta(t, 1.0, result.Dropoff.Longitude, 1e-9)
		assert.InDelta(t, 111.19, result.DistanceKm, 0.1)
		assert.InDelta(t, 333.58, result.ETAMinutes, 0.01)
		assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.GeocodeRequests.WithLabelValues("nominatim", "success")), 0)
	})

	t.Run("missing address", func(t *testing.T) {
		svc, _, _ := newETAService(t)

		_, err := svc.PredictByAddress(t.Context(), "", "Lviv")

		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("unresolvable pickup stops before dropoff lookup", func(t *testing.T) {
		svc, provider, _ := newETAService(t)

		provider.On("Geocode", mock.Anything, "Atlantis").Return(nil, geocoding.ErrNominatimEmptyResponse).Once()

		result, err := svc.PredictByAddress(t.Context(), "Atlantis", "Lviv")

		require.ErrorIs(t, err, models.ErrGeocode)
		require.ErrorIs(t, err, geocoding.ErrNotFound)
		assert.Equal(t, models.ETAResult{}, result)
		provider.AssertNotCalled(t, "Geocode", mock.Anything, "Lviv")
	})

	t.Run("unresolvable dropoff returns no partial result", func(t *testing.T) {
		svc, provider, appMetrics := newETAService(t)

		provider.On("Geocode", mock.Anything, "Kyiv").
			Return(&models.Coordinates{Latitude: 50.45, Longitude: 30.52}, nil).Once()
		provider.On("Geocode", mock.Anything, "Atlantis").Return(nil, nil).Once()

		result, err := svc.PredictByAddress(t.Context(), "Kyiv", "Atlantis")

		require.ErrorIs(t, err, models.ErrGeocode)
		require.ErrorContains(t, err, "dropoff")
		assert.Equal(t, models.ETAResult{}, result)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.GeocodeRequests.WithLabelValues("nominatim", "not_found")), 0)
	})

	t.Run("provider outage is counted apart from misses", func(t *testing.T) {
		svc, provider, appMetrics := newETAService(t)

		provider.On("Geocode", mock.Anything, "Kyiv").
			Return(nil, fmt.Errorf("%w: nominatim API returned status 503", geocoding.ErrUnavailable)).Once()

		_, err := svc.PredictByAddress(t.Context(), "Kyiv", "Lviv")

		require.ErrorIs(t, err, models.ErrGeocode)
		require.ErrorIs(t, err, geocoding.ErrUnavailable)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.GeocodeRequests.WithLabelValues("nominatim", "unavailable")), 0)
		assert.Zero(t, testutil.ToFloat64(appMetrics.GeocodeRequests.WithLabelValues("nominatim", "not_found")))
	})

	t.Run("provider timeout is a geocode error", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		svc := service.NewETAService(
			slog.Default(), provider, "google", metrics.NewMetrics(prometheus.NewRegistry()), 10*time.Millisecond,
		)

		provider.On("Geocode", mock.Anything, "Slow street").
			Return(func(ctx context.Context, _ string) (*models.Coordinates, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}).Once()

		_, err := svc.PredictByAddress(t.Context(), "Slow street", "Lviv")

		require.ErrorIs(t, err, models.ErrGeocode)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("provider returns out-of-range coordinates", func(t *testing.T) {
		svc, provider, _ := newETAService(t)

		provider.On("Geocode", mock.Anything, "Broken").
			Return(&models.Coordinates{Latitude: 123, Longitude: 0}, nil).Once()

		_, err := svc.PredictByAddress(t.Context(), "Broken", "Lviv")

		require.ErrorIs(t, err, models.ErrGeocode)
	})
}

func TestETAService_DistanceMethod(t *testing.T) {
	from := models.Coordinates{Latitude: 10, Longitude: 20}
	to := models.Coordinates{Latitude: -10, Longitude: -160}

	for _, method := range []geo.Method{geo.MethodHaversine, geo.MethodGeodesic} {
		t.Run(string(method), func(t *testing.T) {
			distance, err := method.Func()
			require.NoError(t, err)
			svc, _, _ := newETAService(t)
			svc.WithDistance(distance)

			result, err := svc.PredictByCoordinates(t.Context(), from, to)

			require.NoError(t, err)
			assert.InDelta(t, 20015.09, result.DistanceKm, 0.01)
			assert.InDelta(t, 60045.26, result.ETAMinutes, 0.05)
		})
	}
}
