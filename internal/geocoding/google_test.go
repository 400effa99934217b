package geocoding_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleProvider_Geocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorIs(t, err, geocoding.ErrUnavailable)
		require.NotErrorIs(t, err, geocoding.ErrNotFound)
	})

	t.Run("zero results status is not found", func(t *testing.T) {
		address := "Atlantis"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, errors.New("maps: ZERO_RESULTS - ")).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNotFound)
		require.NotErrorIs(t, err, geocoding.ErrUnavailable)
	})

	t.Run("api returns empty response", func(t *testing.T) {
		address := "nowhere at all"
		req := &maps.GeocodingRequest{Address: address}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		require.ErrorIs(t, err, geocoding.ErrNotFound)
	})

	t.Run("successful geocoding", func(t *testing.T) {
		address := "1600 Amphitheatre Parkway, Mountain View, CA"
		req := &maps.GeocodingRequest{Address: address}
		mockResponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 37.42, Lng: -122.08}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockResponse, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, coords)
		require.InEpsilon(t, 37.42, coords.Latitude, 0.01)
		require.InEpsilon(t, -122.08, coords.Longitude, 0.01)
	})
}
