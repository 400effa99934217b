package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes addresses through the Google Maps Geocoding API.
type GoogleProvider struct {
	client GoogleAPIClient
	log    *slog.Logger
}

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = fmt.Errorf("%w: empty response from Google Maps API", ErrNotFound)

// zeroResults is the status the maps client reports as an error for addresses without a match.
const zeroResults = "ZERO_RESULTS"

// NewGoogleProvider wraps a Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode returns the coordinates of the first Google Maps result for address.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		if strings.Contains(err.Error(), zeroResults) {
			return nil, ErrEmptyResponse
		}
		return nil, fmt.Errorf("%w: failed to geocode address: %w", ErrUnavailable, err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	coords := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Longitude: coords.Lng, Latitude: coords.Lat}, nil
}
