package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// ErrNotFound is wrapped by every provider-specific "no results" error.
// ErrUnavailable is wrapped when the provider could not answer at all: transport failures,
// timeouts, rate-limit waits, rejected credentials and non-2xx responses.
var (
	ErrNotFound    = errors.New("address not found")
	ErrUnavailable = errors.New("geocoding provider unavailable")
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}
