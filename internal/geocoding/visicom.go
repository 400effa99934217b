package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/time/rate"
)

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

const maxErrorBody = 4 << 10

// VisicomProvider implements geocoding using Visicom API.
type VisicomProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Visicom API
	apiKey  string        // API key with geocoding access
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// Common errors for Visicom provider.
var (
	ErrVisicomEmptyResponse = fmt.Errorf("%w: visicom API returned empty response", ErrNotFound)
	ErrVisicomEmptyAddress  = fmt.Errorf("%w: visicom provider got empty address", ErrNotFound)
	ErrVisicomInvalidCoords = errors.New("visicom API returned invalid coordinates")
	ErrVisicomUnauthorized  = fmt.Errorf("%w: visicom API unauthorized (invalid API key)", ErrUnavailable)
)

// visicomResponse is the part of a Visicom feature used for geocoding.
type visicomResponse struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// NewVisicomProvider creates a new Visicom geocoding provider.
func NewVisicomProvider(apiKey string, rateLimit int, timeout time.Duration, log *slog.Logger) *VisicomProvider {
	return NewVisicomProviderWithClient(
		&http.Client{Timeout: timeout},
		apiKey,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewVisicomProviderWithClient allows injecting custom HTTP client.
func NewVisicomProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *VisicomProvider {
	return &VisicomProvider{
		client:  client,
		baseURL: VisicomBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Geocode converts address into geographic coordinates using Visicom API.
func (vp *VisicomProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	const coordsListLength = 2

	// Blank input never spends a request from the quota.
	if strings.TrimSpace(address) == "" {
		return nil, ErrVisicomEmptyAddress
	}

	if err := vp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", ErrUnavailable, err)
	}

	vp.log.DebugContext(ctx, "Geocoding using Visicom", "address", address)

	reqURL, err := url.Parse(vp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("text", address)
	query.Set("limit", "1")
	query.Set("key", vp.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := vp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute geocoding request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Visicom answers 404 when the text matches no feature.
		return nil, ErrVisicomEmptyResponse
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrVisicomUnauthorized
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		vp.log.ErrorContext(ctx, "Visicom API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: visicom API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var result visicomResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode visicom response: %w", ErrUnavailable, err)
	}

	coords := result.Geometry.Coordinates
	if len(coords) == 0 {
		return nil, ErrVisicomEmptyResponse
	}

	if len(coords) != coordsListLength {
		return nil, ErrVisicomInvalidCoords
	}

	lon := coords[0]
	lat := coords[1]

	vp.log.DebugContext(ctx, "Visicom found result", "address", address, "lat", lat, "lon", lon)

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
