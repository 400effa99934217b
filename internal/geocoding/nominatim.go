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
	"strconv"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public OpenStreetMap search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent must identify the application per the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const nominatimUserAgent = "Waypoint-Relay/1.0 (https://github.com/UnknownOlympus/waypoint)"

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
type NominatimProvider struct {
	client    HTTPClient
	baseURL   string
	log       *slog.Logger
	limiter   *rate.Limiter
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat string `json:"lat"` // Latitude as string
	Lon string `json:"lon"` // Longitude as string
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = fmt.Errorf("%w: nominatim API returned empty response", ErrNotFound)
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a new Nominatim geocoding provider against the public endpoint.
func NewNominatimProvider(timeout time.Duration, rateLimit int, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout},
		rate.NewLimiter(rate.Limit(rateLimit), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		log:       log,
		limiter:   limiter,
		userAgent: nominatimUserAgent,
	}
}

// Geocode converts an address to geographic coordinates with a single Nominatim search request.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", ErrUnavailable, err)
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute geocoding request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: nominatim API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("%w: failed to decode nominatim response: %w", ErrUnavailable, err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	np.log.DebugContext(ctx, "Nominatim found result", "lat", lat, "lon", lon)

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
