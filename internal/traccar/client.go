// Package traccar is a read-only client for the Traccar fleet-tracking REST API.
package traccar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

const (
	devicesPath   = "/api/devices"
	positionsPath = "/api/positions"

	// maxBodySize caps how much of an upstream response is read.
	maxBodySize = 16 << 20
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials is the fixed basic-auth pair used for every upstream call.
type Credentials struct {
	Username string
	Password string
}

// Client proxies device and position queries. Every failure it returns wraps models.ErrUpstream.
type Client struct {
	http    HTTPClient
	baseURL string
	creds   Credentials
	timeout time.Duration
	log     *slog.Logger
}

// NewClient creates a Client with its own http.Client bounded by timeout.
func NewClient(baseURL string, creds Credentials, timeout time.Duration, log *slog.Logger) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, baseURL, creds, timeout, log)
}

// NewClientWithHTTP allows injecting a custom HTTP client.
func NewClientWithHTTP(
	client HTTPClient,
	baseURL string,
	creds Credentials,
	timeout time.Duration,
	log *slog.Logger,
) *Client {
	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		timeout: timeout,
		log:     log,
	}
}

// Devices returns the raw JSON device list.
func (c *Client) Devices(ctx context.Context) ([]byte, error) {
	return c.get(ctx, devicesPath)
}

// Positions returns the raw JSON list of latest positions.
func (c *Client) Positions(ctx context.Context) ([]byte, error) {
	return c.get(ctx, positionsPath)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", models.ErrUpstream, err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	req.Header.Set("Accept", "application/json")

	c.log.DebugContext(ctx, "Requesting tracking service", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call %s: %w", models.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %w", models.ErrUpstream, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.ErrorContext(ctx, "Tracking service error", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned status %d", models.ErrUpstream, path, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s returned malformed JSON", models.ErrUpstream, path)
	}

	return body, nil
}

// DecodePositions extracts the archived fields from a raw positions payload.
func DecodePositions(raw []byte) ([]models.Position, error) {
	var positions []models.Position
	if err := json.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("failed to decode positions: %w", err)
	}

	return positions, nil
}
