package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/cache"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/UnknownOlympus/waypoint/internal/traccar"
)

const (
	// PositionsCacheKey is where the latest positions payload is mirrored.
	PositionsCacheKey = "latest_positions"
	// PositionsTTL is how long a cached positions payload stays valid.
	PositionsTTL = 30 * time.Second

	archiveTimeout = 10 * time.Second
)

// Gateway is the upstream tracking service.
type Gateway interface {
	Devices(ctx context.Context) ([]byte, error)
	Positions(ctx context.Context) ([]byte, error)
}

// TrackingService proxies the tracking service, mirrors positions into the cache
// and archives every fresh positions payload.
type TrackingService struct {
	log          *slog.Logger
	gateway      Gateway
	cache        cache.Cache
	repo         repository.Interface
	metrics      *metrics.Metrics
	pollInterval time.Duration

	mu       sync.Mutex
	closed   bool
	archives sync.WaitGroup
}

// NewTrackingService creates a TrackingService. A zero pollInterval disables Run.
func NewTrackingService(
	log *slog.Logger,
	gateway Gateway,
	cache cache.Cache,
	repo repository.Interface,
	metrics *metrics.Metrics,
	pollInterval time.Duration,
) *TrackingService {
	return &TrackingService{
		log:          log,
		gateway:      gateway,
		cache:        cache,
		repo:         repo,
		metrics:      metrics,
		pollInterval: pollInterval,
	}
}

// Devices proxies the device list without caching.
func (ts *TrackingService) Devices(ctx context.Context) ([]byte, error) {
	return ts.call(ctx, "devices", ts.gateway.Devices)
}

// Positions serves the cached payload while it is fresh and otherwise fetches upstream.
// Cache problems are logged and never fail the request.
func (ts *TrackingService) Positions(ctx context.Context) ([]byte, error) {
	cached, err := ts.cache.Get(ctx, PositionsCacheKey)
	switch {
	case err == nil:
		ts.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		ts.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		ts.metrics.CacheLookups.WithLabelValues("error").Inc()
		ts.log.WarnContext(ctx, "Positions cache unavailable, fetching upstream", "error", err)
	}

	return ts.refresh(ctx)
}

// Run periodically refreshes the positions cache and archive until ctx is cancelled.
func (ts *TrackingService) Run(ctx context.Context) {
	if ts.pollInterval <= 0 {
		ts.log.InfoContext(ctx, "Background positions refresh disabled.")
		return
	}

	ticker := time.NewTicker(ts.pollInterval)
	defer ticker.Stop()

	ts.log.InfoContext(ctx, "Positions refresher started...", "interval", ts.pollInterval)

	for {
		select {
		case <-ctx.Done():
			ts.log.InfoContext(ctx, "Positions refresher stopped.")
			return
		case <-ticker.C:
			if _, err := ts.refresh(ctx); err != nil {
				ts.log.ErrorContext(ctx, "Background positions refresh failed", "error", err)
			}
		}
	}
}

// Close stops archiving new payloads and waits for in-flight archive writes.
// Positions keeps working after Close, without archiving.
func (ts *TrackingService) Close() {
	ts.mu.Lock()
	ts.closed = true
	ts.mu.Unlock()

	ts.archives.Wait()
}

func (ts *TrackingService) refresh(ctx context.Context) ([]byte, error) {
	body, err := ts.call(ctx, "positions", ts.gateway.Positions)
	if err != nil {
		return nil, err
	}

	if err = ts.cache.Set(ctx, PositionsCacheKey, body, PositionsTTL); err != nil {
		ts.log.WarnContext(ctx, "Failed to cache positions", "error", err)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.closed {
		ts.log.DebugContext(ctx, "Tracking service closed, positions not archived")
		return body, nil
	}

	ts.archives.Add(1)
	go ts.archive(context.WithoutCancel(ctx), body)

	return body, nil
}

func (ts *TrackingService) archive(ctx context.Context, body []byte) {
	defer ts.archives.Done()

	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	positions, err := traccar.DecodePositions(body)
	if err != nil {
		ts.log.WarnContext(ctx, "Positions payload not archivable", "error", err)
		return
	}

	saved, err := ts.repo.SavePositions(ctx, positions)
	if err != nil {
		ts.log.ErrorContext(ctx, "Failed to archive positions", "error", err)
		return
	}

	ts.metrics.PositionsSaved.Add(float64(saved))
}

func (ts *TrackingService) call(
	ctx context.Context,
	endpoint string,
	fetch func(context.Context) ([]byte, error),
) ([]byte, error) {
	startTime := time.Now()
	body, err := fetch(ctx)
	ts.metrics.UpstreamSeconds.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())

	if err != nil {
		ts.metrics.UpstreamRequests.WithLabelValues(endpoint, "failure").Inc()
		ts.log.ErrorContext(ctx, "Tracking service request failed", "endpoint", endpoint, "error", err)
		return nil, err
	}

	ts.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()

	return body, nil
}
