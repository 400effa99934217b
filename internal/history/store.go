// Package history keeps the most recently submitted routes in a bounded Redis list.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key is the Redis list holding the route history, newest first.
	Key = "latest_routes"
	// MaxEntries bounds the list length.
	MaxEntries = 10
)

// Store is the route history contract used by the HTTP layer.
type Store interface {
	Submit(ctx context.Context, origin, destination string) (models.RouteEntry, error)
	Latest(ctx context.Context) ([]models.RouteEntry, error)
}

// RedisStore owns the bounded route list. LPUSH and LTRIM run inside one MULTI/EXEC
// transaction, so concurrent submitters never overwrite each other.
type RedisStore struct {
	client redis.UniversalClient
	log    *slog.Logger
	now    func() time.Time
}

// NewRedisStore creates a RedisStore that stamps entries with the wall clock.
func NewRedisStore(client redis.UniversalClient, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log, now: time.Now}
}

// WithClock replaces the clock used to stamp new entries.
func (s *RedisStore) WithClock(now func() time.Time) *RedisStore {
	s.now = now
	return s
}

// Submit validates and records a route, evicting anything beyond MaxEntries.
func (s *RedisStore) Submit(ctx context.Context, origin, destination string) (models.RouteEntry, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return models.RouteEntry{}, fmt.Errorf("%w: both origin and destination are required", models.ErrValidation)
	}

	entry := models.RouteEntry{
		Origin:      origin,
		Destination: destination,
		SubmittedAt: s.now().UTC(),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return models.RouteEntry{}, fmt.Errorf("failed to encode route entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, Key, payload)
		pipe.LTrim(ctx, Key, 0, MaxEntries-1)
		return nil
	})
	if err != nil {
		return models.RouteEntry{}, fmt.Errorf("failed to store route entry: %w", err)
	}

	s.log.DebugContext(ctx, "Route submitted", "origin", origin, "destination", destination)

	return entry, nil
}

// Latest returns up to MaxEntries routes, newest first. It never returns a nil slice.
func (s *RedisStore) Latest(ctx context.Context) ([]models.RouteEntry, error) {
	raw, err := s.client.LRange(ctx, Key, 0, MaxEntries-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read route history: %w", err)
	}

	routes := make([]models.RouteEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.RouteEntry
		if errDecode := json.Unmarshal([]byte(item), &entry); errDecode != nil {
			s.log.WarnContext(ctx, "Skipping undecodable route entry", "error", errDecode)
			continue
		}
		routes = append(routes, entry)
	}

	return routes, nil
}
