package service

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/events"
	"github.com/UnknownOlympus/waypoint/internal/history"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
)

// RouteService records routes in the history and announces them.
type RouteService struct {
	log       *slog.Logger
	store     history.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
}

func NewRouteService(
	log *slog.Logger,
	store history.Store,
	publisher events.Publisher,
	metrics *metrics.Metrics,
) *RouteService {
	return &RouteService{log: log, store: store, publisher: publisher, metrics: metrics}
}

// Submit stores the route. A failed event publish is logged only.
func (rs *RouteService) Submit(ctx context.Context, origin, destination string) (models.RouteEntry, error) {
	entry, err := rs.store.Submit(ctx, origin, destination)
	if err != nil {
		return models.RouteEntry{}, err
	}

	rs.metrics.RoutesSubmitted.Inc()

	if err = rs.publisher.RouteSubmitted(ctx, entry); err != nil {
		rs.log.WarnContext(ctx, "Failed to publish route event", "error", err)
	}

	return entry, nil
}

// Latest returns the route history, newest first.
func (rs *RouteService) Latest(ctx context.Context) ([]models.RouteEntry, error) {
	return rs.store.Latest(ctx)
}
