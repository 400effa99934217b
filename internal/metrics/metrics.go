package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamSeconds  *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	GeocodeRequests  *prometheus.CounterVec
	GeocodeSeconds   *prometheus.HistogramVec
	ETAPredictions   *prometheus.CounterVec
	RoutesSubmitted  prometheus.Counter
	PositionsSaved   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		UpstreamRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_upstream_requests_total",
			Help: "Total number of requests sent to the tracking service.",
		}, []string{"endpoint", "status"}),
		UpstreamSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waypoint_upstream_request_duration_seconds",
			Help:    "Duration of requests to the tracking service.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_positions_cache_lookups_total",
			Help: "Positions cache lookups by result.",
		}, []string{"result"}),
		GeocodeRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_geocode_requests_total",
			Help: "Total number of geocoding lookups by status.",
		}, []string{"provider", "status"}),
		GeocodeSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waypoint_geocode_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ETAPredictions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_eta_predictions_total",
			Help: "Total number of ETA predictions by input kind.",
		}, []string{"kind"}),
		RoutesSubmitted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_routes_submitted_total",
			Help: "Total number of routes accepted into the history.",
		}),
		PositionsSaved: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_positions_archived_total",
			Help: "Total number of positions written to the archive.",
		}),
	}
}
