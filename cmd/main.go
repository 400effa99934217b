package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/cache"
	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/events"
	"github.com/UnknownOlympus/waypoint/internal/geo"
	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/handler"
	"github.com/UnknownOlympus/waypoint/internal/history"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/UnknownOlympus/waypoint/internal/traccar"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare position archive: %v", err)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Provider),
		APIKey:    cfg.Geocoder.APIKey,
		RateLimit: cfg.Geocoder.RateLimit,
		Timeout:   cfg.Traccar.Timeout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoder.Provider)

	publisher := newPublisher(cfg.Kafka, logger)
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.ErrorContext(ctx, "Failed to close event publisher", "error", cerr)
		}
	}()

	gateway := traccar.NewClient(
		cfg.Traccar.BaseURL,
		traccar.Credentials{Username: cfg.Traccar.Username, Password: cfg.Traccar.Password},
		cfg.Traccar.Timeout,
		logger,
	)

	trackingSvc := service.NewTrackingService(
		logger, gateway, cache.NewRedisCache(redisClient), repo, appMetrics, cfg.Traccar.RefreshInterval,
	)
	distance, err := geo.Method(cfg.DistanceMethod).Func()
	if err != nil {
		log.Fatalf("Failed to select distance method: %v", err)
	}
	etaSvc := service.NewETAService(logger, geoProvider, cfg.Geocoder.Provider, appMetrics, cfg.Traccar.Timeout).
		WithDistance(distance)
	routeSvc := service.NewRouteService(logger, history.NewRedisStore(redisClient, logger), publisher, appMetrics)

	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(
		handler.RouterConfig{AllowedOrigins: cfg.AllowedOrigins},
		logger,
		handler.NewTrackingHandler(trackingSvc, logger),
		handler.NewETAHandler(etaSvc, logger),
		handler.NewRouteHandler(routeSvc, logger),
		handler.NewPositionHandler(repo, logger),
	)

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2*cfg.Traccar.Timeout + 5*time.Second,
	}

	go startMonitoringServer(ctx, logger, reg, dtb, redisClient, cfg.HealthPort)
	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		trackingSvc.Run(ctx)
	}()
	go func() {
		logger.InfoContext(ctx, "Starting API server", "port", cfg.HTTPPort)
		if serr := apiServer.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "API server failed", "error", serr)
			stop()
		}
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err = apiServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "API server shutdown failed", "error", err)
	}

	// No refresh may start once Close begins waiting on archive writes.
	<-refresherDone
	trackingSvc.Close()

	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

func newPublisher(cfg config.KafkaConfig, logger *slog.Logger) events.Publisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, route events disabled")
		return events.NopPublisher{}
	}

	logger.Info("Route events enabled", "brokers", cfg.Brokers, "topic", cfg.RoutesTopic)

	return events.NewKafkaPublisher(cfg.Brokers, cfg.RoutesTopic, logger)
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A pgxpool connector for database methods (ping).
// - rdb: The Redis client backing the cache and route history (ping).
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	rdb *redis.Client,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		} else if err = rdb.Ping(req.Context()).Err(); err != nil {
			status, body = http.StatusServiceUnavailable, "Redis ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
