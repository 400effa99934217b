package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the relay.
//
// Fields:
// - Env: The current environment (local, development, production).
// - HTTPPort: The port of the public API server.
// - HealthPort: The port of the monitoring server (/healthz, /metrics).
// - Traccar: Connection settings for the upstream tracking service.
// - RedisURL: Connection URL of the Redis instance used for caching and route history.
// - DatabaseURL: Connection string of the PostgreSQL position archive.
// - Geocoder: Geocoding provider selection and limits.
// - DistanceMethod: Great-circle implementation used for ETAs (haversine, geodesic).
// - Kafka: Route event publishing; no brokers disables publishing.
// - AllowedOrigins: CORS origins of the public API.
type Config struct {
	Env            string `validate:"required"`
	HTTPPort       int    `validate:"min=1,max=65535"`
	HealthPort     int    `validate:"min=1,max=65535"`
	Traccar        TraccarConfig
	RedisURL       string `validate:"required,url"`
	DatabaseURL    string `validate:"required"`
	Geocoder       GeocoderConfig
	DistanceMethod string `validate:"oneof=haversine geodesic"`
	Kafka          KafkaConfig
	AllowedOrigins []string `validate:"min=1"`
}

// TraccarConfig holds the upstream tracking service settings.
type TraccarConfig struct {
	BaseURL         string        `validate:"required,url"`
	Username        string        `validate:"required"`
	Password        string        `validate:"required"`
	Timeout         time.Duration `validate:"gt=0"`
	RefreshInterval time.Duration `validate:"gte=0"` // Zero disables background refresh.
}

// GeocoderConfig selects the geocoding provider.
type GeocoderConfig struct {
	Provider  string `validate:"oneof=google nominatim visicom"`
	APIKey    string `validate:"required_if=Provider google,required_if=Provider visicom"`
	RateLimit int    `validate:"min=1"`
}

// KafkaConfig holds route event publishing settings.
type KafkaConfig struct {
	Brokers     []string
	RoutesTopic string `validate:"required_with=Brokers"`
}

var defaults = map[string]any{
	"WAYPOINT_ENV":               "production",
	"WAYPOINT_HTTP_PORT":         "5000",
	"WAYPOINT_HEALTH_PORT":       "8080",
	"UPSTREAM_TIMEOUT":           "10s",
	"POSITIONS_REFRESH_INTERVAL": "0s",
	"REDIS_URL":                  "redis://localhost:6379/0",
	"GEOCODER_PROVIDER":          "nominatim",
	"GEOCODER_API_KEY":           "",
	"GEOCODER_RATE_LIMIT":        "1",
	"DISTANCE_METHOD":            "haversine",
	"KAFKA_BROKERS":              "",
	"KAFKA_ROUTES_TOPIC":         "routes.submitted",
	"CORS_ALLOWED_ORIGINS":       "*",
	"TRACCAR_BASE_URL":           "",
	"TRACCAR_USER":               "",
	"TRACCAR_PASS":               "",
	"DATABASE_URL":               "",
}

// MustLoad loads the configuration from the environment (and an optional .env file)
// and panics when a value cannot be parsed or fails validation.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	upstreamTimeout, err := time.ParseDuration(v.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		panic("failed to parse upstream timeout from configuration")
	}

	refreshInterval, err := time.ParseDuration(v.GetString("POSITIONS_REFRESH_INTERVAL"))
	if err != nil {
		panic("failed to parse positions refresh interval from configuration")
	}

	httpPort, err := strconv.Atoi(v.GetString("WAYPOINT_HTTP_PORT"))
	if err != nil {
		panic("failed to parse port for api server from configuration")
	}

	healthPort, err := strconv.Atoi(v.GetString("WAYPOINT_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("GEOCODER_RATE_LIMIT"))
	if err != nil {
		panic("failed to parse geocoder rate limit from configuration, must be an integer types")
	}

	cfg := &Config{
		Env:         v.GetString("WAYPOINT_ENV"),
		HTTPPort:    httpPort,
		HealthPort:  healthPort,
		RedisURL:    v.GetString("REDIS_URL"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		Traccar: TraccarConfig{
			BaseURL:         strings.TrimRight(v.GetString("TRACCAR_BASE_URL"), "/"),
			Username:        v.GetString("TRACCAR_USER"),
			Password:        v.GetString("TRACCAR_PASS"),
			Timeout:         upstreamTimeout,
			RefreshInterval: refreshInterval,
		},
		Geocoder: GeocoderConfig{
			Provider:  strings.ToLower(v.GetString("GEOCODER_PROVIDER")),
			APIKey:    v.GetString("GEOCODER_API_KEY"),
			RateLimit: rateLimit,
		},
		DistanceMethod: strings.ToLower(v.GetString("DISTANCE_METHOD")),
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			RoutesTopic: v.GetString("KAFKA_ROUTES_TOPIC"),
		},
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err = validator.New().Struct(cfg); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return cfg
}

func splitList(raw string) []string {
	var items []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
