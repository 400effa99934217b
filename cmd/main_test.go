package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	testCases := []struct {
		env     string
		enabled slog.Level
		muted   slog.Level
	}{
		{env: envLocal, enabled: slog.LevelDebug, muted: slog.LevelDebug - 1},
		{env: envDev, enabled: slog.LevelInfo, muted: slog.LevelDebug},
		{env: envProd, enabled: slog.LevelWarn, muted: slog.LevelInfo},
		{env: "unknown", enabled: slog.LevelError, muted: slog.LevelWarn},
	}

	for _, tc := range testCases {
		t.Run(tc.env, func(t *testing.T) {
			logger := setupLogger(tc.env)

			require.NotNil(t, logger)
			assert.True(t, logger.Enabled(context.Background(), tc.enabled))
			assert.False(t, logger.Enabled(context.Background(), tc.muted))
		})
	}
}

func TestNewPublisher(t *testing.T) {
	t.Run("no brokers disables events", func(t *testing.T) {
		publisher := newPublisher(config.KafkaConfig{RoutesTopic: "routes.submitted"}, slog.Default())

		assert.IsType(t, events.NopPublisher{}, publisher)
	})

	t.Run("brokers enable kafka", func(t *testing.T) {
		publisher := newPublisher(config.KafkaConfig{
			Brokers:     []string{"localhost:9092"},
			RoutesTopic: "routes.submitted",
		}, slog.Default())
		t.Cleanup(func() { _ = publisher.Close() })

		assert.IsType(t, &events.KafkaPublisher{}, publisher)
	})
}
