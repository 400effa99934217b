package events_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/events"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_RouteSubmitted(t *testing.T) {
	entry := models.RouteEntry{
		Origin:      "Kyiv",
		Destination: "Lviv",
		SubmittedAt: time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC),
	}

	t.Run("writes a keyed JSON message", func(t *testing.T) {
		writer := &recordingWriter{}
		publisher := events.NewKafkaPublisherWithWriter(writer, slog.Default())

		require.NoError(t, publisher.RouteSubmitted(t.Context(), entry))

		require.Len(t, writer.messages, 1)
		msg := writer.messages[0]
		assert.Equal(t, "Kyiv", string(msg.Key))
		assert.Equal(t, events.RouteSubmittedType, string(msg.Headers[0].Value))

		var decoded models.RouteEntry
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, entry.Destination, decoded.Destination)
		assert.True(t, entry.SubmittedAt.Equal(decoded.SubmittedAt))
	})

	t.Run("writer failure is wrapped", func(t *testing.T) {
		writer := &recordingWriter{err: assert.AnError}
		publisher := events.NewKafkaPublisherWithWriter(writer, slog.Default())

		err := publisher.RouteSubmitted(t.Context(), entry)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to publish route event")
	})

	t.Run("close closes the writer", func(t *testing.T) {
		writer := &recordingWriter{}
		publisher := events.NewKafkaPublisherWithWriter(writer, slog.Default())

		require.NoError(t, publisher.Close())
		assert.True(t, writer.closed)
	})
}

func TestNopPublisher(t *testing.T) {
	var publisher events.Publisher = events.NopPublisher{}

	require.NoError(t, publisher.RouteSubmitted(t.Context(), models.RouteEntry{}))
	require.NoError(t, publisher.Close())
}
