// Package events publishes route history changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/segmentio/kafka-go"
)

// RouteSubmittedType is the value of the "type" header on route events.
const RouteSubmittedType = "route.submitted"

// Publisher announces accepted routes.
type Publisher interface {
	RouteSubmitted(ctx context.Context, entry models.RouteEntry) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes route events as JSON messages keyed by origin.
type KafkaPublisher struct {
	writer MessageWriter
	log    *slog.Logger
}

// NewKafkaPublisher creates a publisher backed by a kafka.Writer for topic.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}

	return NewKafkaPublisherWithWriter(writer, log)
}

// NewKafkaPublisherWithWriter allows injecting a custom writer.
func NewKafkaPublisherWithWriter(writer MessageWriter, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

// RouteSubmitted publishes entry.
func (p *KafkaPublisher) RouteSubmitted(ctx context.Context, entry models.RouteEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode route event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(entry.Origin),
		Value: payload,
		Time:  entry.SubmittedAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(RouteSubmittedType)},
		},
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish route event: %w", err)
	}

	p.log.DebugContext(ctx, "Route event published", "origin", entry.Origin)

	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) RouteSubmitted(context.Context, models.RouteEntry) error { return nil }

func (NopPublisher) Close() error { return nil }
