package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/inmet-scraper/internal/config"
	"github.com/couchcryptid/inmet-scraper/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per year outcome to a Kafka topic.
// It implements pipeline.OutcomePublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured outcome topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaOutcomeTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and sends a single outcome, keyed by year so every
// event for a year lands on the same partition.
func (p *Publisher) Publish(ctx context.Context, outcome domain.Outcome) error {
	msg, err := serializeToMessage(outcome)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish outcome for %d: %w", outcome.Year, err)
	}
	p.logger.Debug("outcome published", "year", outcome.Year, "success", outcome.Success)
	return nil
}

// Close flushes pending messages and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Outcome into a Kafka message.
func serializeToMessage(outcome domain.Outcome) (kafkago.Message, error) {
	data, err := json.Marshal(outcome)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize outcome: %w", err)
	}
	result := "success"
	if !outcome.Success {
		result = "failed"
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(outcome.Year)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(domain.StationCode)},
			{Key: "result", Value: []byte(result)},
			{Key: "kind", Value: []byte(outcome.Kind)},
			{Key: "completed_at", Value: []byte(outcome.CompletedAt.Format(time.RFC3339))},
		},
		Time: outcome.CompletedAt,
	}, nil
}
