// Package broker publishes finished trials to a message broker.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aretw0/summarize/internal/logging"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
)

// DefaultTopic receives one message per finished trial.
const DefaultTopic = "summarize.trials.finished"

// EventType is set in the metadata of every published message.
const EventType = "trial_finished"

// Publisher implements ports.HostRunner on top of a watermill publisher.
type Publisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
	now       func() time.Time
}

var _ ports.HostRunner = (*Publisher)(nil)

// Config holds the configuration of a Kafka publisher.
type Config struct {
	Brokers []string
	Topic   string
	Logger  *slog.Logger
}

// NewKafkaPublisher creates a Publisher backed by Kafka.
func NewKafkaPublisher(cfg Config) (*Publisher, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return New(pub, cfg.Topic, cfg.Logger), nil
}

// New wraps any watermill publisher. An empty topic means DefaultTopic.
func New(pub message.Publisher, topic string, logger *slog.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Publisher{publisher: pub, topic: topic, logger: logger, now: time.Now}
}

// Topic returns the topic results are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// FinishTrial publishes the result as a JSON message keyed by a fresh UUID.
func (p *Publisher) FinishTrial(ctx context.Context, result domain.TrialResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal trial result: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", EventType)
	msg.Metadata.Set("trial_id", result.TrialID)
	msg.Metadata.Set("timestamp", p.now().UTC().Format(time.RFC3339))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("Failed to publish trial result", "trial_id", result.TrialID, "error", err)
		return fmt.Errorf("failed to publish trial result: %w", err)
	}

	p.logger.Info("Published trial result", "trial_id", result.TrialID, "topic", p.topic)
	return nil
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	return p.publisher.Close()
}
