package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher pushes committed inventory mutations to a Kafka topic.
// Publishing is best-effort: failures are logged and never fail the calling
// operation, since the owning transaction has already committed.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher wires a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}
}

type envelope struct {
	Name       string            `json:"name"`
	ResourceID string            `json:"resource_id"`
	Data       map[string]string `json:"data,omitempty"`
	EmittedAt  time.Time         `json:"emitted_at"`
}

// Publish writes one message per event, keyed by resource id so consumers see
// per-resource ordering.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	now := time.Now().UTC()
	for _, event := range events {
		payload, err := json.Marshal(envelope{
			Name:       event.Name,
			ResourceID: event.ID,
			Data:       event.Data,
			EmittedAt:  now,
		})
		if err != nil {
			p.logError(ctx, "failed to encode inventory event", err, event.Name)
			continue
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(event.ID),
			Value: payload,
		})
	}
	if len(messages) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logError(ctx, "failed to publish inventory events", err, "")
		return err
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) logError(ctx context.Context, msg string, err error, eventName string) {
	if p.logger == nil {
		return
	}
	attrs := []slog.Attr{slog.String("error", err.Error())}
	if eventName != "" {
		attrs = append(attrs, slog.String("event", eventName))
	}
	p.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}
