package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultPublishTimeout bounds each Kafka write, so an unreachable broker
// delays the calling request by at most this long.
const DefaultPublishTimeout = 2 * time.Second

// KafkaPublisher writes events to a Kafka topic keyed by content id
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// KafkaOption configures a KafkaPublisher
type KafkaOption func(*KafkaPublisher)

// WithPublishTimeout overrides DefaultPublishTimeout
func WithPublishTimeout(d time.Duration) KafkaOption {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            3,
		WriteTimeout:           DefaultPublishTimeout,
		AllowAutoTopicCreation: true,
	}
	p := &KafkaPublisher{writer: w, timeout: DefaultPublishTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ContentID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
