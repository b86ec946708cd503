package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"shortreel/processor"
)

// EventProducer publishes render outcomes to a topic.
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewEventProducer connects a synchronous producer to brokers.
func NewEventProducer(brokers []string, topic string) (*EventProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewEventProducerWith(producer, topic), nil
}

// NewEventProducerWith wraps an existing producer.
func NewEventProducerWith(producer sarama.SyncProducer, topic string) *EventProducer {
	return &EventProducer{producer: producer, topic: topic}
}

// PublishRenderEvent sends event keyed by its job ID, or session ID for direct renders.
func (p *EventProducer) PublishRenderEvent(ctx context.Context, event processor.RenderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode render event: %w", err)
	}

	key := event.JobID
	if key == "" {
		key = event.SessionID
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(data),
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send render event: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *EventProducer) Close() error {
	return p.producer.Close()
}
