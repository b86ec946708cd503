package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message. Returning shouldMark=false asks for the
// message to be delivered again.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) (shouldMark bool, err error)
}

// RetryPolicy bounds in-place retries of a message before its partition is rewound.
// Attempt n waits n*Backoff before running.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy suits render jobs, which fail mostly on transient ffmpeg or network errors.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 5 * time.Second}

// Consumer reads a topic as part of a consumer group and hands messages to a MessageHandler.
// A message that still fails after its retries is never committed past: the partition is
// rewound to it and the claim ends, so the group redelivers it on the next session.
type Consumer struct {
	group   sarama.ConsumerGroup
	claims  *claimHandler
	topic   string
	groupID string
}

// ConsumerConfig holds Kafka consumer configuration. A zero Retry uses DefaultRetryPolicy.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler MessageHandler
	Retry   RetryPolicy
}

// NewConsumer joins the consumer group.
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		claims:  newClaimHandler(config.Handler, config.Retry),
		topic:   config.Topic,
		groupID: config.GroupID,
	}, nil
}

// Start consumes in the background until ctx is cancelled. It returns once the first
// session is set up.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for ctx.Err() == nil {
			err := c.group.Consume(ctx, []string{c.topic}, c.claims)
			if errors.Is(err, context.Canceled) || errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			if err != nil {
				log.Printf("❌ Kafka session ended: %v", err)
			}
		}
	}()

	select {
	case <-c.claims.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	log.Printf("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	return nil
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

type claimHandler struct {
	handler   MessageHandler
	retry     RetryPolicy
	ready     chan struct{}
	readyOnce sync.Once
}

func newClaimHandler(handler MessageHandler, retry RetryPolicy) *claimHandler {
	if retry.Attempts < 1 {
		retry = DefaultRetryPolicy
	}
	return &claimHandler{handler: handler, retry: retry, ready: make(chan struct{})}
}

func (h *claimHandler) Setup(sarama.ConsumerGroupSession) error {
	h.readyOnce.Do(func() { close(h.ready) })
	return nil
}

func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim returns early, without marking, when a message exhausts its retries. Ending
// one claim ends the session, and the next session resumes at the rewound offset.
func (h *claimHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			log.Printf("📥 Received job: partition=%d offset=%d key=%s", msg.Partition, msg.Offset, string(msg.Key))

			if err := h.deliver(ctx, msg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("⏪ Rewinding partition %d to offset %d for redelivery: %v", msg.Partition, msg.Offset, err)
				session.ResetOffset(msg.Topic, msg.Partition, msg.Offset, "")
				return nil
			}
			session.MarkMessage(msg, "")

		case <-ctx.Done():
			return nil
		}
	}
}

var errNotMarked = errors.New("handler left message unmarked")

// deliver runs the handler until it marks the message or the retries run out.
func (h *claimHandler) deliver(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var err error
	for attempt := 1; attempt <= h.retry.Attempts; attempt++ {
		if attempt > 1 {
			log.Printf("🔁 Retrying offset %d (attempt %d/%d)", msg.Offset, attempt, h.retry.Attempts)
			if werr := wait(ctx, time.Duration(attempt-1)*h.retry.Backoff); werr != nil {
				return werr
			}
		}

		var mark bool
		mark, err = h.handler.HandleMessage(ctx, msg.Value)
		if mark {
			return nil
		}
		if err == nil {
			err = errNotMarked
		}
		log.Printf("❌ Failed to handle offset %d: %v", msg.Offset, err)
	}
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TypedMessageHandler decodes JSON messages into T before validating and processing them.
type TypedMessageHandler[T any] struct {
	// Validate reports whether the message should be processed.
	Validate func(msg *T) bool
	// Process handles a valid message. An error leaves it unmarked for redelivery.
	Process func(ctx context.Context, msg *T) error
	// AlwaysMark marks undecodable and invalid messages so they are skipped.
	AlwaysMark bool
}

func (h *TypedMessageHandler[T]) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg T
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("❌ Failed to unmarshal message: %v", err)
		return h.AlwaysMark, nil
	}

	if h.Validate != nil && !h.Validate(&msg) {
		return h.AlwaysMark, nil
	}

	if err := h.Process(ctx, &msg); err != nil {
		return false, err
	}

	return true, nil
}
