package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"shortreel/processor"
)

func TestPublishRenderEvent(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev processor.RenderEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Status != "success" || ev.Filename != "abc.mp4" || ev.JobID != "job-1" {
			return fmt.Errorf("unexpected event %+v", ev)
		}
		return nil
	})

	p := NewEventProducerWith(sp, "render-events")
	err := p.PublishRenderEvent(context.Background(), processor.RenderEvent{
		JobID:     "job-1",
		SessionID: "abc",
		Status:    "success",
		Filename:  "abc.mp4",
		Duration:  6,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("PublishRenderEvent: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestPublishRenderEventFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewEventProducerWith(sp, "render-events")
	err := p.PublishRenderEvent(context.Background(), processor.RenderEvent{Status: "failed", Error: "boom"})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("err = %v; want ErrOutOfBrokers", err)
	}
	p.Close()
}
