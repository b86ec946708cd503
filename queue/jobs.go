package queue

import (
	"context"
	"errors"
	"log"

	"shortreel/processor"
	"shortreel/video"
)

// Renderer runs one render request.
type Renderer interface {
	Render(ctx context.Context, in processor.RenderInput) (*processor.RenderResult, error)
}

// NewRenderJobHandler turns render manifests into renders. Jobs with no slides and jobs
// rejected for their input shape are marked so they are not redelivered. Other failures
// return an error, which the Consumer retries and then rewinds to. Relative references
// resolve against baseDir.
func NewRenderJobHandler(r Renderer, baseDir string) *TypedMessageHandler[processor.Manifest] {
	return &TypedMessageHandler[processor.Manifest]{
		Validate: func(m *processor.Manifest) bool {
			if len(m.Slides) == 0 {
				log.Printf("⚠️  Skipping render job %q with no slides", m.ID)
				return false
			}
			return true
		},
		Process: func(ctx context.Context, m *processor.Manifest) error {
			log.Printf("🎬 Processing render job: id=%s slides=%d", m.ID, len(m.Slides))

			res, err := r.Render(ctx, m.Input(ctx, baseDir))
			if errors.Is(err, video.ErrInputShape) {
				log.Printf("❌ Render job %s rejected: %v", m.ID, err)
				return nil
			}
			if err != nil {
				log.Printf("❌ Failed to render job %s: %v", m.ID, err)
				return err
			}

			log.Printf("✅ Render job %s done: %s (%.2fs)", m.ID, res.Filename, res.Duration)
			return nil
		},
		AlwaysMark: true,
	}
}

// NewRenderJobConsumer consumes render manifests from topic.
func NewRenderJobConsumer(brokers []string, topic, groupID string, r Renderer, baseDir string) (*Consumer, error) {
	return NewConsumer(ConsumerConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
		Handler: NewRenderJobHandler(r, baseDir),
	})
}
