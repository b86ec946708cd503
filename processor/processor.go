package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"shortreel/config"
	"shortreel/publish"
	"shortreel/storage"
	"shortreel/video"
)

// RenderInput is one render request: five per-slide lists sharing one index space plus
// the settings applied to every slide.
type RenderInput struct {
	Images         []Asset
	Durations      []string
	Animations     []string
	Captions       []string
	NarrationFlags []string

	Title           string
	TitleFontSize   int
	CaptionFontSize int
	Font            string
	Music           *Asset

	// YouTube, when set and an uploader is configured, publishes the render as a Short.
	YouTube *publish.Metadata

	// JobID identifies renders submitted through the job queue.
	JobID string
}

// RenderResult describes a published render.
type RenderResult struct {
	SessionID string
	Filename  string
	Path      string
	Duration  float64
	RemoteURL string
	YouTubeID string
}

// RenderEvent is emitted after every render attempt.
type RenderEvent struct {
	JobID     string    `json:"job_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Status    string    `json:"status"`
	Filename  string    `json:"filename,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	RemoteURL string    `json:"remote_url,omitempty"`
	YouTubeID string    `json:"youtube_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ObjectPublisher copies a finished render to remote storage and returns a link to it.
type ObjectPublisher interface {
	PublishVideo(ctx context.Context, localPath, name string) (string, error)
}

// ShortsUploader posts a finished render to a video platform.
type ShortsUploader interface {
	Upload(ctx context.Context, path string, meta publish.Metadata) (string, error)
}

// Notifier announces render outcomes.
type Notifier interface {
	PublishRenderEvent(ctx context.Context, event RenderEvent) error
}

// Options wires a Processor. Fonts, Synth and Encoder are required; the rest are optional.
type Options struct {
	UploadsDir    string
	OutputDir     string
	MaxConcurrent int

	Fonts   video.FontResolver
	Synth   video.Synthesizer
	Encoder video.Encoder
	Images  video.ImageLoader

	// MeasureAudio reports the length of the music upload. Defaults to video.ProbeDuration.
	MeasureAudio func(path string) (float64, error)

	Publisher ObjectPublisher
	Uploader  ShortsUploader
	Notifier  Notifier
}

// Processor runs renders end to end: session, uploads, composition, encoding, publishing.
type Processor struct {
	opts      Options
	semaphore chan struct{}
}

// New creates a Processor that runs at most opts.MaxConcurrent renders at once.
func New(opts Options) *Processor {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if opts.Images == nil {
		opts.Images = video.FileImageLoader{}
	}
	if opts.MeasureAudio == nil {
		opts.MeasureAudio = video.ProbeDuration
	}
	return &Processor{
		opts:      opts,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
	}
}

// Render runs one request. Input-shape problems are reported before anything touches disk
// and match video.ErrInputShape.
func (p *Processor) Render(ctx context.Context, in RenderInput) (*RenderResult, error) {
	res, err := p.render(ctx, in)
	p.notify(ctx, in, res, err)
	return res, err
}

func (p *Processor) render(ctx context.Context, in RenderInput) (*RenderResult, error) {
	if err := video.ValidateShape(len(in.Images), len(in.Durations), len(in.Animations), len(in.Captions), len(in.NarrationFlags)); err != nil {
		return nil, err
	}

	select {
	case p.semaphore <- struct{}{}:
		defer func() { <-p.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	session, err := storage.NewSession(p.opts.UploadsDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("⚠️ Failed to clean session %s: %v", session.ID, err)
		}
	}()

	log.Printf("🎬 [%s] Rendering %d slides", session.ID, len(in.Images))
	start := time.Now()

	req, err := p.stage(session, in)
	if err != nil {
		return nil, err
	}

	composer := video.NewComposer(
		p.opts.Images,
		video.TextRenderer{Fonts: p.opts.Fonts},
		video.NarrationGate{
			Synth:    p.opts.Synth,
			Language: config.NarrationLanguage,
			PathFor:  session.NarrationPath,
		},
		p.opts.Encoder,
	)

	tl, err := composer.Render(ctx, req, session.WorkOutputPath())
	if err != nil {
		return nil, err
	}

	final, err := session.Publish(p.opts.OutputDir)
	if err != nil {
		return nil, err
	}

	res := &RenderResult{
		SessionID: session.ID,
		Filename:  session.OutputName(),
		Path:      final,
		Duration:  tl.Duration(),
	}
	log.Printf("✅ [%s] Rendered %.2fs video in %s", session.ID, res.Duration, time.Since(start).Round(time.Millisecond))

	if p.opts.Publisher != nil {
		url, err := p.opts.Publisher.PublishVideo(ctx, final, res.Filename)
		if err != nil {
			log.Printf("⚠️ [%s] Remote publish failed, serving locally only: %v", session.ID, err)
		} else {
			res.RemoteURL = url
		}
	}

	if in.YouTube != nil && p.opts.Uploader != nil {
		meta := *in.YouTube
		if meta.Title == "" {
			meta.Title = in.Title
		}
		id, err := p.opts.Uploader.Upload(ctx, final, meta)
		if err != nil {
			log.Printf("⚠️ [%s] YouTube upload failed: %v", session.ID, err)
		} else {
			res.YouTubeID = id
		}
	}

	return res, nil
}

// stage copies every asset into the session and returns the composer request.
func (p *Processor) stage(session *storage.Session, in RenderInput) (video.Request, error) {
	images := make([]string, len(in.Images))
	for i, a := range in.Images {
		path, err := saveAsset(a, func(name string, r io.Reader) (string, error) {
			return session.SaveImage(i, name, r)
		})
		if err != nil {
			return video.Request{}, fmt.Errorf("failed to save image %d: %w", i+1, err)
		}
		images[i] = path
	}

	req := video.Request{
		Images:          images,
		Durations:       in.Durations,
		Animations:      in.Animations,
		Captions:        in.Captions,
		NarrationFlags:  in.NarrationFlags,
		Title:           video.Title{Text: strings.TrimSpace(in.Title), FontSize: in.TitleFontSize},
		CaptionFontSize: in.CaptionFontSize,
		FontName:        in.Font,
	}

	if in.Music != nil {
		path, err := saveAsset(*in.Music, session.SaveMusic)
		if err != nil {
			return video.Request{}, fmt.Errorf("failed to save background music: %w", err)
		}
		d, err := p.opts.MeasureAudio(path)
		if err != nil {
			log.Printf("⚠️ [%s] Could not measure background music, trimming to timeline: %v", session.ID, err)
			d = 0
		}
		req.Music = &video.AudioSource{Path: path, Duration: d}
	}

	return req, nil
}

func saveAsset(a Asset, save func(name string, r io.Reader) (string, error)) (string, error) {
	if a.Open == nil {
		return "", fmt.Errorf("asset %q cannot be opened", a.Name)
	}
	rc, err := a.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return save(a.Name, rc)
}

func (p *Processor) notify(ctx context.Context, in RenderInput, res *RenderResult, renderErr error) {
	if p.opts.Notifier == nil {
		return
	}

	event := RenderEvent{JobID: in.JobID, Status: "success", Timestamp: time.Now().UTC()}
	if renderErr != nil {
		event.Status = "failed"
		event.Error = renderErr.Error()
	}
	if res != nil {
		event.SessionID = res.SessionID
		event.Filename = res.Filename
		event.Duration = res.Duration
		event.RemoteURL = res.RemoteURL
		event.YouTubeID = res.YouTubeID
	}

	if err := p.opts.Notifier.PublishRenderEvent(ctx, event); err != nil {
		log.Printf("⚠️ Failed to publish render event: %v", err)
	}
}
