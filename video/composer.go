package video

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"

	"shortreel/config"
)

// Request holds one render's per-slide lists, which share one index space, plus the
// settings applied to every slide.
type Request struct {
	Images         []string
	Durations      []string
	Animations     []string
	Captions       []string
	NarrationFlags []string

	Title           Title
	CaptionFontSize int
	FontName        string

	// Music is optional background audio laid under the whole timeline.
	Music *AudioSource
}

// Slides validates the request shape and resolves each slide's settings. Blank captions
// become empty, so they produce neither a caption layer nor narration.
func (r Request) Slides() ([]Slide, error) {
	if err := ValidateShape(len(r.Images), len(r.Durations), len(r.Animations), len(r.Captions), len(r.NarrationFlags)); err != nil {
		return nil, err
	}

	slides := make([]Slide, len(r.Images))
	for i := range r.Images {
		slides[i] = Slide{
			ImagePath: r.Images[i],
			Duration:  ParseDuration(r.Durations[i]),
			Effect:    ParseEffect(r.Animations[i]),
			Caption:   strings.TrimSpace(r.Captions[i]),
			Narrate:   ParseNarrationFlag(r.NarrationFlags[i]),
		}
	}
	return slides, nil
}

// Encoder flattens a timeline into one video file at outputPath.
type Encoder interface {
	Encode(ctx context.Context, tl *Timeline, outputPath string) error
}

// Composer walks the slides once and builds the timeline.
type Composer struct {
	Canvas      Canvas
	FrameHeight int
	TitleBand   image.Rectangle
	CaptionBand image.Rectangle

	Images    ImageLoader
	Text      TextRenderer
	Narration NarrationGate
	Encoder   Encoder
}

// NewComposer returns a composer on the default canvas and text bands.
func NewComposer(images ImageLoader, text TextRenderer, narration NarrationGate, encoder Encoder) *Composer {
	return &Composer{
		Canvas:      DefaultCanvas(),
		FrameHeight: config.WorkingFrameHeight,
		TitleBand:   TitleBand(),
		CaptionBand: CaptionBand(),
		Images:      images,
		Text:        text,
		Narration:   narration,
		Encoder:     encoder,
	}
}

// TitleBand is the canvas region the title is drawn in.
func TitleBand() image.Rectangle {
	return image.Rect(0, config.TitleBandY, config.TitleBandWidth, config.TitleBandY+config.TitleBandHeight)
}

// CaptionBand is the canvas region captions are drawn in.
func CaptionBand() image.Rectangle {
	return image.Rect(0, config.CaptionBandY, config.CaptionBandWidth, config.CaptionBandY+config.CaptionBandHeight)
}

// Compose builds the full timeline for req. Any error leaves no timeline behind.
func (c *Composer) Compose(ctx context.Context, req Request) (*Timeline, error) {
	slides, err := req.Slides()
	if err != nil {
		return nil, err
	}
	if c.Images == nil {
		return nil, fmt.Errorf("composer has no image loader")
	}

	tl := NewTimeline(c.Canvas)
	animator := Animator{Canvas: c.Canvas, FrameHeight: c.FrameHeight}

	var title *image.RGBA
	if req.Title.Text != "" {
		title = c.Text.Render(req.Title.Text, req.FontName, fontSizeOr(req.Title.FontSize, config.DefaultTitleFontSize), c.TitleBand.Size())
	}

	captionSize := fontSizeOr(req.CaptionFontSize, config.DefaultCaptionFontSize)

	for i, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := tl.Cursor()

		img, err := c.Images.Load(s.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		tl.Visual = append(tl.Visual, animator.Animate(img, start, s.Duration, s.Effect))

		if title != nil {
			tl.Visual = append(tl.Visual, VisualLayer{
				Kind:    LayerTitle,
				Surface: title,
				Start:   start,
				End:     start + s.Duration,
				Motion:  StaticMotion(float64(c.TitleBand.Min.X), float64(c.TitleBand.Min.Y), c.TitleBand.Size()),
			})
		}

		if s.Caption != "" {
			tl.Visual = append(tl.Visual, c.Text.Layer(LayerCaption, s.Caption, req.FontName, captionSize, c.CaptionBand, start, s.Duration))
		}

		if narration, ok := c.Narration.Narrate(ctx, s.Caption, s.Narrate, i, start, s.Duration); ok {
			tl.Audio = append(tl.Audio, narration)
		}

		tl.advance(s.Duration)
	}

	if req.Music != nil && req.Music.Path != "" {
		tl.Audio = append(tl.Audio, musicLayer(*req.Music, tl.Duration()))
	}

	log.Printf("🎞️ Timeline composed: %d slides, %d visual layers, %d audio layers, %.2fs",
		len(slides), len(tl.Visual), len(tl.Audio), tl.Duration())

	return tl, nil
}

// Render composes req and hands the timeline to the encoder.
func (c *Composer) Render(ctx context.Context, req Request, outputPath string) (*Timeline, error) {
	tl, err := c.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	if c.Encoder == nil {
		return nil, fmt.Errorf("composer has no encoder")
	}
	if err := c.Encoder.Encode(ctx, tl, outputPath); err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	return tl, nil
}

// musicLayer starts music at zero and trims it to the timeline. Music is never looped.
func musicLayer(music AudioSource, total float64) AudioLayer {
	d := total
	if music.Duration > 0 && music.Duration < total {
		d = music.Duration
	}
	return AudioLayer{
		Kind:     AudioMusic,
		Path:     music.Path,
		Start:    0,
		Duration: d,
		Volume:   config.MusicVolume,
	}
}

func fontSizeOr(size, def int) int {
	if size <= 0 {
		return def
	}
	return size
}
