package video

import (
	"image"

	"shortreel/config"
)

// Canvas is the fixed output frame geometry and rate.
type Canvas struct {
	Width  int
	Height int
	FPS    int
}

// DefaultCanvas returns the 1080x1920 portrait canvas at 24 fps.
func DefaultCanvas() Canvas {
	return Canvas{Width: config.VideoWidth, Height: config.VideoHeight, FPS: config.VideoFPS}
}

// Size returns the canvas dimensions as a point.
func (c Canvas) Size() image.Point {
	return image.Pt(c.Width, c.Height)
}

// Slide is one input image plus its timing and behaviour.
type Slide struct {
	ImagePath string
	Duration  float64
	Effect    Effect
	Caption   string
	Narrate   bool
}

// Title is applied identically to every slide.
type Title struct {
	Text     string
	FontSize int
}

// LayerKind identifies what a visual layer was rendered from.
type LayerKind int

const (
	LayerImage LayerKind = iota
	LayerTitle
	LayerCaption
)

func (k LayerKind) String() string {
	switch k {
	case LayerTitle:
		return "title"
	case LayerCaption:
		return "caption"
	default:
		return "image"
	}
}

// VisualLayer is a rendered surface shown during [Start, End) with a placement over time.
// Surface is never mutated after the layer is built.
type VisualLayer struct {
	Kind    LayerKind
	Surface *image.RGBA
	Start   float64
	End     float64
	Motion  Motion
}

// Duration is the length of the layer's window.
func (l VisualLayer) Duration() float64 {
	return l.End - l.Start
}

// AudioKind identifies the role of an audio layer in the mix.
type AudioKind int

const (
	AudioNarration AudioKind = iota
	AudioMusic
)

func (k AudioKind) String() string {
	if k == AudioMusic {
		return "music"
	}
	return "narration"
}

// AudioLayer is an audio file placed at Start and played for Duration seconds at Volume.
type AudioLayer struct {
	Kind     AudioKind
	Path     string
	Start    float64
	Duration float64
	Volume   float64
}

// AudioSource is an audio asset with its intrinsic length. A zero Duration means unknown.
type AudioSource struct {
	Path     string
	Duration float64
}

// Timeline accumulates visual and audio layers against a cursor that only moves forward.
type Timeline struct {
	Canvas Canvas
	Visual []VisualLayer
	Audio  []AudioLayer
	cursor float64
}

// NewTimeline returns an empty timeline on the given canvas.
func NewTimeline(canvas Canvas) *Timeline {
	return &Timeline{Canvas: canvas}
}

// Cursor is the number of seconds already laid out.
func (t *Timeline) Cursor() float64 {
	return t.cursor
}

// Duration is the total length of the timeline.
func (t *Timeline) Duration() float64 {
	return t.cursor
}

func (t *Timeline) advance(seconds float64) {
	if seconds > 0 {
		t.cursor += seconds
	}
}
