package video

import (
	"image"
	"strings"

	"shortreel/config"
)

// Effect is the closed set of slide animations.
type Effect int

const (
	EffectNone Effect = iota
	EffectZoomIn
	EffectSlideLeft
	EffectSlideRight
	EffectSlideUp
	EffectSlideDown
)

var effectNames = map[Effect]string{
	EffectNone:       "none",
	EffectZoomIn:     "stop",
	EffectSlideLeft:  "slide-left",
	EffectSlideRight: "slide-right",
	EffectSlideUp:    "slide-up",
	EffectSlideDown:  "slide-down",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return "none"
}

// ParseEffect maps a request animation name to an Effect. Unknown names are EffectNone.
func ParseEffect(name string) Effect {
	name = strings.ToLower(strings.TrimSpace(name))
	for e, n := range effectNames {
		if n == name {
			return e
		}
	}
	switch name {
	case "zoom", "zoom-in":
		return EffectZoomIn
	}
	return EffectNone
}

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Transform is where a layer sits at one instant: top-left corner on the canvas and uniform scale.
type Transform struct {
	X, Y  float64
	Scale float64
}

// Geometry describes a layer surface relative to the canvas.
type Geometry struct {
	Canvas image.Point
	Frame  image.Point
}

// Motion is a linear placement over a layer's window. At t=0 the layer rests at Origin with
// scale ScaleFrom; at t=duration it has moved by Travel and reached ScaleTo. Scaling is about
// the frame's own centre.
type Motion struct {
	Frame     image.Point
	Origin    Point
	Travel    Point
	ScaleFrom float64
	ScaleTo   float64
}

// StaticMotion pins a frame of the given size at (x, y).
func StaticMotion(x, y float64, frame image.Point) Motion {
	return Motion{Frame: frame, Origin: Point{X: x, Y: y}, ScaleFrom: 1, ScaleTo: 1}
}

// MotionFor centres the frame on the canvas and applies effect.
func MotionFor(effect Effect, g Geometry) Motion {
	m := StaticMotion(
		float64(g.Canvas.X-g.Frame.X)/2,
		float64(g.Canvas.Y-g.Frame.Y)/2,
		g.Frame,
	)

	switch effect {
	case EffectZoomIn:
		m.ScaleTo = config.ZoomEndScale
	case EffectSlideLeft:
		m.Travel.X = -config.SlideTravel
	case EffectSlideRight:
		m.Travel.X = config.SlideTravel
	case EffectSlideUp:
		m.Travel.Y = -config.SlideTravel
	case EffectSlideDown:
		m.Travel.Y = config.SlideTravel
	}
	return m
}

// Placement is the transform of a layer with the given effect t seconds into a window of duration seconds.
func Placement(effect Effect, t, duration float64, g Geometry) Transform {
	return MotionFor(effect, g).At(t, duration)
}

// At evaluates the motion t seconds into a window of duration seconds.
func (m Motion) At(t, duration float64) Transform {
	p := progress(t, duration)
	s := m.ScaleFrom + (m.ScaleTo-m.ScaleFrom)*p
	return Transform{
		X:     m.Origin.X + m.Travel.X*p + float64(m.Frame.X)*(1-s)/2,
		Y:     m.Origin.Y + m.Travel.Y*p + float64(m.Frame.Y)*(1-s)/2,
		Scale: s,
	}
}

// Zooms reports whether the motion changes scale over time.
func (m Motion) Zooms() bool {
	return m.ScaleFrom != m.ScaleTo
}

// Moves reports whether the motion changes position over time.
func (m Motion) Moves() bool {
	return m.Travel.X != 0 || m.Travel.Y != 0
}

func progress(t, duration float64) float64 {
	if duration <= 0 || t <= 0 {
		return 0
	}
	if t >= duration {
		return 1
	}
	return t / duration
}
