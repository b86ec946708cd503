package video

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FontResolver turns a font name and pixel size into a face. It must always return a usable
// face, falling back to a built-in font when name cannot be loaded.
type FontResolver interface {
	Face(name string, size float64) font.Face
}

// TextRenderer draws single strings onto transparent band surfaces.
type TextRenderer struct {
	Fonts FontResolver
	Color color.Color
}

// Render draws text centred on its ink bounds inside a size-sized transparent surface.
func (r TextRenderer) Render(text, fontName string, fontSize int, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	text = strings.TrimSpace(text)
	if text == "" || r.Fonts == nil {
		return dst
	}

	face := r.Fonts.Face(fontName, float64(fontSize))
	bounds, _ := font.BoundString(face, text)

	inkW := bounds.Max.X - bounds.Min.X
	inkH := bounds.Max.Y - bounds.Min.Y

	col := r.Color
	if col == nil {
		col = color.White
	}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: (fixed.I(size.X)-inkW)/2 - bounds.Min.X,
			Y: (fixed.I(size.Y)-inkH)/2 - bounds.Min.Y,
		},
	}
	d.DrawString(text)
	return dst
}

// Layer renders text into band, a fixed region of the canvas, shown for [start, start+duration).
func (r TextRenderer) Layer(kind LayerKind, text, fontName string, fontSize int, band image.Rectangle, start, duration float64) VisualLayer {
	surface := r.Render(text, fontName, fontSize, band.Size())
	return VisualLayer{
		Kind:    kind,
		Surface: surface,
		Start:   start,
		End:     start + duration,
		Motion:  StaticMotion(float64(band.Min.X), float64(band.Min.Y), band.Size()),
	}
}
