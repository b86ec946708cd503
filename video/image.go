package video

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageLoader decodes a slide image from its stored path.
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

// FileImageLoader decodes JPEG, PNG, GIF and WebP files from disk.
type FileImageLoader struct{}

func (FileImageLoader) Load(path string) (image.Image, error) {
	return LoadImage(path)
}

// LoadImage opens and decodes an image file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// FitFrame scales src so its width equals width, then crops or pads it vertically
// around its centre to exactly height. Padding is transparent.
func FitFrame(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}

	scaledH := int(float64(b.Dy())*float64(width)/float64(b.Dx()) + 0.5)
	if scaledH < 1 {
		scaledH = 1
	}
	top := (height - scaledH) / 2

	// Rows that fall outside dst are clipped, which is the crop.
	draw.CatmullRom.Scale(dst, image.Rect(0, top, width, top+scaledH), src, b, draw.Src, nil)
	return dst
}

// Animator builds the moving image layer of a slide.
type Animator struct {
	Canvas      Canvas
	FrameHeight int
}

// Animate fits img to the working frame and attaches the motion for effect over [start, start+duration).
func (a Animator) Animate(img image.Image, start, duration float64, effect Effect) VisualLayer {
	frame := FitFrame(img, a.Canvas.Width, a.FrameHeight)
	return VisualLayer{
		Kind:    LayerImage,
		Surface: frame,
		Start:   start,
		End:     start + duration,
		Motion: MotionFor(effect, Geometry{
			Canvas: a.Canvas.Size(),
			Frame:  frame.Bounds().Size(),
		}),
	}
}
