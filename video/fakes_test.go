package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type goFonts struct {
	t     *testing.T
	mu    sync.Mutex
	names []string
}

func (g *goFonts) Face(name string, size float64) font.Face {
	g.mu.Lock()
	g.names = append(g.names, name)
	g.mu.Unlock()

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		g.t.Fatalf("parse goregular: %v", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		g.t.Fatalf("new face: %v", err)
	}
	return face
}

type fakeImages struct {
	size   image.Point
	failOn string
	loaded []string
}

func (f *fakeImages) Load(path string) (image.Image, error) {
	if path == f.failOn {
		return nil, fmt.Errorf("failed to decode image %s: corrupt", path)
	}
	f.loaded = append(f.loaded, path)
	return image.NewRGBA(image.Rectangle{Max: f.size}), nil
}

type fakeSynth struct {
	durations map[string]float64
	fail      bool
	calls     []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, lang, outPath string) (Speech, error) {
	f.calls = append(f.calls, text+"|"+lang+"|"+outPath)
	if f.fail {
		return Speech{}, errors.New("tts unavailable")
	}
	return Speech{Path: outPath, Duration: f.durations[text]}, nil
}

type fakeEncoder struct {
	err    error
	called bool
	tl     *Timeline
	path   string
}

func (f *fakeEncoder) Encode(ctx context.Context, tl *Timeline, outputPath string) error {
	f.called = true
	f.tl = tl
	f.path = outputPath
	return f.err
}

// inkBounds reports the bounding box of the non-transparent pixels in img.
func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
