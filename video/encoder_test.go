package video

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleTimeline() *Timeline {
	tl := NewTimeline(DefaultCanvas())
	frame := image.NewRGBA(image.Rect(0, 0, 1080, 3840))
	title := image.NewRGBA(image.Rect(0, 0, 1080, 300))
	g := Geometry{Canvas: image.Pt(1080, 1920), Frame: image.Pt(1080, 3840)}

	tl.Visual = []VisualLayer{
		{Kind: LayerImage, Surface: frame, Start: 0, End: 2, Motion: MotionFor(EffectSlideLeft, g)},
		{Kind: LayerTitle, Surface: title, Start: 0, End: 2, Motion: StaticMotion(0, 200, title.Bounds().Size())},
		{Kind: LayerImage, Surface: frame, Start: 2, End: 6, Motion: MotionFor(EffectZoomIn, g)},
		{Kind: LayerTitle, Surface: title, Start: 2, End: 6, Motion: StaticMotion(0, 200, title.Bounds().Size())},
	}
	tl.Audio = []AudioLayer{
		{Kind: AudioNarration, Path: "/s/narration_1.mp3", Start: 2, Duration: 4, Volume: 1},
		{Kind: AudioMusic, Path: "/s/bgm.mp3", Start: 0, Duration: 6, Volume: 0.3},
	}
	tl.advance(2)
	tl.advance(4)
	return tl
}

func layerFiles(n int) []string {
	files := make([]string, n)
	for i := range files {
		files[i] = filepath.Join("/s/layers", "layer_"+string(rune('a'+i))+".png")
	}
	return files
}

func TestCommandBuildsGraph(t *testing.T) {
	tl := sampleTimeline()
	enc := NewFFmpegEncoder("veryfast")

	args := enc.Command(tl, layerFiles(len(tl.Visual)), "/s/render.mp4").GetArgs()
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"color=c=black:s=1080x1920:r=24:d=6.000",
		"lavfi",
		"overlay",
		"eof_action=pass",
		"zoompan",
		"setpts",
		"atrim",
		"adelay",
		"amix",
		"libx264",
		"yuv420p",
		"veryfast",
		"+faststart",
		"/s/render.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q:\n%s", want, joined)
		}
	}

	inputs := 0
	for _, a := range args {
		if a == "-i" {
			inputs++
		}
	}
	if want := 1 + len(tl.Visual) + len(tl.Audio); inputs != want {
		t.Fatalf("inputs = %d; want %d", inputs, want)
	}

	if strings.Count(joined, "zoompan") != 1 {
		t.Fatalf("expected exactly one zoompan for the single zoom layer")
	}
}

func TestCommandWithoutAudio(t *testing.T) {
	tl := sampleTimeline()
	tl.Audio = nil

	joined := strings.Join(NewFFmpegEncoder("").Command(tl, layerFiles(len(tl.Visual)), "/s/out.mp4").GetArgs(), " ")
	if strings.Contains(joined, "amix") || strings.Contains(joined, "adelay") {
		t.Fatalf("unexpected audio graph:\n%s", joined)
	}
	if !strings.Contains(joined, "fast") {
		t.Fatalf("default preset missing:\n%s", joined)
	}
}

func TestPlacementExpr(t *testing.T) {
	g := Geometry{Canvas: image.Pt(1080, 1920), Frame: image.Pt(1080, 3840)}

	x, y := placementExpr(MotionFor(EffectNone, g), 2, 4)
	if x != "0" || y != "-960" {
		t.Fatalf("static = (%s,%s); want (0,-960)", x, y)
	}

	x, y = placementExpr(MotionFor(EffectSlideLeft, g), 2, 4)
	if x != "0+(-100)*clip((t-2.000)/4.000,0,1)" {
		t.Fatalf("slide-left x = %s", x)
	}
	if y != "-960+(0)*clip((t-2.000)/4.000,0,1)" {
		t.Fatalf("slide-left y = %s", y)
	}

	// Zoom is handled by zoompan, so the overlay stays put.
	x, y = placementExpr(MotionFor(EffectZoomIn, g), 0, 3)
	if x != "0" || y != "-960" {
		t.Fatalf("zoom = (%s,%s)", x, y)
	}
}

func TestWriteSurfacesGivesEveryLayerItsOwnFile(t *testing.T) {
	dir := t.TempDir()
	tl := sampleTimeline()

	files, err := writeSurfaces(tl.Visual, dir)
	if err != nil {
		t.Fatalf("writeSurfaces: %v", err)
	}
	if len(files) != len(tl.Visual) {
		t.Fatalf("files = %d; want %d", len(files), len(tl.Visual))
	}

	seen := map[string]bool{}
	for _, f := range files {
		if seen[f] {
			t.Fatalf("duplicate path %s", f)
		}
		seen[f] = true
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("stat %s: %v", f, err)
		}
		img, err := LoadImage(f)
		if err != nil {
			t.Fatalf("reload %s: %v", f, err)
		}
		if img.Bounds().Dx() != 1080 {
			t.Fatalf("%s width = %d", f, img.Bounds().Dx())
		}
	}
}

func TestWriteSurfacesRejectsMissingSurface(t *testing.T) {
	_, err := writeSurfaces([]VisualLayer{{Kind: LayerCaption}}, t.TempDir())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestEncodeFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "render.partial.mp4")

	enc := &FFmpegEncoder{Binary: filepath.Join(dir, "no-such-ffmpeg")}
	if err := enc.Encode(context.Background(), sampleTimeline(), out); err == nil {
		t.Fatalf("expected error from missing binary")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output exists after failure: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "layers")); !os.IsNotExist(err) {
		t.Fatalf("layer directory left behind: %v", err)
	}
}

func TestEncodeEmptyTimeline(t *testing.T) {
	enc := NewFFmpegEncoder("")
	if err := enc.Encode(context.Background(), NewTimeline(DefaultCanvas()), filepath.Join(t.TempDir(), "x.mp4")); err == nil {
		t.Fatalf("expected error for empty timeline")
	}
}
