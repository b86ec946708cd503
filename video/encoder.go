package video

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"shortreel/config"
)

// FFmpegEncoder flattens a timeline with one ffmpeg invocation: every visual layer becomes a
// looped PNG input overlaid on a black canvas in timeline order, and audio layers are delayed,
// trimmed and mixed.
type FFmpegEncoder struct {
	Binary string
	Preset string
}

// NewFFmpegEncoder returns an encoder using the ffmpeg binary on PATH.
func NewFFmpegEncoder(preset string) *FFmpegEncoder {
	if preset == "" {
		preset = config.DefaultVideoPreset
	}
	return &FFmpegEncoder{Binary: "ffmpeg", Preset: preset}
}

// Encode writes the layer surfaces next to outputPath and runs ffmpeg. On failure no file
// is left at outputPath.
func (e *FFmpegEncoder) Encode(ctx context.Context, tl *Timeline, outputPath string) error {
	if tl == nil || tl.Duration() <= 0 || len(tl.Visual) == 0 {
		return fmt.Errorf("nothing to encode")
	}

	layerDir := filepath.Join(filepath.Dir(outputPath), "layers")
	if err := os.MkdirAll(layerDir, 0o755); err != nil {
		return fmt.Errorf("failed to create layer directory: %w", err)
	}
	defer os.RemoveAll(layerDir)

	files, err := writeSurfaces(tl.Visual, layerDir)
	if err != nil {
		return err
	}

	args := e.Command(tl, files, outputPath).GetArgs()

	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	log.Printf("🎬 Encoding %d visual / %d audio layers (%.2fs) -> %s",
		len(tl.Visual), len(tl.Audio), tl.Duration(), filepath.Base(outputPath))

	cmd := exec.CommandContext(ctx, binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg encode error: %w, output: %s", err, tail(out, 2000))
	}
	return nil
}

// Command builds the ffmpeg graph for tl. files[i] is the PNG holding tl.Visual[i].Surface.
func (e *FFmpegEncoder) Command(tl *Timeline, files []string, outputPath string) *ffmpeg.Stream {
	c := tl.Canvas
	total := tl.Duration()

	video := ffmpeg.Input(
		fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s", c.Width, c.Height, c.FPS, seconds(total)),
		ffmpeg.KwArgs{"f": "lavfi"},
	)

	for i, layer := range tl.Visual {
		video = overlayLayer(video, layer, files[i], c.FPS)
	}

	streams := []*ffmpeg.Stream{video}
	if mix := mixAudio(tl.Audio); mix != nil {
		streams = append(streams, mix)
	}

	preset := e.Preset
	if preset == "" {
		preset = config.DefaultVideoPreset
	}

	return ffmpeg.Output(streams, outputPath, ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"pix_fmt":  config.PixelFormat,
		"r":        c.FPS,
		"t":        seconds(total),
		"preset":   preset,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"movflags": "+faststart",
	}).OverWriteOutput()
}

func overlayLayer(base *ffmpeg.Stream, layer VisualLayer, file string, fps int) *ffmpeg.Stream {
	d := layer.Duration()
	m := layer.Motion

	src := ffmpeg.Input(file, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": fps,
		"t":         seconds(d),
	})

	if m.Zooms() {
		frames := d * float64(fps)
		if frames < 1 {
			frames = 1
		}
		src = src.
			Filter("format", ffmpeg.Args{"yuva420p"}).
			Filter("zoompan", ffmpeg.Args{}, ffmpeg.KwArgs{
				"z":   fmt.Sprintf("%g+%g*min(on/%g,1)", m.ScaleFrom, m.ScaleTo-m.ScaleFrom, frames),
				"x":   "iw/2-(iw/zoom/2)",
				"y":   "ih/2-(ih/zoom/2)",
				"d":   1,
				"fps": fps,
				"s":   fmt.Sprintf("%dx%d", m.Frame.X, m.Frame.Y),
			})
	}

	src = src.
		Filter("format", ffmpeg.Args{"rgba"}).
		Filter("setpts", ffmpeg.Args{fmt.Sprintf("PTS-STARTPTS+%s/TB", seconds(layer.Start))})

	x, y := placementExpr(m, layer.Start, d)

	return ffmpeg.Filter([]*ffmpeg.Stream{base, src}, "overlay", ffmpeg.Args{}, ffmpeg.KwArgs{
		"x":          x,
		"y":          y,
		"eval":       "frame",
		"eof_action": "pass",
		"enable":     fmt.Sprintf("gte(t,%s)*lt(t,%s)", seconds(layer.Start), seconds(layer.End)),
	})
}

// placementExpr is Motion.At as ffmpeg expressions over the overlay clock t. Scale is applied
// by zoompan inside the frame, so only translation is expressed here.
func placementExpr(m Motion, start, duration float64) (string, string) {
	if !m.Moves() || duration <= 0 {
		return fmt.Sprintf("%g", m.Origin.X), fmt.Sprintf("%g", m.Origin.Y)
	}
	p := fmt.Sprintf("clip((t-%s)/%s,0,1)", seconds(start), seconds(duration))
	return fmt.Sprintf("%g+(%g)*%s", m.Origin.X, m.Travel.X, p),
		fmt.Sprintf("%g+(%g)*%s", m.Origin.Y, m.Travel.Y, p)
}

func mixAudio(layers []AudioLayer) *ffmpeg.Stream {
	var tracks []*ffmpeg.Stream
	for _, a := range layers {
		if a.Path == "" || a.Duration <= 0 {
			continue
		}
		delay := int64(a.Start*1000 + 0.5)
		tracks = append(tracks, ffmpeg.Input(a.Path).Audio().
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": seconds(a.Duration)}).
			Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"}).
			Filter("adelay", ffmpeg.Args{}, ffmpeg.KwArgs{"delays": delay, "all": 1}).
			Filter("volume", ffmpeg.Args{fmt.Sprintf("%g", a.Volume)}))
	}

	switch len(tracks) {
	case 0:
		return nil
	case 1:
		return tracks[0]
	}

	return ffmpeg.Filter(tracks, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
		"inputs":             len(tracks),
		"duration":           "longest",
		"dropout_transition": 0,
		"normalize":          0,
	})
}

// writeSurfaces stores each layer's surface as a PNG and returns one distinct path per layer.
// A surface shared by several layers is encoded once and linked for the rest, since every
// layer needs its own ffmpeg input.
func writeSurfaces(layers []VisualLayer, dir string) ([]string, error) {
	written := make(map[*image.RGBA]string)
	files := make([]string, len(layers))

	for i, layer := range layers {
		if layer.Surface == nil {
			return nil, fmt.Errorf("layer %d (%s) has no surface", i, layer.Kind)
		}

		path := filepath.Join(dir, fmt.Sprintf("layer_%03d_%s.png", i, layer.Kind))
		if first, ok := written[layer.Surface]; ok && os.Link(first, path) == nil {
			files[i] = path
			continue
		}

		if err := writePNG(path, layer.Surface); err != nil {
			return nil, fmt.Errorf("failed to write layer %d: %w", i, err)
		}
		if _, ok := written[layer.Surface]; !ok {
			written[layer.Surface] = path
		}
		files[i] = path
	}
	return files, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func seconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
