package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"shortreel/publish"
)

// Manifest is a render request stored as YAML or JSON, used for one-shot CLI renders and
// queued jobs. Image and music references are file paths (relative to the manifest) or
// http(s) URLs.
type Manifest struct {
	ID              string          `yaml:"id" json:"id"`
	Title           string          `yaml:"title" json:"title"`
	TitleFontSize   int             `yaml:"title_font_size" json:"title_font_size"`
	CaptionFontSize int             `yaml:"caption_font_size" json:"caption_font_size"`
	Font            string          `yaml:"font" json:"font"`
	Music           string          `yaml:"music" json:"music"`
	Slides          []ManifestSlide `yaml:"slides" json:"slides"`
	YouTube         *YouTubeOptions `yaml:"youtube,omitempty" json:"youtube,omitempty"`
}

// ManifestSlide is one slide of a manifest. A zero duration means the default.
type ManifestSlide struct {
	Image     string  `yaml:"image" json:"image"`
	Duration  float64 `yaml:"duration" json:"duration"`
	Animation string  `yaml:"animation" json:"animation"`
	Caption   string  `yaml:"caption" json:"caption"`
	Narrate   bool    `yaml:"narrate" json:"narrate"`
}

// YouTubeOptions requests a Shorts upload of the finished render.
type YouTubeOptions struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Privacy     string   `yaml:"privacy" json:"privacy"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes YAML, or JSON since it is valid YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Input converts the manifest to a render request, resolving relative paths against baseDir.
func (m *Manifest) Input(ctx context.Context, baseDir string) RenderInput {
	in := RenderInput{
		Title:           m.Title,
		TitleFontSize:   m.TitleFontSize,
		CaptionFontSize: m.CaptionFontSize,
		Font:            m.Font,
		JobID:           m.ID,
	}

	for _, s := range m.Slides {
		in.Images = append(in.Images, ResolveAsset(ctx, s.Image, baseDir))
		duration := ""
		if s.Duration > 0 {
			duration = strconv.FormatFloat(s.Duration, 'f', -1, 64)
		}
		in.Durations = append(in.Durations, duration)
		in.Animations = append(in.Animations, s.Animation)
		in.Captions = append(in.Captions, s.Caption)
		in.NarrationFlags = append(in.NarrationFlags, strconv.FormatBool(s.Narrate))
	}

	if m.Music != "" {
		music := ResolveAsset(ctx, m.Music, baseDir)
		in.Music = &music
	}

	if m.YouTube != nil {
		in.YouTube = &publish.Metadata{
			Title:       m.YouTube.Title,
			Description: m.YouTube.Description,
			Tags:        m.YouTube.Tags,
			Privacy:     m.YouTube.Privacy,
		}
	}

	return in
}

// ManifestDir is the directory relative manifest references resolve against.
func ManifestDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(abs)
}
