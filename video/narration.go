package video

import (
	"context"
	"log"

	"shortreel/config"
)

// Speech is a synthesized narration clip. Duration is zero when it could not be measured.
type Speech struct {
	Path     string
	Duration float64
}

// Synthesizer writes spoken audio for text to outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, outPath string) (Speech, error)
}

// NarrationGate decides per slide whether narration is produced and fits it to the slide.
type NarrationGate struct {
	Synth    Synthesizer
	Language string

	// PathFor returns where slide i's narration audio is written.
	PathFor func(index int) string
}

// Narrate returns the narration layer for a slide starting at start and lasting slideDuration.
// The bool is false when the slide plays without narration, including when synthesis fails.
func (g NarrationGate) Narrate(ctx context.Context, caption string, narrate bool, index int, start, slideDuration float64) (AudioLayer, bool) {
	if !narrate || caption == "" || g.Synth == nil || g.PathFor == nil {
		return AudioLayer{}, false
	}

	lang := g.Language
	if lang == "" {
		lang = config.NarrationLanguage
	}

	speech, err := g.Synth.Synthesize(ctx, caption, lang, g.PathFor(index))
	if err != nil {
		log.Printf("⚠️ Narration failed for slide %d, continuing silent: %v", index+1, err)
		return AudioLayer{}, false
	}

	return AudioLayer{
		Kind:     AudioNarration,
		Path:     speech.Path,
		Start:    start,
		Duration: fitNarration(speech.Duration, slideDuration),
		Volume:   1.0,
	}, true
}

// fitNarration trims speech longer than the slide and leaves shorter speech untouched.
// Unknown lengths are bounded by the slide.
func fitNarration(speech, slide float64) float64 {
	if speech <= 0 || speech > slide {
		return slide
	}
	return speech
}
