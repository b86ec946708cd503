package video

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"shortreel/config"
)

// ErrInputShape marks caller errors in the shape of a render request.
var ErrInputShape = errors.New("invalid input shape")

// InputError describes why a request was rejected. It matches ErrInputShape under errors.Is.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInputShape
}

func inputErrorf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// ValidateShape checks that the per-slide lists are non-empty and share one index space.
func ValidateShape(images, durations, animations, captions, narration int) error {
	if images == 0 {
		return inputErrorf("no images provided")
	}
	if durations != images || animations != images || captions != images || narration != images {
		return inputErrorf(
			"mismatched slide inputs: %d images, %d durations, %d animations, %d captions, %d narration flags",
			images, durations, animations, captions, narration,
		)
	}
	return nil
}

// ParseDuration parses a slide duration in seconds. Missing, unparseable, non-positive
// and non-finite values fall back to the default slide duration.
func ParseDuration(raw string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
		return config.DefaultSlideDuration
	}
	return d
}

// ParseNarrationFlag enables narration only for the literal "true".
func ParseNarrationFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
