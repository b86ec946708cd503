package video

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tcolgate/mp3"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeDuration reports the playable length of an audio file in seconds. MP3 files are
// measured by summing frame durations; anything else, or an MP3 that yields no frames,
// is probed with ffprobe.
func ProbeDuration(path string) (float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if d, err := MP3Duration(path); err == nil && d > 0 {
			return d, nil
		}
	}
	return ffprobeDuration(path)
}

// MP3Duration sums the durations of every MP3 frame in path.
func MP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return mp3Duration(f)
}

func mp3Duration(r io.Reader) (float64, error) {
	decoder := mp3.NewDecoder(r)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func ffprobeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (float64, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		return 0, fmt.Errorf("failed to parse probe output: %w", err)
	}
	d, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("probe output has no duration: %w", err)
	}
	return d, nil
}
