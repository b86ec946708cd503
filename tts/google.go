package tts

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"shortreel/video"
)

// DefaultEndpoint is Google Translate's public speech endpoint.
const DefaultEndpoint = "https://translate.google.com/translate_tts"

// Client synthesizes speech through Google Translate and writes MP3 files.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Cache    Cache

	// Measure reports the length of a written clip. Defaults to video.ProbeDuration.
	Measure func(path string) (float64, error)
}

// NewClient returns a client with a 30s request timeout. cache may be nil.
func NewClient(cache Cache) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Endpoint: DefaultEndpoint,
		Cache:    cache,
	}
}

// Synthesize writes the spoken text to outPath and measures it. A clip that cannot be
// measured is returned with a zero duration.
func (c *Client) Synthesize(ctx context.Context, text, lang, outPath string) (video.Speech, error) {
	audio, err := c.Audio(ctx, text, lang)
	if err != nil {
		return video.Speech{}, err
	}

	if err := os.WriteFile(outPath, audio, 0o644); err != nil {
		return video.Speech{}, fmt.Errorf("failed to write narration: %w", err)
	}

	measure := c.Measure
	if measure == nil {
		measure = video.ProbeDuration
	}

	d, err := measure(outPath)
	if err != nil {
		log.Printf("⚠️ Could not measure narration %s: %v", outPath, err)
		d = 0
	}

	return video.Speech{Path: outPath, Duration: d}, nil
}

// Audio returns MP3 bytes for text in lang, consulting the cache first.
func (c *Client) Audio(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := SplitText(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text to synthesize")
	}

	key := CacheKey(lang, text)
	if c.Cache != nil {
		if data, ok, err := c.Cache.Get(ctx, key); err != nil {
			log.Printf("⚠️ TTS cache read failed: %v", err)
		} else if ok {
			return data, nil
		}
	}

	var audio []byte
	for i, chunk := range chunks {
		data, err := c.fetch(ctx, chunk, lang, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("tts chunk %d/%d: %w", i+1, len(chunks), err)
		}
		// MP3 frames are self-delimiting, so segments concatenate into one stream.
		audio = append(audio, data...)
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, audio); err != nil {
			log.Printf("⚠️ TTS cache write failed: %v", err)
		}
	}
	return audio, nil
}

func (c *Client) fetch(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts request failed: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tts returned empty audio")
	}
	return data, nil
}
