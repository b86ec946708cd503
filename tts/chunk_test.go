package tts

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitText(t *testing.T) {
	cases := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty", "   ", 100, nil},
		{"short", "안녕하세요", 100, []string{"안녕하세요"}},
		{"sentences", "First one. Second one!", 100, []string{"First one.", "Second one!"}},
		{"packs words", "aa bb cc dd", 5, []string{"aa bb", "cc dd"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"collapses space", "a \n\t b", 100, []string{"a b"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SplitText(c.text, c.max)
			if strings.Join(got, "|") != strings.Join(c.want, "|") || len(got) != len(c.want) {
				t.Fatalf("SplitText(%q, %d) = %q; want %q", c.text, c.max, got, c.want)
			}
		})
	}
}

func TestSplitTextRespectsLimit(t *testing.T) {
	text := strings.Repeat("오늘은 날씨가 정말 좋습니다 그리고 ", 20)
	chunks := SplitText(text, MaxChunkRunes)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > MaxChunkRunes || n == 0 {
			t.Fatalf("chunk %d has %d runes", i, n)
		}
	}
	if strings.Join(chunks, " ") != strings.Join(strings.Fields(text), " ") {
		t.Fatalf("chunks do not reassemble the text")
	}
}
