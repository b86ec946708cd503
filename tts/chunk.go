package tts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxChunkRunes is the longest text the translate endpoint accepts per request.
const MaxChunkRunes = 100

// SplitText breaks text into pieces of at most max runes, preferring sentence punctuation,
// then whitespace, and cutting inside a word only when a single word is longer than max.
func SplitText(text string, max int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	if max <= 0 {
		max = MaxChunkRunes
	}

	var chunks []string
	for _, sentence := range splitAfterPunct(text) {
		chunks = appendWords(chunks, sentence, max)
	}
	return chunks
}

func splitAfterPunct(text string) []string {
	var parts []string
	start := 0
	for i, r := range text {
		if isBreakPunct(r) {
			end := i + utf8.RuneLen(r)
			if p := strings.TrimSpace(text[start:end]); p != "" {
				parts = append(parts, p)
			}
			start = end
		}
	}
	if p := strings.TrimSpace(text[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

func isBreakPunct(r rune) bool {
	switch r {
	case '.', '!', '?', ',', ';', ':', '…', '。', '！', '？', '、', '\n':
		return true
	}
	return false
}

// appendWords packs the words of s into chunks no longer than max runes.
func appendWords(chunks []string, s string, max int) []string {
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.FieldsFunc(s, unicode.IsSpace) {
		for utf8.RuneCountInString(word) > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
		}

		n := utf8.RuneCountInString(word)
		switch {
		case curLen == 0:
			cur.WriteString(word)
			curLen = n
		case curLen+1+n <= max:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curLen += 1 + n
		default:
			flush()
			cur.WriteString(word)
			curLen = n
		}
	}
	flush()
	return chunks
}
