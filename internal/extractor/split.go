package extractor

import (
	"strings"
	"unicode"

	"github.com/obelus-labs/veritas/internal/lexicon"
)

// SentenceSpan is a split sentence together with its rune-offset span within
// the window it was split from, used to interpolate a timing estimate.
type SentenceSpan struct {
	Text       string
	StartRune  int
	EndRune    int
	WindowLen  int
}

// SplitSentences splits window text at '.', '!', '?', ';' followed by
// whitespace-and-uppercase or end-of-window, preserving the terminating
// punctuation. A period inside a known abbreviation, or between two single
// capital letters (initials), is not treated as a sentence boundary (§4.B).
func SplitSentences(text string, lex *lexicon.Lexicon) []string {
	spans := SplitSentenceSpans(text, lex)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.Text
	}
	return out
}

// SplitSentenceSpans is SplitSentences plus rune-offset spans, used to
// proportionally interpolate each sentence's StartS/EndS within its window.
func SplitSentenceSpans(text string, lex *lexicon.Lexicon) []SentenceSpan {
	var sentences []SentenceSpan
	runes := []rune(text)
	n := len(runes)
	start := 0
	i := 0

	isTerminal := func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == ';'
	}

	emit := func(a, b int) {
		trimmed := strings.TrimSpace(string(runes[a:b]))
		if trimmed == "" {
			return
		}
		// Re-anchor the trimmed span within [a,b) so leading/trailing
		// whitespace doesn't skew the proportional timing estimate.
		lead := 0
		for a+lead < b && unicode.IsSpace(runes[a+lead]) {
			lead++
		}
		sentences = append(sentences, SentenceSpan{
			Text:      trimmed,
			StartRune: a + lead,
			EndRune:   a + lead + len([]rune(trimmed)),
			WindowLen: n,
		})
	}

	for i < n {
		if !isTerminal(runes[i]) {
			i++
			continue
		}
		if runes[i] == '.' && isAbbreviationBoundary(runes, i, lex) {
			i++
			continue
		}
		j := i + 1
		for j < n && unicode.IsSpace(runes[j]) {
			j++
		}
		atEnd := j >= n
		nextUpper := j < n && unicode.IsUpper(runes[j])
		if atEnd || nextUpper {
			emit(start, i+1)
			start = j
			i = j
			continue
		}
		i++
	}
	if start < n {
		emit(start, n)
	}
	return sentences
}

// isAbbreviationBoundary reports whether the '.' at index dotIdx is part of
// a known abbreviation or a single-capital-letter initial, and so must not
// be treated as a sentence boundary.
func isAbbreviationBoundary(runes []rune, dotIdx int, lex *lexicon.Lexicon) bool {
	k := dotIdx - 1
	for k >= 0 && unicode.IsLetter(runes[k]) {
		k--
	}
	word := string(runes[k+1 : dotIdx])
	if word == "" {
		return false
	}
	if lex.IsAbbreviation(word + ".") {
		return true
	}
	if len([]rune(word)) == 1 && unicode.IsUpper([]rune(word)[0]) {
		return true
	}
	return false
}
