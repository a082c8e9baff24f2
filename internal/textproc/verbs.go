package textproc

import (
	"strings"

	"github.com/obelus-labs/veritas/internal/lexicon"
)

// DetectAssertionVerbs returns the assertion-verb lexicon entries present in
// text, in order of first occurrence, deduplicated.
func DetectAssertionVerbs(text string, lex *lexicon.Lexicon) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range Tokenize(text) {
		w := strings.ToLower(tok.Text)
		if lex.IsAssertionVerb(w) && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// DetectHedges returns the hedge markers (single- or multi-word) present in
// text, in lexicon order, deduplicated. Multi-word markers ("some say") are
// matched as substrings of the whitespace-normalized, lowercased text.
func DetectHedges(text string, lex *lexicon.Lexicon) []string {
	folded := " " + strings.Join(strings.Fields(strings.ToLower(text)), " ") + " "
	var out []string
	for _, marker := range lex.HedgeMarkers {
		needle := " " + strings.ToLower(marker) + " "
		if strings.Contains(folded, needle) {
			out = append(out, marker)
		}
	}
	return out
}
