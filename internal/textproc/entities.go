package textproc

import (
	"strings"
	"unicode"

	"github.com/obelus-labs/veritas/internal/lexicon"
)

// EntityKind distinguishes organization entities (backed by a suffix or the
// known-entity allow-list) from generic proper-noun runs.
type EntityKind string

const (
	EntityOrg     EntityKind = "ORG"
	EntityProper  EntityKind = "PROPER"
)

// EntityMention is a detected proper-noun or organization mention.
type EntityMention struct {
	Text string
	Kind EntityKind
}

// DetectEntities finds proper-noun runs not at the start of text (callers
// pass one already-split sentence, or a single title+snippet unit, so
// "sentence start" reduces to "not the first token"), extended to include a
// trailing organization suffix when present, plus any known-entity
// allow-list phrase regardless of position or case (§4.A). A run that
// starts at the first token is still kept when it has more than one word
// or ends in an organization suffix; only a lone capitalized first word is
// dropped.
func DetectEntities(text string, lex *lexicon.Lexicon) []EntityMention {
	seen := make(map[string]bool)
	var out []EntityMention

	add := func(text string, kind EntityKind) {
		key := strings.ToLower(text)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, EntityMention{Text: text, Kind: kind})
	}

	for _, known := range lex.KnownEntities {
		if containsCaseInsensitive(text, known) {
			add(known, EntityOrg)
		}
	}

	tokens := Tokenize(text)
	i := 0
	for i < len(tokens) {
		if !isCapitalizedWord(tokens[i].Text) {
			i++
			continue
		}
		runStart := i
		j := i + 1
		for j < len(tokens) && isCapitalizedWord(tokens[j].Text) {
			j++
		}
		// run is tokens[runStart:j]
		isSentenceStart := runStart == 0
		kind := EntityProper
		runEnd := j
		if lex.IsOrgSuffix(tokens[runEnd-1].Text) {
			kind = EntityOrg
		} else if j < len(tokens) && lex.IsOrgSuffix(tokens[j].Text) {
			runEnd = j + 1
			kind = EntityOrg
		}
		if !isSentenceStart || kind == EntityOrg || runEnd-runStart > 1 {
			words := make([]string, 0, runEnd-runStart)
			for k := runStart; k < runEnd; k++ {
				words = append(words, tokens[k].Text)
			}
			add(strings.Join(words, " "), kind)
		}
		i = runEnd
		if i <= runStart {
			i = runStart + 1
		}
	}
	return out
}

func isCapitalizedWord(w string) bool {
	if w == "" {
		return false
	}
	r := []rune(w)
	if !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r {
		if !unicode.IsLetter(c) {
			return false
		}
	}
	return true
}

func containsCaseInsensitive(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
