// Package lexicon holds the static, read-only word lists the deterministic
// pipeline consults: hedge markers, assertion verbs, boilerplate phrases,
// abbreviations, leading conjunctions, organization suffixes, and
// per-category keyword bags. Lexicons are loaded once at startup and never
// mutated afterward (Design Notes §9: "read-only after startup").
package lexicon

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon is the full set of static word lists consumed by the tokenizer,
// extractor and classifier.
type Lexicon struct {
	HedgeMarkers      []string            `yaml:"hedge_markers"`
	AssertionVerbs    []string            `yaml:"assertion_verbs"`
	Boilerplate       []string            `yaml:"boilerplate"`
	Abbreviations     []string            `yaml:"abbreviations"`
	LeadingConjunctions []string          `yaml:"leading_conjunctions"`
	LeadingArticles   []string            `yaml:"leading_articles"`
	OrgSuffixes       []string            `yaml:"org_suffixes"`
	KnownEntities     []string            `yaml:"known_entities"`
	CategoryKeywords  map[string][]string `yaml:"category_keywords"`

	// derived lookup sets, built by Compile()
	hedgeSet       map[string]bool
	verbSet        map[string]bool
	abbrevSet      map[string]bool
	conjunctionSet map[string]bool
	articleSet     map[string]bool
	orgSuffixSet   map[string]bool
	knownEntitySet map[string]bool
	categorySets   map[string]map[string]bool
}

// Load parses a YAML lexicon file. A missing or invalid file is a
// ConfigError per §7; callers should wrap the returned error accordingly.
func Load(data []byte) (*Lexicon, error) {
	var lx Lexicon
	if err := yaml.Unmarshal(data, &lx); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if err := lx.Compile(); err != nil {
		return nil, err
	}
	return &lx, nil
}

// Compile validates the lexicon is non-empty where required and builds
// lowercase lookup sets for O(1) membership tests.
func (l *Lexicon) Compile() error {
	if len(l.AssertionVerbs) == 0 {
		return fmt.Errorf("lexicon: assertion_verbs must not be empty")
	}
	if len(l.CategoryKeywords) == 0 {
		return fmt.Errorf("lexicon: category_keywords must not be empty")
	}

	l.hedgeSet = toSet(l.HedgeMarkers)
	l.verbSet = toSet(l.AssertionVerbs)
	l.abbrevSet = toSet(l.Abbreviations)
	l.conjunctionSet = toSet(l.LeadingConjunctions)
	l.articleSet = toSet(l.LeadingArticles)
	l.orgSuffixSet = toSet(l.OrgSuffixes)
	l.knownEntitySet = toSet(l.KnownEntities)

	l.categorySets = make(map[string]map[string]bool, len(l.CategoryKeywords))
	for cat, words := range l.CategoryKeywords {
		l.categorySets[cat] = toSet(words)
	}
	return nil
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

// IsHedge reports whether word/phrase w (already lowercased) is a hedge
// marker.
func (l *Lexicon) IsHedge(w string) bool { return l.hedgeSet[w] }

// IsAssertionVerb reports whether w is in the assertion-verb lexicon.
func (l *Lexicon) IsAssertionVerb(w string) bool { return l.verbSet[w] }

// IsAbbreviation reports whether w (with trailing period) is a known
// abbreviation, used by the sentence-splitter's period guard.
func (l *Lexicon) IsAbbreviation(w string) bool { return l.abbrevSet[strings.ToLower(w)] }

// IsLeadingConjunction reports whether w is a rejected sentence-leading
// conjunction.
func (l *Lexicon) IsLeadingConjunction(w string) bool { return l.conjunctionSet[w] }

// IsLeadingArticle reports whether w is an article stripped during hash
// normalization.
func (l *Lexicon) IsLeadingArticle(w string) bool { return l.articleSet[w] }

// IsOrgSuffix reports whether w is a known organization suffix (Inc, Corp,
// Ltd, ...).
func (l *Lexicon) IsOrgSuffix(w string) bool { return l.orgSuffixSet[strings.TrimRight(w, ".")] }

// IsKnownEntity reports whether phrase w is on the known-entity allow-list.
func (l *Lexicon) IsKnownEntity(w string) bool { return l.knownEntitySet[strings.ToLower(w)] }

// ContainsBoilerplate reports whether text contains any boilerplate phrase
// as a case-insensitive substring.
func (l *Lexicon) ContainsBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range l.Boilerplate {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// CategoryScore counts how many times a category's keyword bag appears in
// text, as whole words/phrases, case-insensitive. Used by the classifier
// (§4.C): the highest-scoring category wins, ties broken by
// model.CategoryPriority.
func (l *Lexicon) CategoryScore(category string, text string) int {
	keywords := l.CategoryKeywords[category]
	if len(keywords) == 0 {
		return 0
	}
	padded := " " + wordBoundaryFold(text) + " "
	score := 0
	for _, kw := range keywords {
		needle := " " + strings.ToLower(kw) + " "
		score += countOverlapping(padded, needle)
	}
	return score
}

// wordBoundaryFold lowercases text and replaces runs of non-alphanumeric
// characters with single spaces, so substring matching against " keyword "
// approximates whole-word/phrase matching without a regex dependency.
func wordBoundaryFold(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := true
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func countOverlapping(haystack, needle string) int {
	count := 0
	for start := 0; ; {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			break
		}
		count++
		start += idx + 1 // allow overlapping word boundaries, e.g. "a a a"
	}
	return count
}

// Categories returns the configured category names (map keys), used by the
// classifier only for validation; tie-break order always comes from
// model.CategoryPriority, never this list's order.
func (l *Lexicon) Categories() []string {
	names := make([]string, 0, len(l.CategoryKeywords))
	for name := range l.CategoryKeywords {
		names = append(names, name)
	}
	return names
}
