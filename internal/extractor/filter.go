package extractor

import (
	"strings"
	"unicode"

	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// RejectReason tags why a candidate sentence was dropped, for metrics and
// per-claim error logging (§7).
type RejectReason string

const (
	RejectTooShortWords RejectReason = "too_short_words"
	RejectTooShortChars RejectReason = "too_short_chars"
	RejectTooLongChars  RejectReason = "too_long_chars"
	RejectLeadingConj   RejectReason = "leading_conjunction"
	RejectBoilerplate   RejectReason = "boilerplate"
	RejectQuestionOnly  RejectReason = "question_only"
	RejectNoSignal      RejectReason = "no_signal"
	RejectNoAnchor      RejectReason = "no_anchor"
	RejectDuplicate     RejectReason = "duplicate_local"
	RejectFuzzyDuplicate RejectReason = "fuzzy_duplicate_local"
)

// leadingPronouns are first/third person pronouns recognized as a
// sentence-leading subject anchor (§4.B candidate detection rule 2).
var leadingPronouns = map[string]bool{
	"i": true, "we": true, "he": true, "she": true, "it": true,
	"they": true, "you": true,
}

// lengthGate checks the §4.B/§8 length invariants: reject sentences with
// fewer than 7 whitespace-separated words, fewer than 40 characters, or
// more than 240 characters. Over-length sentences are rejected outright,
// never truncated.
func lengthGate(text string) (ok bool, reason RejectReason) {
	words := len(strings.Fields(text))
	if words < 7 {
		return false, RejectTooShortWords
	}
	if len(text) < 40 {
		return false, RejectTooShortChars
	}
	if len(text) > 240 {
		return false, RejectTooLongChars
	}
	return true, ""
}

// isFragment applies the §4.B fragment filters: a leading conjunction, a
// boilerplate substring match, or a sentence that is only a question.
func isFragment(text string, lex *lexicon.Lexicon) (bool, RejectReason) {
	fields := strings.Fields(text)
	if len(fields) > 0 {
		first := strings.ToLower(strings.TrimFunc(fields[0], isPunct))
		if lex.IsLeadingConjunction(first) {
			return true, RejectLeadingConj
		}
	}
	if lex.ContainsBoilerplate(text) {
		return true, RejectBoilerplate
	}
	if isQuestionOnly(text) {
		return true, RejectQuestionOnly
	}
	return false, ""
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r)
}

// isQuestionOnly reports whether the sentence consists only of a question:
// a single trailing '?' with no other sentence-terminal punctuation inside.
func isQuestionOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed[len(trimmed)-1] != '?' {
		return false
	}
	body := trimmed[:len(trimmed)-1]
	return !strings.ContainsAny(body, ".!?;")
}

// detectCandidate evaluates the §4.B candidate-detection rule: at least one
// of {number, date, entity, assertion verb} must fire, AND a subject-like
// anchor must be present (a proper noun in the first 40% of the sentence, a
// leading first/third-person pronoun, or a leading number).
func detectCandidate(text string, lex *lexicon.Lexicon) (isCandidate bool, tags []string) {
	var signalTags []string

	nums := textproc.DetectNumbers(text)
	if len(nums) > 0 {
		signalTags = append(signalTags, "num")
	}
	dates := textproc.DetectDates(text)
	for _, d := range dates {
		signalTags = append(signalTags, "date:"+string(d.Kind))
	}
	entities := textproc.DetectEntities(text, lex)
	for _, e := range entities {
		signalTags = append(signalTags, "entity:"+string(e.Kind)+"="+e.Text)
	}
	verbs := textproc.DetectAssertionVerbs(text, lex)
	for _, v := range verbs {
		signalTags = append(signalTags, "verb:assert="+v)
	}

	hasSignal := len(nums) > 0 || len(dates) > 0 || len(entities) > 0 || len(verbs) > 0
	if !hasSignal {
		return false, nil
	}

	anchor := hasAnchor(text, entities, nums)
	if !anchor {
		return false, nil
	}
	return true, signalTags
}

// hasAnchor implements the subject-like anchor test: a proper noun in the
// first 40% of the sentence (by rune offset), OR a leading first/third
// person pronoun, OR a leading number.
func hasAnchor(text string, entities []textproc.EntityMention, numbers []model.NumberMention) bool {
	fields := strings.Fields(text)
	if len(fields) > 0 {
		first := strings.ToLower(strings.TrimFunc(fields[0], isPunct))
		if leadingPronouns[first] {
			return true
		}
	}
	if len(numbers) > 0 && leadsWithNumber(text) {
		return true
	}

	cutoff := int(float64(len([]rune(text))) * 0.4)
	for _, e := range entities {
		idx := strings.Index(text, e.Text)
		if idx >= 0 && len([]rune(text[:idx])) <= cutoff {
			return true
		}
	}
	// DetectEntities deliberately excludes a single capitalized word at the
	// very start of text (to keep the entity *signal* from firing on every
	// sentence's capitalized subject); the anchor test has no such
	// restriction, since a sentence-leading proper noun is exactly the kind
	// of subject an anchor is meant to recognize.
	return leadingProperNoun(fields, cutoff, text)
}

// leadingProperNoun reports whether the sentence opens with a capitalized,
// alphabetic word (other than a leading pronoun, already handled above)
// within the anchor cutoff.
func leadingProperNoun(fields []string, cutoff int, text string) bool {
	if len(fields) == 0 {
		return false
	}
	first := strings.TrimFunc(fields[0], isPunct)
	if first == "" || !unicode.IsUpper([]rune(first)[0]) {
		return false
	}
	idx := strings.Index(text, first)
	return idx >= 0 && len([]rune(text[:idx])) <= cutoff
}

func leadsWithNumber(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	first := fields[0]
	if first == "" {
		return false
	}
	r := []rune(first)[0]
	return unicode.IsDigit(r) || r == '$' || r == '€' || r == '£'
}
