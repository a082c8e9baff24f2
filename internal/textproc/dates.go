package textproc

import (
	"regexp"
	"strconv"
)

// DateKind classifies a detected date mention.
type DateKind string

const (
	DateISO      DateKind = "iso"       // 2024-01-05
	DateMonthDay DateKind = "month_day" // January 5, 2024 / January 5
	DateYear     DateKind = "year"      // bare 4-digit year, 1500-2100
	DateQuarter  DateKind = "quarter"   // Q1 2024
	DateRelative DateKind = "relative"  // "last quarter", "next year" - unresolved
)

// DateMention is a detected date expression. Relative mentions carry no
// resolved value; they are markers only (§4.A).
type DateMention struct {
	Kind    DateKind
	Surface string
	Year    int // 0 if not resolved (e.g. relative)
}

var (
	isoDatePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthNames     = `January|February|March|April|May|June|July|August|September|October|November|December`
	monthDayPattern = regexp.MustCompile(`\b(?:` + monthNames + `)\s+\d{1,2}(?:st|nd|rd|th)?(?:,\s*(\d{4}))?\b`)
	yearPattern     = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2}|2100)\b`)
	quarterPattern  = regexp.MustCompile(`\bQ([1-4])\s*(\d{4})\b`)
	relativePatterns = []string{
		"last quarter", "next quarter", "this quarter",
		"last year", "next year", "this year",
		"last month", "next month", "this month",
		"last week", "next week", "this week",
	}
	relativeRegexes []*regexp.Regexp
)

func init() {
	for _, p := range relativePatterns {
		relativeRegexes = append(relativeRegexes, regexp.MustCompile(`(?i)\b`+p+`\b`))
	}
}

// DetectDates scans text for date expressions, in priority order ISO >
// quarter > month-day > bare year > relative, so a span matched by a more
// specific pattern is not re-reported by a looser one.
func DetectDates(text string) []DateMention {
	var out []DateMention
	claimed := make([]bool, len(text)+1)

	mark := func(start, end int) {
		for i := start; i < end && i < len(claimed); i++ {
			claimed[i] = true
		}
	}
	overlapsClaimed := func(start, end int) bool {
		for i := start; i < end && i < len(claimed); i++ {
			if claimed[i] {
				return true
			}
		}
		return false
	}

	for _, loc := range isoDatePattern.FindAllStringIndex(text, -1) {
		out = append(out, DateMention{Kind: DateISO, Surface: text[loc[0]:loc[1]]})
		mark(loc[0], loc[1])
	}
	for _, m := range quarterPattern.FindAllStringSubmatchIndex(text, -1) {
		if overlapsClaimed(m[0], m[1]) {
			continue
		}
		year, _ := strconv.Atoi(text[m[4]:m[5]])
		out = append(out, DateMention{Kind: DateQuarter, Surface: text[m[0]:m[1]], Year: year})
		mark(m[0], m[1])
	}
	for _, m := range monthDayPattern.FindAllStringSubmatchIndex(text, -1) {
		if overlapsClaimed(m[0], m[1]) {
			continue
		}
		year := 0
		if m[2] >= 0 {
			year, _ = strconv.Atoi(text[m[2]:m[3]])
		}
		out = append(out, DateMention{Kind: DateMonthDay, Surface: text[m[0]:m[1]], Year: year})
		mark(m[0], m[1])
	}
	for _, loc := range yearPattern.FindAllStringIndex(text, -1) {
		if overlapsClaimed(loc[0], loc[1]) {
			continue
		}
		year, _ := strconv.Atoi(text[loc[0]:loc[1]])
		out = append(out, DateMention{Kind: DateYear, Surface: text[loc[0]:loc[1]], Year: year})
		mark(loc[0], loc[1])
	}
	for _, re := range relativeRegexes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if overlapsClaimed(loc[0], loc[1]) {
				continue
			}
			out = append(out, DateMention{Kind: DateRelative, Surface: text[loc[0]:loc[1]]})
			mark(loc[0], loc[1])
		}
	}
	return out
}
