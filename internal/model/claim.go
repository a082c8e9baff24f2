package model

import (
	"fmt"
	"time"
)

// ConfidenceLanguage classifies how hedged or assertive a claim's phrasing is.
type ConfidenceLanguage string

const (
	ConfidenceHedged     ConfidenceLanguage = "hedged"
	ConfidenceDefinitive ConfidenceLanguage = "definitive"
	ConfidenceUnknown    ConfidenceLanguage = "unknown"
)

// Category is one of the ten fixed claim topic buckets.
type Category string

const (
	CategoryFinance       Category = "finance"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategoryTech          Category = "tech"
	CategoryPolitics      Category = "politics"
	CategoryMilitary      Category = "military"
	CategoryEducation     Category = "education"
	CategoryEnergyClimate Category = "energy_climate"
	CategoryLabor         Category = "labor"
	CategoryGeneral       Category = "general"
)

// CategoryPriority is the fixed tie-break order used when two or more
// categories score equal in the classifier's keyword-bag lookup (§4.C).
// Earlier entries win. This slice is consulted explicitly; category scoring
// must never rely on Go map iteration order to break ties.
var CategoryPriority = []Category{
	CategoryFinance,
	CategoryHealth,
	CategoryScience,
	CategoryTech,
	CategoryPolitics,
	CategoryMilitary,
	CategoryEducation,
	CategoryEnergyClimate,
	CategoryLabor,
	CategoryGeneral,
}

// Status is a claim's verification verdict. CONTRADICTED is never set by any
// automated code path in this module; it exists for human review only.
type Status string

const (
	StatusUnknown      Status = "UNKNOWN"
	StatusPartial      Status = "PARTIAL"
	StatusSupported    Status = "SUPPORTED"
	StatusContradicted Status = "CONTRADICTED"
)

// statusRank orders statuses for "highest-ranked verdict across candidates"
// (§4.G) and for the monotonicity invariant (§3): higher rank never
// regresses except to UNKNOWN when evidence is removed.
var statusRank = map[Status]int{
	StatusUnknown:      0,
	StatusPartial:      1,
	StatusSupported:    2,
	StatusContradicted: -1, // never produced automatically; ranked out of band
}

// StatusRank returns the monotonic rank of a status, used to pick the
// highest-ranked verdict across a claim's candidates.
func StatusRank(s Status) int {
	return statusRank[s]
}

// Claim is a self-contained, checkable factual assertion extracted from a
// source. Text, span and hashes are immutable once created; only Status and
// the attached evidence set (held by the store) are mutable.
type Claim struct {
	ID                 string             `json:"id"`
	SourceID           string             `json:"source_id"`
	Text               string             `json:"text"`
	StartS             float64            `json:"start_s"`
	EndS               float64            `json:"end_s"`
	ContentHash        string             `json:"content_hash"`
	GlobalHash         string             `json:"global_hash"`
	ConfidenceLanguage ConfidenceLanguage `json:"confidence_language"`
	Category           Category           `json:"category"`
	SignalLog          []string           `json:"signal_log"`
	Status             Status             `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Validate checks the per-claim invariants from §3/§8: length gate, non-empty
// signal log, and a populated hash pair.
func (c Claim) Validate() error {
	words := wordCount(c.Text)
	if words < 7 {
		return fmt.Errorf("claim %q has %d words, need >= 7", c.ID, words)
	}
	if len(c.Text) < 40 {
		return fmt.Errorf("claim %q is %d chars, need >= 40", c.ID, len(c.Text))
	}
	if len(c.Text) > 240 {
		return fmt.Errorf("claim %q is %d chars, need <= 240", c.ID, len(c.Text))
	}
	if len(c.SignalLog) == 0 {
		return fmt.Errorf("claim %q has empty signal_log", c.ID)
	}
	if c.ContentHash == "" || c.GlobalHash == "" {
		return fmt.Errorf("claim %q missing hash", c.ID)
	}
	return nil
}

func wordCount(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if !isSpace && !inWord {
			n++
			inWord = true
		} else if isSpace {
			inWord = false
		}
	}
	return n
}
