package model

// EvidenceType classifies the authority of an evidence candidate's issuer.
type EvidenceType string

const (
	EvidenceFiling    EvidenceType = "filing"
	EvidenceDataset   EvidenceType = "dataset"
	EvidencePaper     EvidenceType = "paper"
	EvidenceGov       EvidenceType = "gov"
	EvidenceSecondary EvidenceType = "secondary"
	EvidenceFactcheck EvidenceType = "factcheck"
)

// PrimaryEvidenceTypes is the category-invariant set of evidence types that
// originate from an authoritative issuer (GLOSSARY: "Primary source"). Only
// candidates of one of these types can satisfy the SUPPORTED guardrail
// (§4.G, §9 open question #3).
var PrimaryEvidenceTypes = map[EvidenceType]bool{
	EvidenceFiling:    true,
	EvidenceDataset:   true,
	EvidenceGov:       true,
	EvidencePaper:     true,
	EvidenceFactcheck: true,
}

// IsPrimary reports whether t is a primary-source evidence type.
func (t EvidenceType) IsPrimary() bool {
	return PrimaryEvidenceTypes[t]
}

// NumberMention is a canonicalized numeric value found in text, paired with
// its original surface form.
type NumberMention struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit,omitempty"`
	Surface string  `json:"surface"`
}

// EvidenceCandidate is a single piece of evidence returned by an adapter's
// fetch operation (§4.F), already normalized (entities/numbers/keyphrases
// extracted with the same detectors the extractor uses).
type EvidenceCandidate struct {
	SourceAPI    string          `json:"source_api"`
	EvidenceType EvidenceType    `json:"evidence_type"`
	Title        string          `json:"title"`
	Snippet      string          `json:"snippet"`
	URL          string          `json:"url"`
	Identifier   string          `json:"identifier,omitempty"`
	PublishedAt  *int64          `json:"published_at,omitempty"` // unix seconds, nil if unknown
	Entities     []string        `json:"entities"`
	Numbers      []NumberMention `json:"numbers"`
	Keyphrases   []string        `json:"keyphrases"`
}

// SignalName identifies one scorer signal contributing to a ScoredEvidence
// breakdown (§4.G).
type SignalName string

const (
	SignalTokenOverlap     SignalName = "token_overlap"
	SignalEntityMatch      SignalName = "entity_match"
	SignalNumberMatch      SignalName = "number_match"
	SignalKeyphraseAlign   SignalName = "keyphrase_alignment"
	SignalEvidenceType     SignalName = "evidence_type"
	SignalTemporalAlign    SignalName = "temporal_alignment"
)

// ScoredEvidence is a candidate after scoring: a 0-100 score, its per-signal
// breakdown (persisted verbatim), and the spans that drove the top signals.
type ScoredEvidence struct {
	ClaimID          string                   `json:"claim_id"`
	Candidate        EvidenceCandidate        `json:"candidate"`
	Score            float64                  `json:"score"`
	Breakdown        map[SignalName]float64   `json:"breakdown"`
	MatchedKeyphrase string                   `json:"matched_keyphrase,omitempty"`
	MatchedNumber    *NumberMention           `json:"matched_number,omitempty"`
}

// DedupKey is the append-only dedup key for evidence rows: (claim, url).
func (s ScoredEvidence) DedupKey() string {
	return s.ClaimID + "\x00" + s.Candidate.URL
}
