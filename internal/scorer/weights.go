// Package scorer implements the §4.G scoring signals and SUPPORTED/PARTIAL/
// UNKNOWN guardrails: a pure, deterministic function of a claim and a
// candidate, never the wall clock.
package scorer

import "github.com/obelus-labs/veritas/internal/model"

// Weights is the flat per-signal weight table, directly in the shape of
// other_examples' ScoringConfig/DefaultScoringConfig pattern: every weight
// a named float64 field, no magic numbers inline (§4.G [EXPANSION]).
type Weights struct {
	TokenOverlap        float64
	EntityMatch         float64
	NumberMatch         float64
	NumberUnitBonus     float64
	KeyphraseAlignment  float64
	EvidenceTypeWeight  float64
	TemporalAlignment   float64

	SupportedMinScore float64
	PartialMinScore   float64
	PartialMaxScore   float64

	TemporalFullWindowDays float64
	TemporalDecayYears     float64
	TemporalStalePenalty   float64
}

// DefaultWeights returns the §4.G default table: token overlap 20 + entity
// match 20 + number match 25 + keyphrase alignment 15 + evidence type
// weight 10 + temporal alignment 10 sum to the 100-point scale; the
// number-match unit bonus (10) can push a single candidate's total above
// 100, so the final score is always clamped to [0, 100].
func DefaultWeights() Weights {
	return Weights{
		TokenOverlap:       20,
		EntityMatch:        20,
		NumberMatch:        25,
		NumberUnitBonus:    10,
		KeyphraseAlignment: 15,
		EvidenceTypeWeight: 10,
		TemporalAlignment:  10,

		SupportedMinScore: 85,
		PartialMinScore:   70,
		PartialMaxScore:   85,

		TemporalFullWindowDays: 90,
		TemporalDecayYears:     3,
		TemporalStalePenalty:   5,
	}
}

// EvidenceTypeWeights is the per-category evidence-type weight table
// referenced by §4.G's example ("for finance, filing = 10, dataset = 8,
// paper = 3, secondary = 2"); categories not listed fall back to
// defaultEvidenceTypeWeights.
var EvidenceTypeWeights = map[model.Category]map[model.EvidenceType]float64{
	model.CategoryFinance: {
		model.EvidenceFiling: 10, model.EvidenceDataset: 8,
		model.EvidenceGov: 6, model.EvidencePaper: 3,
		model.EvidenceFactcheck: 4, model.EvidenceSecondary: 2,
	},
	model.CategoryHealth: {
		model.EvidencePaper: 10, model.EvidenceGov: 8,
		model.EvidenceFiling: 4, model.EvidenceDataset: 6,
		model.EvidenceFactcheck: 5, model.EvidenceSecondary: 2,
	},
	model.CategoryScience: {
		model.EvidencePaper: 10, model.EvidenceDataset: 7,
		model.EvidenceGov: 6, model.EvidenceFiling: 2,
		model.EvidenceFactcheck: 4, model.EvidenceSecondary: 2,
	},
}

// defaultEvidenceTypeWeights applies to any category without a dedicated
// row above.
var defaultEvidenceTypeWeights = map[model.EvidenceType]float64{
	model.EvidenceFiling:    8,
	model.EvidenceDataset:   7,
	model.EvidenceGov:       8,
	model.EvidencePaper:     7,
	model.EvidenceFactcheck: 9,
	model.EvidenceSecondary: 2,
}

// EvidenceWeightFor returns the configured weight contribution for a
// category/evidence-type pair, scaled to Weights.EvidenceTypeWeight.
func EvidenceWeightFor(w Weights, category model.Category, t model.EvidenceType) float64 {
	table, ok := EvidenceTypeWeights[category]
	if !ok {
		table = defaultEvidenceTypeWeights
	}
	raw, ok := table[t]
	if !ok {
		raw = defaultEvidenceTypeWeights[t]
	}
	// raw values above are authored on a 0-10 scale matching the spec's
	// worked example; rescale to the configured weight so an operator
	// tuning EvidenceTypeWeight doesn't have to re-author this whole table.
	return raw / 10 * w.EvidenceTypeWeight
}

// TimeSensitiveCategories are categories where stale evidence (beyond the
// decay window) incurs the §4.G temporal stale penalty rather than simply
// decaying to zero contribution.
var TimeSensitiveCategories = map[model.Category]bool{
	model.CategoryFinance:       true,
	model.CategoryPolitics:      true,
	model.CategoryMilitary:      true,
	model.CategoryEnergyClimate: true,
	model.CategoryLabor:         true,
}
