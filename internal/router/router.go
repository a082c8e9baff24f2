// Package router implements the Smart Router (§4.E): given a classified
// claim, produce a deterministic, capped, descending-score-ordered list of
// evidence-source ids to query.
package router

import (
	"sort"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// SourceID identifies a registered evidence adapter (matches adapter.Registry keys).
type SourceID string

const (
	SourceSECEdgar  SourceID = "sec_edgar"
	SourceFRED      SourceID = "fred"
	SourceYFinance  SourceID = "yfinance"
	SourceOpenFDA   SourceID = "openfda"
	SourcePubMed    SourceID = "pubmed"
	SourceWorldBank SourceID = "worldbank"
	SourcePatents   SourceID = "patents"
	SourceBLS       SourceID = "bls"
	SourceFactCheck SourceID = "factcheck"
	SourceWikipedia SourceID = "wikipedia"
)

// Cap is the maximum number of sources Route returns for a single claim.
const Cap = 6

// Config is the data-driven routing table: category defaults, per-signal
// boosts, and the fixed tie-break order — loaded from internal/config the
// same way the rest of the module's typed sections are (§4.E [EXPANSION]).
type Config struct {
	CategoryDefaults map[model.Category][]SourceID
	SignalBoosts     map[Signal]map[SourceID]int
	// TieBreakOrder is consulted only when two sources have equal total
	// score; it must list every source DefaultConfig produces.
	TieBreakOrder []SourceID
	Cap           int
}

// DefaultConfig is the built-in routing table.
func DefaultConfig() Config {
	return Config{
		Cap: Cap,
		CategoryDefaults: map[model.Category][]SourceID{
			model.CategoryFinance:       {SourceSECEdgar, SourceYFinance, SourceFRED},
			model.CategoryHealth:        {SourcePubMed, SourceOpenFDA},
			model.CategoryScience:       {SourcePubMed, SourceWorldBank},
			model.CategoryTech:         {SourcePatents, SourceSECEdgar},
			model.CategoryPolitics:      {SourceFactCheck, SourceWorldBank},
			model.CategoryMilitary:      {SourceFactCheck, SourceWorldBank},
			model.CategoryEducation:     {SourceWorldBank, SourcePubMed},
			model.CategoryEnergyClimate: {SourceWorldBank, SourceFRED},
			model.CategoryLabor:         {SourceBLS, SourceWorldBank},
			model.CategoryGeneral:       {SourceWikipedia, SourceFactCheck},
		},
		SignalBoosts: map[Signal]map[SourceID]int{
			SignalCompanyMention:     {SourceYFinance: 3, SourceSECEdgar: 3},
			SignalAcademicLanguage:   {SourcePubMed: 3},
			SignalHealthClinical:     {SourcePubMed: 3, SourceOpenFDA: 2},
			SignalFinancialMetric:    {SourceFRED: 3, SourceYFinance: 2},
			SignalDrugPharma:         {SourceOpenFDA: 3},
			SignalLaborEmployment:    {SourceBLS: 3},
			SignalBudgetSpending:     {SourceWorldBank: 2, SourceFRED: 2},
			SignalDemographic:        {SourceWorldBank: 2},
			SignalInternational:      {SourceWorldBank: 2},
			SignalPatentInvention:    {SourcePatents: 4},
			SignalDatePresent:        {SourceFactCheck: 1},
			SignalNumberPresent:      {SourceFRED: 1},
			SignalNamedEntityPresent: {SourceSECEdgar: 1},
		},
		TieBreakOrder: []SourceID{
			SourceBLS, SourceFactCheck, SourceFRED, SourceOpenFDA,
			SourcePatents, SourcePubMed, SourceSECEdgar, SourceWikipedia,
			SourceWorldBank, SourceYFinance,
		},
	}
}

// scoredSource is an intermediate sort record.
type scoredSource struct {
	id    SourceID
	score int
	rank  int // index into TieBreakOrder, lower wins ties
}

// Route computes the ordered source list for a single claim (§4.E): start
// from the category's defaults (earlier defaults score higher as a base),
// add boosts for every fired content signal, sort by descending score with
// a fixed tie-break order, cap at Config.Cap, and force-include the
// category's first default if capping would otherwise drop it.
func Route(cfg Config, category model.Category, text string, entities []textproc.EntityMention, numbers []model.NumberMention, dates []textproc.DateMention) []SourceID {
	defaults := cfg.CategoryDefaults[category]
	fired := Fire(text, entities, numbers, dates)

	tieRank := make(map[SourceID]int, len(cfg.TieBreakOrder))
	for i, s := range cfg.TieBreakOrder {
		tieRank[s] = i
	}

	scores := make(map[SourceID]int)
	for i, s := range defaults {
		scores[s] = (len(defaults) - i) * 10
	}
	for _, sig := range AllSignals {
		if !fired[sig] {
			continue
		}
		for s, boost := range cfg.SignalBoosts[sig] {
			scores[s] += boost
		}
	}

	candidates := make([]scoredSource, 0, len(scores))
	for s, score := range scores {
		candidates = append(candidates, scoredSource{id: s, score: score, rank: tieRank[s]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].rank < candidates[j].rank
	})

	maxSources := cfg.Cap
	if maxSources <= 0 {
		maxSources = Cap
	}
	if len(candidates) > maxSources {
		candidates = candidates[:maxSources]
	}

	out := make([]SourceID, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.id)
	}

	if len(defaults) > 0 {
		first := defaults[0]
		if !containsSource(out, first) {
			if len(out) >= maxSources && len(out) > 0 {
				out[len(out)-1] = first
			} else {
				out = append(out, first)
			}
		}
	}
	return out
}

func containsSource(list []SourceID, s SourceID) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
