package extractor

import (
	"github.com/obelus-labs/veritas/internal/lexicon"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/textproc"
)

// classifyConfidence scans for hedge markers first (§4.C): any hedge present
// makes the sentence "hedged" regardless of assertion verbs. Otherwise, an
// assertion verb with a definite subject (a detected entity, a leading
// pronoun, or a leading number — the same anchor test used for candidate
// detection) makes it "definitive". Absent both, "unknown".
func classifyConfidence(text string, lex *lexicon.Lexicon, entities []textproc.EntityMention, numbers []model.NumberMention) (model.ConfidenceLanguage, []string) {
	var log []string

	hedges := textproc.DetectHedges(text, lex)
	if len(hedges) > 0 {
		for _, h := range hedges {
			log = append(log, "hedge:"+h)
		}
		return model.ConfidenceHedged, log
	}

	verbs := textproc.DetectAssertionVerbs(text, lex)
	if len(verbs) > 0 && hasAnchor(text, entities, numbers) {
		for _, v := range verbs {
			log = append(log, "assert:"+v)
		}
		return model.ConfidenceDefinitive, log
	}

	return model.ConfidenceUnknown, log
}

// classifyCategory scores every configured category's keyword bag against
// text and assigns the highest scorer, breaking ties by model.CategoryPriority
// and falling back to CategoryGeneral when every score is zero (§4.C).
func classifyCategory(text string, lex *lexicon.Lexicon) (model.Category, int) {
	best := model.CategoryGeneral
	bestScore := 0
	for _, cat := range model.CategoryPriority {
		score := lex.CategoryScore(string(cat), text)
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}
	return best, bestScore
}
