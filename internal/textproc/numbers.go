package textproc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/obelus-labs/veritas/internal/model"
)

// numberPattern matches an optional currency prefix, a comma-grouped or
// plain integer/decimal, an optional scale suffix (k/m/b/trillion/...), and
// an optional trailing percent sign.
var numberPattern = regexp.MustCompile(
	`(?i)([$€£])?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s?(thousand|million|billion|trillion|k|m|b|t)?(%)?`,
)

var scaleMultiplier = map[string]float64{
	"k": 1e3, "thousand": 1e3,
	"m": 1e6, "million": 1e6,
	"b": 1e9, "billion": 1e9,
	"t": 1e12, "trillion": 1e12,
}

var currencyUnit = map[string]string{
	"$": "USD", "€": "EUR", "£": "GBP",
}

// DetectNumbers scans text for numeric mentions: integers, decimals,
// percentages, currency-prefixed and suffix-scaled ("96.5 billion", "$96.5B"),
// and comma-grouped forms ("1,234,567"). Each mention is canonicalized to a
// float64 value alongside its original surface text.
func DetectNumbers(text string) []model.NumberMention {
	matches := numberPattern.FindAllStringSubmatchIndex(text, -1)
	var out []model.NumberMention
	for _, m := range matches {
		whole := text[m[0]:m[1]]
		if strings.TrimSpace(whole) == "" {
			continue
		}
		currency := group(text, m, 2)
		numStr := group(text, m, 4)
		scale := strings.ToLower(group(text, m, 6))
		percent := group(text, m, 8)

		if numStr == "" {
			continue
		}
		clean := strings.ReplaceAll(numStr, ",", "")
		val, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			continue
		}
		unit := ""
		if mult, ok := scaleMultiplier[scale]; ok {
			val *= mult
		}
		if currency != "" {
			unit = currencyUnit[currency]
		}
		if percent != "" {
			if unit != "" {
				unit += ";percent"
			} else {
				unit = "percent"
			}
		}
		out = append(out, model.NumberMention{
			Value:   val,
			Unit:    unit,
			Surface: strings.TrimSpace(whole),
		})
	}
	return out
}

// group returns the substring captured by submatch index pairIdx (in units
// of FindAllStringSubmatchIndex's flat index pairs), or "" if unmatched.
func group(text string, m []int, pairIdx int) string {
	if pairIdx+1 >= len(m) {
		return ""
	}
	start, end := m[pairIdx], m[pairIdx+1]
	if start < 0 || end < 0 {
		return ""
	}
	return text[start:end]
}
