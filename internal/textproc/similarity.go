package textproc

import "strings"

// TokenSimilarity computes the longest-common-subsequence ratio over
// whitespace tokens of a and b, normalized by the longer token count. Used
// by local fuzzy dedup (§4.D, threshold 0.85) and aggregator fuzzy grouping
// (§4.H).
func TokenSimilarity(a, b string) float64 {
	ta := strings.Fields(strings.ToLower(a))
	tb := strings.Fields(strings.ToLower(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	lcs := lcsLength(ta, tb)
	longer := len(ta)
	if len(tb) > longer {
		longer = len(tb)
	}
	return float64(lcs) / float64(longer)
}

func lcsLength(a, b []string) int {
	n, m := len(a), len(b)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

// LongestCommonNgram returns the longest contiguous run of whitespace
// tokens (n >= minN) that appears in both a and b, case-insensitive, and
// its token length. Used for keyphrase alignment (§4.G).
func LongestCommonNgram(a, b string, minN int) (phrase string, length int) {
	ta := strings.Fields(strings.ToLower(a))
	tb := strings.Fields(strings.ToLower(b))
	if len(ta) < minN || len(tb) < minN {
		return "", 0
	}
	bSet := make(map[string][]int) // first token -> start indices in tb
	for i := range tb {
		bSet[tb[i]] = append(bSet[tb[i]], i)
	}

	best := 0
	var bestPhrase []string
	for i := range ta {
		for _, j := range bSet[ta[i]] {
			n := 0
			for i+n < len(ta) && j+n < len(tb) && ta[i+n] == tb[j+n] {
				n++
			}
			if n > best {
				best = n
				bestPhrase = ta[i : i+n]
			}
		}
	}
	if best < minN {
		return "", 0
	}
	return strings.Join(bestPhrase, " "), best
}
