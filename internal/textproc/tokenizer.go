// Package textproc implements the pure, deterministic tokenizer and signal
// detectors (§4.A): number, date, entity and assertion-verb detection over
// case- and whitespace-normalized English text. Every detector here is a
// pure function with no shared mutable state, consumed identically by the
// claim extractor (§4.B/C) and by evidence adapters normalizing candidate
// text (§4.F).
package textproc

import "unicode"

// Token is a single word-like run with its original byte offsets, so
// detectors can report spans without re-scanning the source string.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text on Unicode word boundaries: maximal runs of letters,
// digits, and the internal punctuation that numbers/dates use (., ,, /, :,
// %, -) when sandwiched between letters or digits, so "96.5" and
// "2024-01-05" (and likewise "10-K") stay intact for the number/date
// detectors while trailing punctuation is dropped.
func Tokenize(text string) []Token {
	var tokens []Token
	runes := []rune(text)
	n := len(runes)
	i := 0
	byteOffset := func(runeIdx int) int {
		return len(string(runes[:runeIdx]))
	}

	isWordRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	isInternalPunct := func(r rune) bool {
		switch r {
		case '.', ',', '/', ':', '%', '-':
			return true
		}
		return false
	}

	for i < n {
		if !isWordRune(runes[i]) {
			i++
			continue
		}
		start := i
		i++
		for i < n {
			if isWordRune(runes[i]) {
				i++
				continue
			}
			if isInternalPunct(runes[i]) && i+1 < n && isWordRune(runes[i+1]) {
				i++
				continue
			}
			break
		}
		end := i
		// Trim a trailing internal-punct rune that didn't get absorbed above
		// (e.g. "96.5." at end of sentence).
		for end > start && isInternalPunct(runes[end-1]) {
			end--
		}
		tokens = append(tokens, Token{
			Text:  string(runes[start:end]),
			Start: byteOffset(start),
			End:   byteOffset(end),
		})
	}
	return tokens
}

// Words returns just the token text values, in order.
func Words(text string) []string {
	toks := Tokenize(text)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}
