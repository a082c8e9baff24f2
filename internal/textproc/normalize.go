package textproc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/obelus-labs/veritas/internal/lexicon"
)

// Normalize is the single pure function all hashing and fuzzy comparison
// must consume (Design Notes §9): lowercase, collapse whitespace, strip
// trailing punctuation, strip a leading article, and drop everything that
// isn't alphanumeric or a space.
func Normalize(text string, lex *lexicon.Lexicon) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	if len(fields) > 0 && lex.IsLeadingArticle(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// ContentHash returns the stable SHA-256 hex digest of normalized text. It
// is independent of surrounding whitespace, trailing punctuation, case, and
// a leading article (§8 invariant 5).
func ContentHash(text string, lex *lexicon.Lexicon) string {
	sum := sha256.Sum256([]byte(Normalize(text, lex)))
	return hex.EncodeToString(sum[:])
}

// GlobalHash is the cross-source equivalent of ContentHash; both are
// functions of the same normalization, so two claims with identical
// normalized text always share both hashes.
func GlobalHash(text string, lex *lexicon.Lexicon) string {
	return ContentHash(text, lex)
}
