// Package intent maps loosely phrased requests ("I want to shop") onto
// favorite categories.
package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctuationFold = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-", " ", " ",
)

// Normalize cleans a transcribed or typed utterance: compatibility forms are
// folded, diacritics dropped, typographic quotes replaced and whitespace
// collapsed. Case is preserved.
func Normalize(utterance string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, utterance)
	if err != nil {
		folded = utterance
	}
	folded = punctuationFold.Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}
