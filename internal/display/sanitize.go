package display

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// blockGlyph is passed through; the LCD driver maps it to a solid cell.
const blockGlyph = '█'

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize reduces text to what the HD44780 ROM can show: escape sequences
// are stripped, diacritics folded, and anything else outside printable ASCII
// dropped.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = ansi.Strip(text)
	folded, _, err := transform.String(foldMarks, text)
	if err != nil {
		folded = text
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == blockGlyph:
			b.WriteRune(r)
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		}
	}
	return b.String()
}
