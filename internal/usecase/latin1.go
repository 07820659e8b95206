package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Typographic characters outside Latin-1 with a conventional ASCII spelling
var latin1Replacements = map[rune]string{
	'€': "EUR",
	'‘': "'", '’': "'", '‚': ",",
	'“': `"`, '”': `"`, '„': `"`,
	'–': "-", '—': "-",
	'…': "...",
	'•': "*",
	'™': "(TM)",
	'Œ': "OE", 'œ': "oe",
}

// ToLatin1 rewrites s so that every rune is representable in ISO-8859-1.
// Runes with a conventional spelling are replaced silently, accented letters are
// folded to their base letter (counted in folded), and anything else becomes '?'
// (counted in replaced).
func ToLatin1(s string) (out string, folded, replaced int) {
	if isLatin1(s) {
		return s, 0, 0
	}

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
			continue
		}
		if repl, ok := latin1Replacements[r]; ok {
			b.WriteString(repl)
			continue
		}

		stripMarks.Reset()
		base, _, err := transform.String(stripMarks, string(r))
		if err == nil && base != "" && isLatin1(base) {
			b.WriteString(base)
			folded++
			continue
		}

		b.WriteByte('?')
		replaced++
	}

	return b.String(), folded, replaced
}

func isLatin1(s string) bool {
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}
