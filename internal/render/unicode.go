package render

import "strings"

// asciiFold is a small, narrow transliteration table for the Unicode
// punctuation AsciiDoc source documents commonly carry (smart quotes,
// dashes, ellipsis) — enough to keep asciidoctor's output
// ASCII-compatible without pulling in a general transliteration
// library for one call site.
var asciiFold = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", "\"", "”", "\"",
	"–", "-", "—", "--",
	"…", "...",
	" ", " ",
)

// normalizeUnicode folds common Unicode punctuation to ASCII
// equivalents before handing the document body to asciidoctor, the way
// the render pipeline normalizes unicode ahead of the external
// converter call (§4.4).
func normalizeUnicode(s string) string {
	return asciiFold.Replace(s)
}
