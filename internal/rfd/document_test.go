package rfd_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

func TestNumberString(t *testing.T) {
	assert.Equal(t, "0000", rfd.NumberString(0))
	assert.Equal(t, "0042", rfd.NumberString(42))
	assert.Equal(t, "1234", rfd.NumberString(1234))
}

func TestPDFFilenameSanitization(t *testing.T) {
	name := rfd.PDFFilename(200, "Old/Name: with 'quotes' ")
	assert.Equal(t, "RFD 0200 Old-Name with quotes.pdf", name)
}

func TestTruncatedHTML(t *testing.T) {
	d := &rfd.Document{HTML: strings.Repeat("a", rfd.MaxHTMLLength+10)}
	assert.Len(t, d.TruncatedHTML(), rfd.MaxHTMLLength)

	short := &rfd.Document{HTML: "short"}
	assert.Equal(t, "short", short.TruncatedHTML())
}

func TestTruncatedHTMLCutsOnRuneBoundary(t *testing.T) {
	// An em-dash straddles the byte offset a naive byte-index slice
	// would cut at, since it sits right where the ASCII run ends.
	html := strings.Repeat("a", rfd.MaxHTMLLength-1) + "—" + strings.Repeat("b", 10)
	d := &rfd.Document{HTML: html}

	truncated := d.TruncatedHTML()
	assert.True(t, utf8.ValidString(truncated), "truncation must not split a multi-byte rune")
	assert.Equal(t, rfd.MaxHTMLLength, utf8.RuneCountInString(truncated))
	assert.True(t, strings.HasSuffix(truncated, "—"))
}

func TestDocumentDerivedFields(t *testing.T) {
	d := &rfd.Document{Number: 7, Title: "Example"}
	assert.Equal(t, "0007", d.NumberString())
	assert.Equal(t, "RFD 7 Example", d.Name())
}
