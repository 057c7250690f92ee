package rfd

import (
	"fmt"
	"strings"
	"time"
)

// MaxHTMLLength is the truncation limit applied to Document.HTML for
// downstream workspace field-length limits.
const MaxHTMLLength = 100_000

// State is one stage in a Document's lifecycle. The empty string is
// permitted transiently (a document observed before its state line is
// parsed out).
type State string

const (
	StateIdeation      State = "ideation"
	StatePrediscussion State = "prediscussion"
	StateDiscussion    State = "discussion"
	StatePublished     State = "published"
	StateCommitted     State = "committed"
	StateAbandoned     State = "abandoned"
)

// Document is the canonical record of one design document.
type Document struct {
	Number        int
	Title         string
	State         State
	Link          string
	Discussion    string
	Authors       string
	Content       Content
	HTML          string
	SHA           string
	CommitDate    time.Time
	PDFLinkSource string
	PDFLinkDrive  string
}

// NumberString is the zero-padded 4-digit rendering of Number.
func (d *Document) NumberString() string {
	return NumberString(d.Number)
}

// NumberString zero-pads a raw document number to width 4, the
// convention used throughout branch names, filenames and URLs.
func NumberString(number int) string {
	return fmt.Sprintf("%04d", number)
}

// Name is the derived display name "RFD {number} {title}".
func (d *Document) Name() string {
	return fmt.Sprintf("RFD %d %s", d.Number, d.Title)
}

// ShortLink is the canonical per-document short URL, keyed on Number.
func (d *Document) ShortLink(shortURLHost string) string {
	return fmt.Sprintf("https://%d.%s", d.Number, shortURLHost)
}

// RenderedLink is the canonical per-document rendered-HTML URL, keyed
// on NumberString.
func (d *Document) RenderedLink(renderedHost string) string {
	return fmt.Sprintf("https://%s/rfd/%s", renderedHost, d.NumberString())
}

// TruncatedHTML returns d.HTML truncated to MaxHTMLLength characters,
// the limit the destination workspace store imposes on long text
// fields. Truncation lands on a rune boundary, never mid multi-byte
// UTF-8 sequence.
func (d *Document) TruncatedHTML() string {
	if len(d.HTML) <= MaxHTMLLength {
		return d.HTML
	}
	count := 0
	for i := range d.HTML {
		if count == MaxHTMLLength {
			return d.HTML[:i]
		}
		count++
	}
	return d.HTML
}

// PDFFilename returns the sanitized PDF filename for this document's
// current title: "RFD {number_string} {sanitized-title}.pdf".
func (d *Document) PDFFilename() string {
	return PDFFilename(d.Number, d.Title)
}

// PDFFilename sanitizes title the way the render pipeline does before
// building a PDF filename: strip '/' (replaced with '-'), remove '\''
// and ':', then trim.
func PDFFilename(number int, title string) string {
	sanitized := strings.ReplaceAll(title, "/", "-")
	sanitized = strings.ReplaceAll(sanitized, "'", "")
	sanitized = strings.ReplaceAll(sanitized, ":", "")
	sanitized = strings.TrimSpace(sanitized)
	return fmt.Sprintf("RFD %s %s.pdf", NumberString(number), sanitized)
}

// ImageMirrorDir is the path under the default branch's static-asset
// tree that this document's images are mirrored into.
func ImageMirrorDir(number int) string {
	return fmt.Sprintf("src/public/static/images/%s", NumberString(number))
}
