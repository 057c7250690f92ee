// Package parser implements the Document Parser (§4.3): pure,
// regex-based extraction of title, state, discussion link and authors
// from raw document bytes. It performs no I/O and is deterministic —
// identical input always produces identical output.
package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// Fields holds the values extracted from a document's raw bytes.
// Missing fields default to the empty string; the parser never fails
// on content, only on encoding.
type Fields struct {
	Title      string
	State      rfd.State
	Discussion string
	Authors    string
}

var (
	asciidocTitleLine      = regexp.MustCompile(`(?m)^=\s+(.+)$`)
	asciidocStateLine      = regexp.MustCompile(`(?m)^:state:[ \t]*(.*)$`)
	asciidocDiscussionLine = regexp.MustCompile(`(?m)^:discussion:[ \t]*(.*)$`)

	markdownTitleLine      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	markdownStateLine      = regexp.MustCompile(`(?m)^state:[ \t]*(.*)$`)
	markdownDiscussionLine = regexp.MustCompile(`(?m)^discussion:[ \t]*(.*)$`)
	markdownAuthorsLine    = regexp.MustCompile(`(?m)^authors:[ \t]*(.*)$`)

	// rfdTitlePrefix strips a leading "RFD <number>" token from a
	// parsed title line, for both content kinds.
	rfdTitlePrefix = regexp.MustCompile(`(?i)^RFD\s+\d+\s*`)
)

// Parse extracts Fields from raw document bytes by regular-expression
// search over the raw text — never the rendered HTML form. It fails
// only when raw is not valid UTF-8.
func Parse(content rfd.Content) (Fields, error) {
	if !utf8.ValidString(content.Raw) {
		return Fields{}, rfd.ErrBadEncoding
	}

	if content.Kind == rfd.KindAsciiDoc {
		return parseAsciidoc(content.Raw), nil
	}
	return parseMarkdown(content.Raw), nil
}

func parseAsciidoc(raw string) Fields {
	var f Fields

	titleMatch := asciidocTitleLine.FindStringSubmatch(raw)
	if titleMatch != nil {
		f.Title = stripTitlePrefix(titleMatch[1])
		f.Authors = authorsLineAfter(raw, titleMatch[0])
	}

	if m := asciidocStateLine.FindStringSubmatch(raw); m != nil {
		f.State = rfd.State(strings.TrimSpace(m[1]))
	}
	if m := asciidocDiscussionLine.FindStringSubmatch(raw); m != nil {
		f.Discussion = strings.TrimSpace(m[1])
	}

	return f
}

func parseMarkdown(raw string) Fields {
	var f Fields

	if m := markdownTitleLine.FindStringSubmatch(raw); m != nil {
		f.Title = stripTitlePrefix(m[1])
	}
	if m := markdownStateLine.FindStringSubmatch(raw); m != nil {
		f.State = rfd.State(strings.TrimSpace(m[1]))
	}
	if m := markdownDiscussionLine.FindStringSubmatch(raw); m != nil {
		f.Discussion = strings.TrimSpace(m[1])
	}
	if m := markdownAuthorsLine.FindStringSubmatch(raw); m != nil {
		f.Authors = strings.TrimSpace(m[1])
	}

	return f
}

func stripTitlePrefix(title string) string {
	title = rfdTitlePrefix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// authorsLineAfter returns the line immediately following the matched
// title line (AsciiDoc's convention for the author line), or "" if the
// title is the last line.
func authorsLineAfter(raw, titleLine string) string {
	idx := strings.Index(raw, titleLine)
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len(titleLine):]
	rest = strings.TrimPrefix(rest, "\n")
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}
