package rfd

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind tags a Content value as AsciiDoc or Markdown. Rendering and the
// line-rewrite helpers below dispatch on it instead of scattering
// extension checks across call sites.
type Kind int

const (
	KindAsciiDoc Kind = iota
	KindMarkdown
)

func (k Kind) String() string {
	if k == KindAsciiDoc {
		return "asciidoc"
	}
	return "markdown"
}

// KindFromPath determines content kind from a document's file
// extension. Only ".adoc" and ".md" are recognized; any other
// extension is an error since the Update Extractor only ever emits
// intents for README.md/README.adoc paths (§4.2).
func KindFromPath(path string) (Kind, error) {
	switch filepath.Ext(path) {
	case ".adoc":
		return KindAsciiDoc, nil
	case ".md":
		return KindMarkdown, nil
	default:
		return 0, fmt.Errorf("rfd: unrecognized document extension %q", filepath.Ext(path))
	}
}

// ImageExtensions is the fixed set of file extensions the Repo/Branch
// Adapter's list_images and the Update Extractor's image-only-change
// filter both recognize.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
	".bmp":  true,
}

// IsImagePath reports whether path has a recognized image extension.
func IsImagePath(path string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(path))]
}

// SetImageExtensions overrides the recognized image extension set from
// the documents repository's `.rfd.yml`. Extensions are normalized to a
// leading dot and lowercased; an empty list is a no-op, since a
// deployment that recognizes no images at all makes no sense. Intended
// to be called once at startup, before any reconciliation begins.
func SetImageExtensions(extensions []string) {
	if len(extensions) == 0 {
		return
	}
	next := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		next[ext] = true
	}
	if len(next) > 0 {
		ImageExtensions = next
	}
}

// Content is the tagged AsciiDoc/Markdown variant (§3, §9 "Dynamic
// dispatch over content kind"). Raw holds the document body as it was
// last read from the source repo.
type Content struct {
	Kind Kind
	Raw  string
}

// NewContent wraps raw document bytes with its content kind.
func NewContent(kind Kind, raw string) Content {
	return Content{Kind: kind, Raw: raw}
}

var (
	asciidocStateLine      = regexp.MustCompile(`(?m)^:state:.*$`)
	asciidocDiscussionLine = regexp.MustCompile(`(?m)^:discussion:.*$`)
	markdownStateLine      = regexp.MustCompile(`(?m)^state:.*$`)
	markdownDiscussionLine = regexp.MustCompile(`(?m)^discussion:.*$`)
)

// SetState rewrites (or inserts nothing — the line is expected to
// already exist) the state line to the given value. Returns the new
// raw content and whether it differs from the input, so callers can
// implement precondition-based idempotence (§9 "Cyclic writes") without
// re-parsing.
func (c Content) SetState(state State) (raw string, changed bool) {
	line, target := c.stateLine(state)
	return replaceLine(c.Raw, line, target)
}

// SetDiscussionLink rewrites the discussion line to point at link.
func (c Content) SetDiscussionLink(link string) (raw string, changed bool) {
	line, target := c.discussionLine(link)
	return replaceLine(c.Raw, line, target)
}

func (c Content) stateLine(state State) (*regexp.Regexp, string) {
	if c.Kind == KindAsciiDoc {
		return asciidocStateLine, fmt.Sprintf(":state: %s", strings.TrimSpace(string(state)))
	}
	return markdownStateLine, fmt.Sprintf("state: %s", strings.TrimSpace(string(state)))
}

func (c Content) discussionLine(link string) (*regexp.Regexp, string) {
	if c.Kind == KindAsciiDoc {
		return asciidocDiscussionLine, fmt.Sprintf(":discussion: %s", strings.TrimSpace(link))
	}
	return markdownDiscussionLine, fmt.Sprintf("discussion: %s", strings.TrimSpace(link))
}

// replaceLine replaces every match of line in raw with target. If
// target already equals the first matched text, the content is
// unchanged and changed is false — this is the fixpoint property §8 requires of
// UpdateDiscussionUrl/EnsureDefaultBranchPublished.
func replaceLine(raw string, line *regexp.Regexp, target string) (string, bool) {
	match := line.FindString(raw)
	if match == target {
		return raw, false
	}
	if match == "" {
		return raw, false
	}
	return line.ReplaceAllLiteralString(raw, target), true
}
