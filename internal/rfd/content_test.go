package rfd_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

func TestSetDiscussionLinkAsciidoc(t *testing.T) {
	c := rfd.NewContent(rfd.KindAsciiDoc, "= RFD 1 Example\n\n:state: discussion\n:discussion:\n")
	raw, changed := c.SetDiscussionLink("https://github.com/org/repo/pull/7")
	assert.True(t, changed)
	assert.Contains(t, raw, ":discussion: https://github.com/org/repo/pull/7")
}

func TestSetDiscussionLinkFixpoint(t *testing.T) {
	c := rfd.NewContent(rfd.KindAsciiDoc, "= RFD 1 Example\n\n:discussion: https://github.com/org/repo/pull/7\n")
	_, changed := c.SetDiscussionLink("https://github.com/org/repo/pull/7")
	assert.False(t, changed, "rewriting to the already-set value must be a no-op")
}

func TestSetStateMarkdown(t *testing.T) {
	c := rfd.NewContent(rfd.KindMarkdown, "# RFD 2 Example\n\nstate: discussion\n")
	raw, changed := c.SetState(rfd.StatePublished)
	assert.True(t, changed)
	assert.Contains(t, raw, "state: published")
}

func TestSetStateFixpoint(t *testing.T) {
	c := rfd.NewContent(rfd.KindMarkdown, "# RFD 2 Example\n\nstate: published\n")
	_, changed := c.SetState(rfd.StatePublished)
	assert.False(t, changed)
}

func TestKindFromPath(t *testing.T) {
	kind, err := rfd.KindFromPath("rfd/0123/README.adoc")
	assert.NoError(t, err)
	assert.Equal(t, rfd.KindAsciiDoc, kind)

	kind, err = rfd.KindFromPath("rfd/0123/README.md")
	assert.NoError(t, err)
	assert.Equal(t, rfd.KindMarkdown, kind)

	_, err = rfd.KindFromPath("rfd/0123/image.png")
	assert.Error(t, err)
}

func TestIsImagePath(t *testing.T) {
	assert.True(t, rfd.IsImagePath("rfd/0123/diagram.SVG"))
	assert.False(t, rfd.IsImagePath("rfd/0123/README.md"))
}

func TestSetImageExtensionsOverridesRecognizedSet(t *testing.T) {
	original := make([]string, 0, len(rfd.ImageExtensions))
	for ext := range rfd.ImageExtensions {
		original = append(original, strings.TrimPrefix(ext, "."))
	}
	t.Cleanup(func() { rfd.SetImageExtensions(original) })

	rfd.SetImageExtensions([]string{"tiff"})
	assert.True(t, rfd.IsImagePath("rfd/0123/scan.tiff"))
	assert.False(t, rfd.IsImagePath("rfd/0123/diagram.svg"))
}

func TestSetImageExtensionsIgnoresEmpty(t *testing.T) {
	t.Cleanup(func() { rfd.SetImageExtensions([]string{"svg"}) })

	rfd.SetImageExtensions([]string{"svg"})
	rfd.SetImageExtensions(nil)
	assert.True(t, rfd.IsImagePath("rfd/0123/diagram.svg"))
}
