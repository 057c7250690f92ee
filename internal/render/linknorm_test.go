package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLinksAnchors(t *testing.T) {
	html := `<a href="#section-1">link</a>`
	got := CleanLinks(html, "0123", "oxide.computer")
	assert.Equal(t, `<a href="/rfd/0123#section-1">link</a>`, got)
}

func TestCleanLinksImages(t *testing.T) {
	html := `<img src="diagram.png">`
	got := CleanLinks(html, "0042", "oxide.computer")
	assert.Equal(t, `<img src="/static/images/0042/diagram.png">`, got)
}

func TestCleanLinksShortFormCrossLink(t *testing.T) {
	html := `See https://7.rfd.oxide.computer for details`
	got := CleanLinks(html, "0001", "oxide.computer")
	assert.Contains(t, got, "https://rfd.shared.oxide.computer/rfd/0007")
}

func TestCleanLinksCrossReference(t *testing.T) {
	html := `See link:other-doc[] for details`
	got := CleanLinks(html, "0123", "oxide.computer")
	assert.Contains(t, got, "link:https://0123.rfd.oxide.computer/other-doc[]")
}

func TestCleanLinksDoesNotDoublePrefixHTTP(t *testing.T) {
	html := `link:https://example.com/page`
	got := CleanLinks(html, "0123", "oxide.computer")
	assert.Equal(t, "link:https://example.com/page", got)
}
