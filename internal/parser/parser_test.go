package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidecomputer/rfd-pipeline/internal/parser"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

func TestParseAsciidoc(t *testing.T) {
	raw := "= RFD 123 Example\njdoe\n\n:state: discussion\n:discussion:\n\nBody text.\n"
	fields, err := parser.Parse(rfd.NewContent(rfd.KindAsciiDoc, raw))
	require.NoError(t, err)

	assert.Equal(t, "Example", fields.Title)
	assert.Equal(t, rfd.StateDiscussion, fields.State)
	assert.Equal(t, "", fields.Discussion)
	assert.Equal(t, "jdoe", fields.Authors)
}

func TestParseMarkdown(t *testing.T) {
	raw := "# RFD 300 Something\n\nstate: ideation\ndiscussion: https://github.com/org/repo/pull/1\nauthors: asmith, bsmith\n"
	fields, err := parser.Parse(rfd.NewContent(rfd.KindMarkdown, raw))
	require.NoError(t, err)

	assert.Equal(t, "Something", fields.Title)
	assert.Equal(t, rfd.StateIdeation, fields.State)
	assert.Equal(t, "https://github.com/org/repo/pull/1", fields.Discussion)
	assert.Equal(t, "asmith, bsmith", fields.Authors)
}

func TestParseMissingFieldsDefaultEmpty(t *testing.T) {
	raw := "= RFD 1 No Metadata\n"
	fields, err := parser.Parse(rfd.NewContent(rfd.KindAsciiDoc, raw))
	require.NoError(t, err)

	assert.Equal(t, "No Metadata", fields.Title)
	assert.Equal(t, rfd.State(""), fields.State)
	assert.Equal(t, "", fields.Discussion)
}

func TestParseBadEncoding(t *testing.T) {
	invalid := string([]byte{0xff, 0xfe, 0xfd})
	_, err := parser.Parse(rfd.NewContent(rfd.KindMarkdown, invalid))
	require.ErrorIs(t, err, rfd.ErrBadEncoding)
}

func TestParseDeterministic(t *testing.T) {
	raw := "= RFD 9 Idempotent\nauthor\n:state: published\n"
	f1, err := parser.Parse(rfd.NewContent(rfd.KindAsciiDoc, raw))
	require.NoError(t, err)
	f2, err := parser.Parse(rfd.NewContent(rfd.KindAsciiDoc, raw))
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}
