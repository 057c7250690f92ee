package extractor_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxidecomputer/rfd-pipeline/internal/extractor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExtractSingleDocumentIntent(t *testing.T) {
	event := extractor.PushEvent{
		Ref:               "refs/heads/0123",
		RepoOwner:         "org",
		RepoName:          "rfd",
		DefaultBranchName: "main",
		Commits: []extractor.PushCommit{
			{ID: "c1", Timestamp: time.Now(), HasTime: true, Added: []string{"rfd/0123/README.adoc"}},
		},
	}

	intents, images := extractor.Extract(event, testLogger())
	require.Len(t, intents, 1)
	assert.Empty(t, images)
	assert.Equal(t, 123, intents[0].Number)
	assert.Equal(t, "0123", intents[0].Branch.BranchName)
}

func TestExtractZeroPaddedNumber(t *testing.T) {
	event := extractor.PushEvent{
		Ref:               "refs/heads/main",
		DefaultBranchName: "main",
		Commits: []extractor.PushCommit{
			{ID: "c1", Timestamp: time.Now(), HasTime: true, Added: []string{"rfd/0000/README.adoc"}},
		},
	}

	intents, _ := extractor.Extract(event, testLogger())
	require.Len(t, intents, 1)
	assert.Equal(t, 0, intents[0].Number)
	assert.Equal(t, "main", intents[0].Branch.BranchName)
}

func TestExtractMismatchedBranchDropped(t *testing.T) {
	event := extractor.PushEvent{
		Ref:               "refs/heads/0500",
		DefaultBranchName: "main",
		Commits: []extractor.PushCommit{
			{ID: "c1", Timestamp: time.Now(), HasTime: true, Modified: []string{"rfd/0123/README.adoc"}},
		},
	}

	intents, images := extractor.Extract(event, testLogger())
	assert.Empty(t, intents)
	assert.Empty(t, images)
}

func TestExtractImageOnlyProducesNoIntents(t *testing.T) {
	event := extractor.PushEvent{
		Ref:               "refs/heads/main",
		DefaultBranchName: "main",
		Commits: []extractor.PushCommit{
			{ID: "c1", Timestamp: time.Now(), HasTime: true, Added: []string{"rfd/0042/diagram.png"}},
		},
	}

	intents, images := extractor.Extract(event, testLogger())
	assert.Empty(t, intents)
	require.Len(t, images, 1)
	assert.Equal(t, 42, images[0].Number)
	assert.False(t, images[0].Removed)
}

func TestExtractDropsCommitWithMissingTimestamp(t *testing.T) {
	event := extractor.PushEvent{
		Ref:               "refs/heads/main",
		DefaultBranchName: "main",
		Commits: []extractor.PushCommit{
			{ID: "c1", HasTime: false, Added: []string{"rfd/0001/README.md"}},
		},
	}

	intents, images := extractor.Extract(event, testLogger())
	assert.Empty(t, intents)
	assert.Empty(t, images)
}

func TestExtractIgnoresNonDocumentPaths(t *testing.T) {
	event := extractor.PushEvent{
		Ref:               "refs/heads/main",
		DefaultBranchName: "main",
		Commits: []extractor.PushCommit{
			{ID: "c1", Timestamp: time.Now(), HasTime: true, Added: []string{"rfd/0001/notes.txt", "other/0001/README.md"}},
		},
	}

	intents, images := extractor.Extract(event, testLogger())
	assert.Empty(t, intents)
	assert.Empty(t, images)
}
