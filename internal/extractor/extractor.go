// Package extractor implements the Update Extractor (§4.2): it filters
// a push event's commits into a bounded set of validated
// Document-Update Intents, plus a separate set of image-only changes
// handled by a simpler mirroring path.
package extractor

import (
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// PushCommit mirrors the subset of a source-repo push-event commit
// this package needs: the file lists and the commit timestamp.
type PushCommit struct {
	ID        string
	Timestamp time.Time
	HasTime   bool
	Added     []string
	Modified  []string
	Removed   []string
}

// PushEvent mirrors the inbound webhook payload described in §6:
// {ref, repository:{name, owner:{login}, default_branch}, commits[]}.
type PushEvent struct {
	Ref               string
	RepoOwner         string
	RepoName          string
	DefaultBranchName string
	Commits           []PushCommit
}

// BranchName derives the branch name from Ref by stripping the
// "refs/heads/" prefix.
func (e PushEvent) BranchName() string {
	return strings.TrimPrefix(e.Ref, "refs/heads/")
}

func (e PushEvent) branch() rfd.Branch {
	return rfd.Branch{
		Owner:             e.RepoOwner,
		Repo:              e.RepoName,
		BranchName:        e.BranchName(),
		DefaultBranchName: e.DefaultBranchName,
	}
}

// ImageChange is a file-level change to an image under the documents
// tree, produced by the same push but handled by the image-mirroring
// path rather than the update-intent path.
type ImageChange struct {
	Number int
	Path   string
	// Removed is true for files that were deleted in this commit.
	Removed bool
}

const documentsPrefix = "rfd/"

// Extract filters a push event into (a) an ordered list of validated
// Document-Update Intents, one per distinct document touched,
// preserving commit order, and (b) the set of image-only changes for
// the caller's separate mirroring path. Invalid intents (failing the
// §3 branch invariant) are silently dropped, per ErrInvariantViolated.
func Extract(event PushEvent, logger *slog.Logger) (intents []rfd.UpdateIntent, images []ImageChange) {
	branch := event.branch()
	seen := make(map[int]bool)

	for _, commit := range event.Commits {
		if !commit.HasTime {
			logger.Warn("dropping commit with missing timestamp", "commit", commit.ID)
			continue
		}

		for _, p := range commit.Added {
			intents, images = extractPath(p, commit, branch, false, intents, images, seen, logger)
		}
		for _, p := range commit.Modified {
			intents, images = extractPath(p, commit, branch, false, intents, images, seen, logger)
		}
		for _, p := range commit.Removed {
			intents, images = extractPath(p, commit, branch, true, intents, images, seen, logger)
		}
	}

	return intents, images
}

func extractPath(
	p string,
	commit PushCommit,
	branch rfd.Branch,
	removed bool,
	intents []rfd.UpdateIntent,
	images []ImageChange,
	seen map[int]bool,
	logger *slog.Logger,
) ([]rfd.UpdateIntent, []ImageChange) {
	if !strings.HasPrefix(p, documentsPrefix) {
		return intents, images
	}

	if rfd.IsImagePath(p) {
		if number, ok := documentNumber(p); ok {
			images = append(images, ImageChange{Number: number, Path: p, Removed: removed})
		}
		return intents, images
	}

	base := path.Base(p)
	if base != "README.md" && base != "README.adoc" {
		return intents, images
	}

	number, ok := documentNumber(p)
	if !ok {
		logger.Warn("dropping document path with non-numeric directory", "path", p)
		return intents, images
	}

	if seen[number] {
		return intents, images
	}
	seen[number] = true

	intent := rfd.UpdateIntent{
		Number:     number,
		Branch:     branch,
		File:       p,
		CommitDate: commit.Timestamp,
	}
	if !intent.Valid() {
		logger.Warn("dropping update intent failing branch invariant",
			"number", number, "branch", branch.BranchName, "default_branch", branch.DefaultBranchName)
		return intents, images
	}

	return append(intents, intent), images
}

// documentNumber extracts the immediate subdirectory under rfd/ and
// parses it as a non-negative integer after stripping leading zeros.
func documentNumber(p string) (int, bool) {
	rest := strings.TrimPrefix(p, documentsPrefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}
	dir := parts[0]

	for _, r := range dir {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	trimmed := strings.TrimLeft(dir, "0")
	if trimmed == "" {
		// all zeros, e.g. "0000"
		trimmed = "0"
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
