package rfd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

func TestBranchValidForDefault(t *testing.T) {
	b := rfd.Branch{BranchName: "main", DefaultBranchName: "main"}
	assert.True(t, b.ValidFor(123))
}

func TestBranchValidForFeatureBranch(t *testing.T) {
	b := rfd.Branch{BranchName: "0123", DefaultBranchName: "main"}
	assert.True(t, b.ValidFor(123))
	assert.False(t, b.ValidFor(124))
}

func TestBranchMismatch(t *testing.T) {
	b := rfd.Branch{BranchName: "0500", DefaultBranchName: "main"}
	assert.False(t, b.ValidFor(123))
}

func TestRepoDirectory(t *testing.T) {
	assert.Equal(t, "rfd/0017", rfd.RepoDirectory(17))
}

func TestSetDocumentsDirectoryOverridesRepoDirectory(t *testing.T) {
	t.Cleanup(func() { rfd.SetDocumentsDirectory("rfd") })

	rfd.SetDocumentsDirectory("docs")
	assert.Equal(t, "docs/0017", rfd.RepoDirectory(17))
}

func TestSetDocumentsDirectoryIgnoresEmpty(t *testing.T) {
	t.Cleanup(func() { rfd.SetDocumentsDirectory("rfd") })

	rfd.SetDocumentsDirectory("docs")
	rfd.SetDocumentsDirectory("")
	assert.Equal(t, "docs/0017", rfd.RepoDirectory(17))
}
