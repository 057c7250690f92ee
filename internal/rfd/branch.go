package rfd

// documentsDirectory is the top-level path prefix every document lives
// under, overridable at startup from the documents repository's
// `.rfd.yml` (§3, §4.2).
var documentsDirectory = "rfd"

// SetDocumentsDirectory overrides the documents-tree prefix used by
// RepoDirectory. Intended to be called once at startup, before any
// reconciliation begins.
func SetDocumentsDirectory(dir string) {
	if dir != "" {
		documentsDirectory = dir
	}
}

// Branch identifies a source-repository branch an update intent was
// observed on.
type Branch struct {
	Owner             string
	Repo              string
	BranchName        string
	DefaultBranchName string
}

// IsDefault reports whether this branch is the repository's default
// branch.
func (b Branch) IsDefault() bool {
	return b.BranchName == b.DefaultBranchName
}

// ValidFor reports whether this branch is a legal home for an update to
// the given document number (§3 Branch invariant): either it is the
// default branch, or its name is exactly the document's zero-padded
// number.
func (b Branch) ValidFor(number int) bool {
	return b.IsDefault() || b.BranchName == NumberString(number)
}

// RepoDirectory returns the documents-tree path for this document
// number, e.g. "rfd/0123".
func RepoDirectory(number int) string {
	return documentsDirectory + "/" + NumberString(number)
}
