package rfd

import "time"

// UpdateIntent is an ephemeral record produced by the Update Extractor
// and consumed by the State Reconciler: "this document on this branch
// was changed in this commit". It is never persisted.
type UpdateIntent struct {
	Number     int
	Branch     Branch
	File       string
	CommitDate time.Time
}

// Valid reports whether this intent satisfies the §3 Branch invariant.
func (i UpdateIntent) Valid() bool {
	return i.Branch.ValidFor(i.Number)
}
