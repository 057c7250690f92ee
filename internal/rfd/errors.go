// Package rfd holds the domain types for the RFD document pipeline:
// documents, branches, update intents, and the tagged AsciiDoc/Markdown
// content variant.
package rfd

import "errors"

// Sentinel error kinds. Callers use errors.Is to classify a failure and
// decide whether to retry, log-and-skip, or surface it loudly.
var (
	// ErrNotFound is returned when the adapter cannot locate a branch,
	// file, or change-request. Usually benign.
	ErrNotFound = errors.New("rfd: not found")

	// ErrStale is returned when a write precondition (sha) did not match
	// the current remote file. Retriable on the next event.
	ErrStale = errors.New("rfd: stale precondition")

	// ErrAdapterTimeout is returned when an adapter call exceeded its
	// bounded timeout.
	ErrAdapterTimeout = errors.New("rfd: adapter timeout")

	// ErrNetwork wraps transient network failures from adapter calls.
	ErrNetwork = errors.New("rfd: network error")

	// ErrRenderFailed is returned when the external render process
	// exited non-zero or timed out.
	ErrRenderFailed = errors.New("rfd: render failed")

	// ErrBadEncoding is returned when document bytes are not valid UTF-8.
	ErrBadEncoding = errors.New("rfd: bad encoding")

	// ErrInvariantViolated marks an update intent that failed branch
	// validation (§3). Intents failing this are silently dropped by
	// the caller, never surfaced to an operator.
	ErrInvariantViolated = errors.New("rfd: invariant violated")

	// ErrUnsupported is returned when an operation is not defined for a
	// content kind, e.g. PDF generation from Markdown.
	ErrUnsupported = errors.New("rfd: unsupported for this content kind")
)
