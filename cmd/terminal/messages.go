package main

import (
	"github.com/oxidecomputer/rfd-pipeline/internal/app"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// Indicates that the core application services have been initialized.
type appInitializedMsg struct {
	app *app.App
	err error
}

// Indicates that the tracked-document list has (re)loaded.
type docsLoadedMsg struct {
	docs []*storage.DocumentRecord
	err  error
}

// Indicates that a manual reconcile request has finished.
type reconcileCompleteMsg struct {
	number int
	err    error
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
