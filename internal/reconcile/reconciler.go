// Package reconcile implements the State Reconciler (§4.5): given a
// validated Update Intent, it fetches the current file bytes, parses
// them, loads the previous record, builds and upserts the new one, and
// runs the hook chain. It always reports success once the upsert
// succeeds — hook failures are the hook chain's problem, not the
// reconciler's (§4.5 "The reconciler returns success even when
// individual hooks fail").
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/hooks"
	"github.com/oxidecomputer/rfd-pipeline/internal/parser"
	"github.com/oxidecomputer/rfd-pipeline/internal/render"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// Config names the hosts used to derive a document's short and
// rendered links.
type Config struct {
	ShortURLHost     string
	RenderedLinkHost string
}

// Reconciler implements §4.5.
type Reconciler struct {
	adapter  github.Adapter
	renderer *render.Renderer
	store    storage.Store
	chain    *hooks.Chain
	deps     hooks.Deps
	cfg      Config
	logger   *slog.Logger
}

// New constructs a Reconciler. deps is reused verbatim as the hook
// chain's dependency bundle; its Adapter/Renderer/Store fields should
// match adapter/renderer/store.
func New(adapter github.Adapter, renderer *render.Renderer, store storage.Store, chain *hooks.Chain, deps hooks.Deps, cfg Config, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		adapter:  adapter,
		renderer: renderer,
		store:    store,
		chain:    chain,
		deps:     deps,
		cfg:      cfg,
		logger:   logger,
	}
}

// Reconcile runs the full reconciliation procedure for one intent.
func (r *Reconciler) Reconcile(ctx context.Context, intent rfd.UpdateIntent) error {
	if !intent.Valid() {
		r.logger.WarnContext(ctx, "dropping invalid update intent", "rfd_number", intent.Number, "branch", intent.Branch.BranchName)
		return nil
	}

	exists, err := r.adapter.ExistsInRemote(ctx, intent.Branch.Owner, intent.Branch.Repo, intent.Branch.BranchName)
	if err != nil {
		return fmt.Errorf("reconcile: check branch existence: %w", err)
	}
	if !exists {
		r.logger.InfoContext(ctx, "branch no longer exists, discarding intent", "rfd_number", intent.Number, "branch", intent.Branch.BranchName)
		return nil
	}

	raw, sha, htmlURL, err := r.adapter.GetFile(ctx, intent.Branch.Owner, intent.Branch.Repo, intent.Branch.BranchName, intent.File)
	if err != nil {
		if errors.Is(err, rfd.ErrNotFound) {
			r.logger.InfoContext(ctx, "document file no longer exists, discarding intent", "rfd_number", intent.Number)
			return nil
		}
		return fmt.Errorf("reconcile: fetch file: %w", err)
	}

	kind, err := rfd.KindFromPath(intent.File)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	content := rfd.NewContent(kind, string(raw))

	fields, err := parser.Parse(content)
	if err != nil {
		if errors.Is(err, rfd.ErrBadEncoding) {
			r.logger.ErrorContext(ctx, "document is not valid UTF-8, aborting intent", "rfd_number", intent.Number)
			return nil
		}
		return fmt.Errorf("reconcile: parse: %w", err)
	}

	var old *storage.DocumentRecord
	existing, err := r.store.GetDocument(ctx, intent.Number)
	switch {
	case err == nil:
		old = existing
	case errors.Is(err, storage.ErrNotFound):
		old = nil
	default:
		return fmt.Errorf("reconcile: load previous record: %w", err)
	}

	images, err := r.listImages(ctx, intent)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to list images, rendering without them", "rfd_number", intent.Number, "error", err)
	}

	html, err := r.renderer.ToHTML(ctx, content, intent.Number, images)
	if err != nil {
		r.logger.WarnContext(ctx, "render failed, persisting without updated html", "rfd_number", intent.Number, "error", err)
		if old != nil {
			html = old.HTML
		}
	}

	doc := rfd.Document{
		Number:     intent.Number,
		Title:      fields.Title,
		State:      rfd.State(fields.State),
		Discussion: fields.Discussion,
		Authors:    fields.Authors,
		Content:    content,
		HTML:       html,
		SHA:        sha,
		CommitDate: intent.CommitDate,
	}
	if old != nil && old.Link != "" {
		doc.Link = old.Link
	} else {
		doc.Link = htmlURL
	}
	if old != nil {
		doc.PDFLinkSource = old.PDFLinkSource
		doc.PDFLinkDrive = old.PDFLinkDrive
	}

	record := storage.RecordFromDocument(doc, r.cfg.ShortURLHost, r.cfg.RenderedLinkHost)
	if old != nil {
		record.PDFLinkSource = old.PDFLinkSource
		record.PDFLinkDrive = old.PDFLinkDrive
		record.PDFFilename = old.PDFFilename
	}

	if err := r.store.UpsertDocument(ctx, &record); err != nil {
		return fmt.Errorf("reconcile: upsert document: %w", err)
	}

	r.chain.Run(ctx, r.deps, intent, old, &record)
	return nil
}

func (r *Reconciler) listImages(ctx context.Context, intent rfd.UpdateIntent) ([]render.Image, error) {
	dir := rfd.RepoDirectory(intent.Number)
	images, err := r.adapter.ListImages(ctx, intent.Branch.Owner, intent.Branch.Repo, intent.Branch.BranchName, dir)
	if err != nil {
		return nil, err
	}
	out := make([]render.Image, 0, len(images))
	for _, img := range images {
		out = append(out, render.Image{Path: img.Path, Bytes: img.Bytes})
	}
	return out, nil
}
