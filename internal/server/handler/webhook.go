// Package handler provides HTTP handlers for the RFD pipeline server.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/oxidecomputer/rfd-pipeline/internal/config"
	"github.com/oxidecomputer/rfd-pipeline/internal/extractor"
	ghadapter "github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/jobs"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// staticImagesPrefix is the default-branch static-asset tree image
// mirrors are copied into (§6 "Image mirror path").
const staticImagesPrefix = "src/public/static/images"

// WebhookHandler processes inbound push webhooks from the source
// repository and dispatches document updates for reconciliation.
type WebhookHandler struct {
	cfg        *config.Config
	adapter    ghadapter.Adapter
	dispatcher jobs.Dispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, adapter ghadapter.Adapter, dispatcher jobs.Dispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		adapter:    adapter,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHub.WebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PushEvent:
		h.handlePush(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		w.WriteHeader(http.StatusAccepted)
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

// handlePush filters a push event against the configured documents
// repo (§6 "Webhook path filtering"), extracts update intents and
// image changes, dispatches the former for reconciliation and mirrors
// the latter directly. It always responds 202 once the payload itself
// was valid — downstream failures are logged, not surfaced to GitHub.
func (h *WebhookHandler) handlePush(ctx context.Context, w http.ResponseWriter, event *github.PushEvent) {
	repoName := event.GetRepo().GetName()
	repoOwner := event.GetRepo().GetOwner().GetLogin()
	if repoName != h.cfg.Docs.Repo || repoOwner != h.cfg.Docs.Owner {
		h.logger.Info("ignoring push for non-documents repository", "owner", repoOwner, "repo", repoName)
		w.WriteHeader(http.StatusAccepted)
		_, _ = fmt.Fprint(w, "Repository not handled")
		return
	}

	pushEvent := toPushEvent(event, h.cfg.Docs.DefaultBranch)
	intents, images := extractor.Extract(pushEvent, h.logger)

	if len(intents) > 0 {
		batch := make([]*rfd.UpdateIntent, len(intents))
		for i := range intents {
			batch[i] = &intents[i]
		}
		if err := h.dispatcher.Dispatch(ctx, batch); err != nil {
			h.logger.Error("failed to dispatch update intent batch", "error", err, "count", len(batch))
		}
	}

	if pushEvent.BranchName() == h.cfg.Docs.DefaultBranch {
		h.mirrorImages(ctx, images)
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprintf(w, "Accepted %d update intent(s), %d image change(s)", len(intents), len(images))
}

// mirrorImages copies (or deletes) each default-branch image change
// into the static-asset tree (§6 "Image mirror path").
func (h *WebhookHandler) mirrorImages(ctx context.Context, images []extractor.ImageChange) {
	for _, img := range images {
		dest := fmt.Sprintf("%s/%s/%s", staticImagesPrefix, rfd.NumberString(img.Number), path.Base(img.Path))

		if img.Removed {
			_, sha, _, err := h.adapter.GetFile(ctx, h.cfg.Docs.Owner, h.cfg.Docs.Repo, h.cfg.Docs.DefaultBranch, dest)
			if err != nil {
				if !errors.Is(err, rfd.ErrNotFound) {
					h.logger.Error("failed to look up mirrored image for deletion", "path", dest, "error", err)
				}
				continue
			}
			message := fmt.Sprintf("Remove mirrored image for RFD %s", rfd.NumberString(img.Number))
			if err := h.adapter.DeleteFile(ctx, h.cfg.Docs.Owner, h.cfg.Docs.Repo, h.cfg.Docs.DefaultBranch, dest, message, sha); err != nil {
				h.logger.Error("failed to delete mirrored image", "path", dest, "error", err)
			}
			continue
		}

		content, _, _, err := h.adapter.GetFile(ctx, h.cfg.Docs.Owner, h.cfg.Docs.Repo, h.cfg.Docs.DefaultBranch, img.Path)
		if err != nil {
			h.logger.Error("failed to fetch image for mirroring", "path", img.Path, "error", err)
			continue
		}
		message := fmt.Sprintf("Mirror image for RFD %s", rfd.NumberString(img.Number))
		if err := h.adapter.UpsertFile(ctx, h.cfg.Docs.Owner, h.cfg.Docs.Repo, h.cfg.Docs.DefaultBranch, dest, content, message); err != nil {
			h.logger.Error("failed to upsert mirrored image", "path", dest, "error", err)
		}
	}
}

// toPushEvent converts a go-github push-event payload to the
// extractor's narrow PushEvent shape.
func toPushEvent(event *github.PushEvent, defaultBranch string) extractor.PushEvent {
	commits := make([]extractor.PushCommit, 0, len(event.Commits))
	for _, c := range event.Commits {
		ts, hasTime := commitTimestamp(c)
		commits = append(commits, extractor.PushCommit{
			ID:        c.GetID(),
			Timestamp: ts,
			HasTime:   hasTime,
			Added:     c.Added,
			Modified:  c.Modified,
			Removed:   c.Removed,
		})
	}

	return extractor.PushEvent{
		Ref:               event.GetRef(),
		RepoOwner:         event.GetRepo().GetOwner().GetLogin(),
		RepoName:          event.GetRepo().GetName(),
		DefaultBranchName: defaultBranch,
		Commits:           commits,
	}
}

func commitTimestamp(c *github.PushEventCommit) (t time.Time, ok bool) {
	ts := c.GetTimestamp()
	if ts.IsZero() {
		return time.Time{}, false
	}
	return ts.Time, true
}
