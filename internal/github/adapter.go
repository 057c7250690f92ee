// Package github provides the Repo/Branch Adapter (§4.1): a thin,
// testable wrapper over the go-github client plus GitHub App
// authentication, following the same wrapper shape the teacher uses
// for its own review-bot client (interface + constructor + context-
// scoped methods over *github.Client).
package github

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	gogithub "github.com/google/go-github/v73/github"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// Image is a single file retrieved by ListImages.
type Image struct {
	Path  string
	Bytes []byte
}

// ChangeRequest is this adapter's name for what GitHub calls a pull
// request — the spec's vocabulary is host-agnostic (§1 GLOSSARY).
type ChangeRequest struct {
	Number  int
	Title   string
	HTMLURL string
	HeadRef string
}

// Adapter implements the Repo/Branch Adapter contract (§4.1).
//
//go:generate mockgen -destination=../../mocks/mock_adapter.go -package=mocks github.com/oxidecomputer/rfd-pipeline/internal/github Adapter
type Adapter interface {
	GetFile(ctx context.Context, owner, repo, branch, filePath string) (content []byte, sha string, htmlURL string, err error)
	ListImages(ctx context.Context, owner, repo, branch, dir string) ([]Image, error)
	FindChangeRequests(ctx context.Context, owner, repo, branch string) ([]ChangeRequest, error)
	ExistsInRemote(ctx context.Context, owner, repo, branch string) (bool, error)
	UpsertFile(ctx context.Context, owner, repo, branch, filePath string, content []byte, message string) error
	DeleteFile(ctx context.Context, owner, repo, branch, filePath, message, sha string) error
	CreatePullRequest(ctx context.Context, owner, repo, branch, defaultBranch, title, body string) (ChangeRequest, error)
	UpdatePullRequestTitle(ctx context.Context, owner, repo string, number int, title string) error
	SetLabels(ctx context.Context, owner, repo string, number int, labels []string) error
}

type adapter struct {
	client *gogithub.Client
	logger *slog.Logger
}

// NewAdapter wraps an authenticated *gogithub.Client for use as the
// Repo/Branch Adapter.
func NewAdapter(client *gogithub.Client, logger *slog.Logger) Adapter {
	return &adapter{client: client, logger: logger}
}

// GetFile fetches a file's bytes, content sha, and HTML URL from a
// branch. Fails with rfd.ErrNotFound if the path is absent on the
// branch.
func (a *adapter) GetFile(ctx context.Context, owner, repo, branch, filePath string) ([]byte, string, string, error) {
	fileContent, _, resp, err := a.client.Repositories.GetContents(ctx, owner, repo, filePath, &gogithub.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil, "", "", fmt.Errorf("%w: %s@%s", rfd.ErrNotFound, filePath, branch)
		}
		return nil, "", "", fmt.Errorf("github: get file %s@%s: %w", filePath, branch, err)
	}
	if fileContent == nil {
		return nil, "", "", fmt.Errorf("%w: %s@%s is a directory", rfd.ErrNotFound, filePath, branch)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, "", "", fmt.Errorf("github: decode file %s@%s: %w", filePath, branch, err)
	}
	return []byte(content), fileContent.GetSHA(), fileContent.GetHTMLURL(), nil
}

// ListImages returns all files under dir on branch whose extension
// matches rfd.ImageExtensions.
func (a *adapter) ListImages(ctx context.Context, owner, repo, branch, dir string) ([]Image, error) {
	_, entries, _, err := a.client.Repositories.GetContents(ctx, owner, repo, dir, &gogithub.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		var respErr *gogithub.ErrorResponse
		if isNotFound(err, &respErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("github: list directory %s@%s: %w", dir, branch, err)
	}

	var images []Image
	for _, entry := range entries {
		if entry.GetType() != "file" || !rfd.IsImagePath(entry.GetPath()) {
			continue
		}
		content, _, _, err := a.GetFile(ctx, owner, repo, branch, entry.GetPath())
		if err != nil {
			return nil, err
		}
		images = append(images, Image{Path: path.Base(entry.GetPath()), Bytes: content})
	}
	return images, nil
}

// FindChangeRequests lists open pull requests whose head is branch.
// The contract does not enforce uniqueness; the caller consumes only
// the first, logging a warning if more than one is found (§9 Open
// Questions).
func (a *adapter) FindChangeRequests(ctx context.Context, owner, repo, branch string) ([]ChangeRequest, error) {
	opts := &gogithub.PullRequestListOptions{
		State: "open",
		Head:  owner + ":" + branch,
	}
	prs, _, err := a.client.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("github: list pull requests for %s: %w", branch, err)
	}

	result := make([]ChangeRequest, 0, len(prs))
	for _, pr := range prs {
		result = append(result, ChangeRequest{
			Number:  pr.GetNumber(),
			Title:   pr.GetTitle(),
			HTMLURL: pr.GetHTMLURL(),
			HeadRef: pr.GetHead().GetRef(),
		})
	}
	return result, nil
}

// ExistsInRemote reports whether branch still exists, used to drop
// updates for branches deleted between event emission and processing.
func (a *adapter) ExistsInRemote(ctx context.Context, owner, repo, branch string) (bool, error) {
	_, resp, err := a.client.Repositories.GetBranch(ctx, owner, repo, branch, 0)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("github: check branch %s: %w", branch, err)
	}
	return true, nil
}

// UpsertFile creates or updates a file with a commit message. Idempotent
// on content: implementations may skip the write when bytes already
// match the current file.
func (a *adapter) UpsertFile(ctx context.Context, owner, repo, branch, filePath string, content []byte, message string) error {
	existing, sha, _, err := a.GetFile(ctx, owner, repo, branch, filePath)
	if err == nil && bytes.Equal(existing, content) {
		a.logger.DebugContext(ctx, "upsert is a no-op, content unchanged", "path", filePath, "branch", branch)
		return nil
	}

	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.Ptr(message),
		Content: content,
		Branch:  gogithub.Ptr(branch),
	}
	if err == nil {
		opts.SHA = gogithub.Ptr(sha)
	}

	if _, _, err := a.client.Repositories.UpdateFile(ctx, owner, repo, filePath, opts); err != nil {
		return fmt.Errorf("github: upsert file %s@%s: %w", filePath, branch, err)
	}
	return nil
}

// DeleteFile removes a file, failing with rfd.ErrStale if sha does not
// match the current file.
func (a *adapter) DeleteFile(ctx context.Context, owner, repo, branch, filePath, message, sha string) error {
	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.Ptr(message),
		SHA:     gogithub.Ptr(sha),
		Branch:  gogithub.Ptr(branch),
	}
	if _, _, err := a.client.Repositories.DeleteFile(ctx, owner, repo, filePath, opts); err != nil {
		if isConflict(err) {
			return fmt.Errorf("%w: %s@%s", rfd.ErrStale, filePath, branch)
		}
		return fmt.Errorf("github: delete file %s@%s: %w", filePath, branch, err)
	}
	return nil
}

// CreatePullRequest opens a change-request from branch to
// defaultBranch.
func (a *adapter) CreatePullRequest(ctx context.Context, owner, repo, branch, defaultBranch, title, body string) (ChangeRequest, error) {
	pr, _, err := a.client.PullRequests.Create(ctx, owner, repo, &gogithub.NewPullRequest{
		Title: gogithub.Ptr(title),
		Head:  gogithub.Ptr(branch),
		Base:  gogithub.Ptr(defaultBranch),
		Body:  gogithub.Ptr(body),
	})
	if err != nil {
		return ChangeRequest{}, fmt.Errorf("github: create pull request %s -> %s: %w", branch, defaultBranch, err)
	}
	return ChangeRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		HTMLURL: pr.GetHTMLURL(),
		HeadRef: pr.GetHead().GetRef(),
	}, nil
}

// UpdatePullRequestTitle updates an existing pull request's title.
func (a *adapter) UpdatePullRequestTitle(ctx context.Context, owner, repo string, number int, title string) error {
	_, _, err := a.client.PullRequests.Edit(ctx, owner, repo, number, &gogithub.PullRequest{Title: gogithub.Ptr(title)})
	if err != nil {
		return fmt.Errorf("github: update pull request %d title: %w", number, err)
	}
	return nil
}

// SetLabels replaces the label set on an issue/pull request.
func (a *adapter) SetLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	_, _, err := a.client.Issues.ReplaceLabelsForIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return fmt.Errorf("github: set labels on %d: %w", number, err)
	}
	return nil
}

func isNotFound(err error, target **gogithub.ErrorResponse) bool {
	var respErr *gogithub.ErrorResponse
	if asErrorResponse(err, &respErr) {
		*target = respErr
		return respErr.Response != nil && respErr.Response.StatusCode == 404
	}
	return false
}

func isConflict(err error) bool {
	var respErr *gogithub.ErrorResponse
	if asErrorResponse(err, &respErr) {
		return respErr.Response != nil && (respErr.Response.StatusCode == 409 || respErr.Response.StatusCode == 422)
	}
	return false
}

// asErrorResponse walks err's Unwrap chain looking for a
// *gogithub.ErrorResponse, the shape go-github returns for non-2xx
// responses.
func asErrorResponse(err error, target **gogithub.ErrorResponse) bool {
	for err != nil {
		if respErr, ok := err.(*gogithub.ErrorResponse); ok {
			*target = respErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
