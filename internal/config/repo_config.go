package config

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// ErrRepoConfigNotFound is returned by LoadRepoOverrides when the
// documents repository carries no `.rfd.yml` override file; callers
// fall back to DefaultRepoOverrides.
var ErrRepoConfigNotFound = errors.New("repo override file not found")

// RepoOverrides is the repo-local `.rfd.yml` override file, read from
// the root of the documents repository. DocumentsDirectory changes the
// prefix rfd.RepoDirectory builds document paths with; the extractor's
// push-path filter always matches the fixed "rfd/" prefix.
// ImageExtensions changes the recognized image extensions.
type RepoOverrides struct {
	DocumentsDirectory string   `yaml:"documents_directory"`
	ImageExtensions    []string `yaml:"image_extensions"`
}

// DefaultRepoOverrides mirrors the built-in defaults (§3, §4.2).
func DefaultRepoOverrides() *RepoOverrides {
	return &RepoOverrides{
		DocumentsDirectory: "rfd",
		ImageExtensions:    []string{"png", "jpg", "jpeg", "gif", "svg", "webp", "bmp"},
	}
}

// FileFetcher retrieves a single file's content from the documents
// repository. Satisfied by github.Adapter.GetFile, kept as a narrow
// function type here to avoid this package depending on the github
// package.
type FileFetcher func(ctx context.Context, path string) ([]byte, error)

// repoOverridesPath is the single file, at the documents repository
// root, a deployment may use to override the built-in defaults.
const repoOverridesPath = ".rfd.yml"

// LoadRepoOverrides fetches and parses `.rfd.yml` from the documents
// repository's default branch via fetch. A missing file is not an
// error: the caller receives the defaults alongside
// ErrRepoConfigNotFound and may choose to ignore it.
func LoadRepoOverrides(ctx context.Context, fetch FileFetcher) (*RepoOverrides, error) {
	data, err := fetch(ctx, repoOverridesPath)
	if err != nil {
		if errors.Is(err, rfd.ErrNotFound) {
			return DefaultRepoOverrides(), ErrRepoConfigNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", repoOverridesPath, err)
	}

	overrides := DefaultRepoOverrides()
	if err := yaml.Unmarshal(data, overrides); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", repoOverridesPath, err)
	}
	return overrides, nil
}
