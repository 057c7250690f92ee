package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// workSetPrefix names every render work-set directory under
// os.TempDir(), so a restart can find and remove any left behind by a
// process that was killed mid-render.
const workSetPrefix = "rfd-render-"

// Image is a single image file to stage into a render work-set.
type Image struct {
	Path  string // path relative to the document directory
	Bytes []byte
}

// workSet is the Render Work-Set (§3): a unique temp directory, the
// normalized document bytes, and copies of all referenced images.
// Destroyed unconditionally after the render attempt completes,
// success or failure — the same MkdirTemp-plus-cleanup-closure shape
// the source-repo cloner uses for its own temp checkouts.
type workSet struct {
	dir    string
	logger *slog.Logger
}

// SweepStaleWorkSets removes any work-set directories left behind
// under the render temp root by a previous process that exited
// without running its cleanup closure. Intended to run once at
// process start, before the server begins accepting webhooks.
func SweepStaleWorkSets(logger *slog.Logger) {
	entries, err := os.ReadDir(os.TempDir())
	if err != nil {
		logger.Warn("render: failed to scan temp root for stale work-sets", "error", err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || len(entry.Name()) < len(workSetPrefix) || entry.Name()[:len(workSetPrefix)] != workSetPrefix {
			continue
		}
		path := filepath.Join(os.TempDir(), entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("render: failed to remove stale work-set", "path", path, "error", err)
			continue
		}
		logger.Info("render: removed stale work-set", "path", path)
	}
}

func newWorkSet(logger *slog.Logger) (*workSet, func(), error) {
	dir, err := os.MkdirTemp(os.TempDir(), workSetPrefix+uuid.NewString()+"-")
	if err != nil {
		return nil, nil, fmt.Errorf("render: failed to create temp work-set: %w", err)
	}

	ws := &workSet{dir: dir, logger: logger}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Error("render: failed to clean up temp work-set", "path", dir, "error", err)
		}
	}
	return ws, cleanup, nil
}

func (w *workSet) writeContents(filename, contents string) (string, error) {
	path := filepath.Join(w.dir, filename)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return "", fmt.Errorf("render: failed to write %s: %w", filename, err)
	}
	return path, nil
}

func (w *workSet) stageImages(images []Image) error {
	for _, img := range images {
		dest := filepath.Join(w.dir, img.Path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("render: failed to create image directory for %s: %w", img.Path, err)
		}
		if err := os.WriteFile(dest, img.Bytes, 0o600); err != nil {
			return fmt.Errorf("render: failed to stage image %s: %w", img.Path, err)
		}
	}
	return nil
}

// ensureDeadlineRespected is a small helper used before shelling out,
// so a caller whose context is already done does not pay for process
// startup.
func ensureDeadlineRespected(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("render: context already done: %w", err)
	}
	return nil
}
