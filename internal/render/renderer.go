// Package render implements the Renderer (§4.4): it produces HTML and
// PDF from parsed documents, managing a scratch workspace and image
// staging, dispatching blocking AsciiDoc conversion off the caller's
// goroutine and onto a worker, and normalizing links in the resulting
// HTML (§4.4.1).
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/yuin/goldmark"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
)

// Config configures external tool paths, timeouts, and the link-host
// suffix used by CleanLinks.
type Config struct {
	AsciidoctorPath    string
	AsciidoctorPDFPath string
	HTMLTimeout        time.Duration
	PDFTimeout         time.Duration
	LinkHost           string
}

// DefaultConfig returns sane defaults matching §5's stated timeouts
// (30s HTML, 5min PDF).
func DefaultConfig() Config {
	return Config{
		AsciidoctorPath:    "asciidoctor",
		AsciidoctorPDFPath: "asciidoctor-pdf",
		HTMLTimeout:        30 * time.Second,
		PDFTimeout:         5 * time.Minute,
		LinkHost:           "oxide.computer",
	}
}

// Renderer implements §4.4.
type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

// New constructs a Renderer.
func New(cfg Config, logger *slog.Logger) *Renderer {
	return &Renderer{cfg: cfg, logger: logger}
}

// ToHTML renders content to link-normalized HTML. AsciiDoc is shelled
// out to the external converter on a worker goroutine; Markdown is
// rendered in-process via goldmark.
func (r *Renderer) ToHTML(ctx context.Context, content rfd.Content, number int, images []Image) (string, error) {
	var html string
	var err error

	switch content.Kind {
	case rfd.KindAsciiDoc:
		html, err = r.asciidocToHTML(ctx, content.Raw, images)
	case rfd.KindMarkdown:
		html, err = markdownToHTML(content.Raw)
	default:
		return "", fmt.Errorf("render: unknown content kind")
	}
	if err != nil {
		return "", err
	}

	return CleanLinks(html, rfd.NumberString(number), r.cfg.LinkHost), nil
}

// ToPDF renders AsciiDoc content to PDF. Markdown has no PDF path and
// fails with rfd.ErrUnsupported.
func (r *Renderer) ToPDF(ctx context.Context, content rfd.Content, title string, number int, images []Image) (filename string, data []byte, err error) {
	if content.Kind != rfd.KindAsciiDoc {
		return "", nil, fmt.Errorf("%w: PDF generation from markdown", rfd.ErrUnsupported)
	}

	ws, cleanup, err := newWorkSet(r.logger)
	if err != nil {
		return "", nil, err
	}
	defer cleanup()

	if err := ws.stageImages(images); err != nil {
		return "", nil, err
	}

	filePath, err := ws.writeContents("contents.adoc", normalizeUnicode(content.Raw))
	if err != nil {
		return "", nil, err
	}

	out, err := r.runConverter(ctx, r.cfg.PDFTimeout, ws.dir, r.cfg.AsciidoctorPDFPath,
		"-o", "-",
		"-r", "asciidoctor-mermaid/pdf",
		"-a", "source-highlighter=rouge",
		filePath,
	)
	if err != nil {
		return "", nil, err
	}

	return rfd.PDFFilename(number, title), out, nil
}

func (r *Renderer) asciidocToHTML(ctx context.Context, raw string, images []Image) (string, error) {
	ws, cleanup, err := newWorkSet(r.logger)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if err := ws.stageImages(images); err != nil {
		return "", err
	}

	filePath, err := ws.writeContents("contents.adoc", normalizeUnicode(raw))
	if err != nil {
		return "", err
	}

	out, err := r.runConverter(ctx, r.cfg.HTMLTimeout, ws.dir, r.cfg.AsciidoctorPath,
		"-o", "-", "--no-header-footer", filePath,
	)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func markdownToHTML(raw string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown conversion: %v", rfd.ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// converterResult carries the outcome of a worker-dispatched external
// process invocation back to the caller's goroutine.
type converterResult struct {
	stdout []byte
	err    error
}

// runConverter dispatches a blocking external process invocation to a
// worker goroutine, bounded by timeout, so the calling goroutine's
// executor is never blocked on process I/O (§9 "External process
// invocation"). The work-set directory is always cleaned up by the
// caller regardless of how this returns.
func (r *Renderer) runConverter(ctx context.Context, timeout time.Duration, workDir, name string, args ...string) ([]byte, error) {
	if err := ensureDeadlineRespected(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan converterResult, 1)
	go func() {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Dir = workDir

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		runErr := cmd.Run()
		if runErr != nil {
			done <- converterResult{err: fmt.Errorf("%w: %s: %s: %s", rfd.ErrRenderFailed, runErr, stdout.String(), stderr.String())}
			return
		}
		done <- converterResult{stdout: stdout.Bytes()}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s timed out after %s", rfd.ErrRenderFailed, name, timeout)
	case result := <-done:
		if result.err != nil {
			return nil, result.err
		}
		return result.stdout, nil
	}
}
