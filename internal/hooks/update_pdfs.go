package hooks

import (
	"context"
	"fmt"

	"github.com/oxidecomputer/rfd-pipeline/internal/render"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// updatePDFsHook renders AsciiDoc content to PDF and publishes it to
// both the source repo and file storage, recording the resulting URLs
// on newRecord. Markdown documents have no PDF path and are skipped.
type updatePDFsHook struct{}

func (updatePDFsHook) Name() string { return "UpdatePDFs" }

func (updatePDFsHook) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, _ *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	doc := newRecord.ToDocument()
	if doc.Content.Kind != rfd.KindAsciiDoc {
		return nil
	}

	images, err := fetchImages(ctx, deps, intent)
	if err != nil {
		return wrapHookErr("UpdatePDFs", err)
	}

	filename, data, err := deps.Renderer.ToPDF(ctx, doc.Content, doc.Title, doc.Number, images)
	if err != nil {
		return wrapHookErr("UpdatePDFs", err)
	}

	sourcePath := fmt.Sprintf("%s/pdfs/%s", rfd.RepoDirectory(intent.Number), filename)
	message := fmt.Sprintf("Update PDF for RFD %s", doc.NumberString())
	if err := deps.Adapter.UpsertFile(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, sourcePath, data, message); err != nil {
		return wrapHookErr("UpdatePDFs", err)
	}

	folderID, err := deps.FileStorage.FindFolder(ctx, deps.PDFFolderName)
	if err != nil {
		return wrapHookErr("UpdatePDFs", err)
	}
	driveURL, err := deps.FileStorage.UploadOrReplace(ctx, folderID, filename, data)
	if err != nil {
		return wrapHookErr("UpdatePDFs", err)
	}

	newRecord.PDFLinkSource = sourcePath
	newRecord.PDFLinkDrive = driveURL
	newRecord.PDFFilename = filename
	return nil
}

func fetchImages(ctx context.Context, deps Deps, intent rfd.UpdateIntent) ([]render.Image, error) {
	dir := rfd.RepoDirectory(intent.Number)
	images, err := deps.Adapter.ListImages(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, dir)
	if err != nil {
		return nil, err
	}
	out := make([]render.Image, 0, len(images))
	for _, img := range images {
		out = append(out, render.Image{Path: img.Path, Bytes: img.Bytes})
	}
	return out, nil
}
