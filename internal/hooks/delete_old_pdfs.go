package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// deleteOldPDFsHook removes the superseded PDF once a new one has been
// published under a different filename (e.g. the title changed).
// Missing files are treated as success (§6 "Filenames").
type deleteOldPDFsHook struct{}

func (deleteOldPDFsHook) Name() string { return "DeleteOldPDFs" }

func (deleteOldPDFsHook) Run(ctx context.Context, deps Deps, intent rfd.UpdateIntent, old *storage.DocumentRecord, newRecord *storage.DocumentRecord) error {
	if old == nil || old.PDFFilename == "" || old.PDFFilename == newRecord.PDFFilename {
		return nil
	}

	_, sha, _, err := deps.Adapter.GetFile(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, old.PDFLinkSource)
	if err != nil {
		if errors.Is(err, rfd.ErrNotFound) {
			return nil
		}
		return wrapHookErr("DeleteOldPDFs", err)
	}

	message := fmt.Sprintf("Remove superseded PDF for RFD %s", old.NumberString)
	if err := deps.Adapter.DeleteFile(ctx, deps.DocsOwner, deps.DocsRepo, intent.Branch.BranchName, old.PDFLinkSource, message, sha); err != nil {
		return wrapHookErr("DeleteOldPDFs", err)
	}

	folderID, err := deps.FileStorage.FindFolder(ctx, deps.PDFFolderName)
	if err != nil {
		if errors.Is(err, rfd.ErrNotFound) {
			return nil
		}
		return wrapHookErr("DeleteOldPDFs", err)
	}
	if err := deps.FileStorage.DeleteByName(ctx, folderID, old.PDFFilename); err != nil {
		return wrapHookErr("DeleteOldPDFs", err)
	}
	return nil
}
