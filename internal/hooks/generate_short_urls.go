package hooks

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// shortURLsPath is the single file in the configs repo that holds the
// redirect configuration (§6 "Configs repo").
const shortURLsPath = "rfd/redirects.yaml"

type shortURLEntry struct {
	Number       int    `yaml:"number"`
	NumberString string `yaml:"number_string"`
	ShortLink    string `yaml:"short_link"`
	RenderedLink string `yaml:"rendered_link"`
}

// generateShortURLsHook regenerates the short-URL redirect
// configuration from every persisted document. Idempotent because the
// serialization is deterministic (sorted by number) and UpsertFile
// skips the write when bytes are unchanged.
type generateShortURLsHook struct{}

func (generateShortURLsHook) Name() string { return "GenerateShortUrls" }

func (generateShortURLsHook) Run(ctx context.Context, deps Deps, _ rfd.UpdateIntent, _ *storage.DocumentRecord, _ *storage.DocumentRecord) error {
	records, err := deps.Store.ListDocuments(ctx)
	if err != nil {
		return wrapHookErr("GenerateShortUrls", err)
	}

	entries := make([]shortURLEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, shortURLEntry{
			Number:       r.Number,
			NumberString: r.NumberString,
			ShortLink:    r.ShortLink,
			RenderedLink: r.RenderedLink,
		})
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return wrapHookErr("GenerateShortUrls", err)
	}

	err = deps.Adapter.UpsertFile(ctx, deps.ConfigsOwner, deps.ConfigsRepo, deps.DefaultBranch, shortURLsPath, data,
		fmt.Sprintf("Regenerate short-URL redirects (%d documents)", len(entries)))
	if err != nil {
		return wrapHookErr("GenerateShortUrls", err)
	}
	return nil
}
