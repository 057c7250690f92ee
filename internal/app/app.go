// Package app initializes and orchestrates the RFD pipeline's main
// components: configuration, persistence, the Repo/Branch Adapter, the
// renderer, the hook chain, the reconciler, the worker pool, and the
// HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	gogithub "github.com/google/go-github/v73/github"

	"github.com/oxidecomputer/rfd-pipeline/internal/config"
	"github.com/oxidecomputer/rfd-pipeline/internal/db"
	"github.com/oxidecomputer/rfd-pipeline/internal/filestorage"
	"github.com/oxidecomputer/rfd-pipeline/internal/github"
	"github.com/oxidecomputer/rfd-pipeline/internal/hooks"
	"github.com/oxidecomputer/rfd-pipeline/internal/jobs"
	"github.com/oxidecomputer/rfd-pipeline/internal/reconcile"
	"github.com/oxidecomputer/rfd-pipeline/internal/render"
	"github.com/oxidecomputer/rfd-pipeline/internal/rfd"
	"github.com/oxidecomputer/rfd-pipeline/internal/searchindex"
	"github.com/oxidecomputer/rfd-pipeline/internal/server"
	"github.com/oxidecomputer/rfd-pipeline/internal/storage"
)

// App holds the main application components.
type App struct {
	Store       storage.Store
	Adapter     github.Adapter
	Reconciler  *reconcile.Reconciler
	Cfg         *config.Config

	logger     *slog.Logger
	server     *server.Server
	dispatcher jobs.Dispatcher
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	logger.Info("initializing RFD pipeline application",
		"docs_owner", cfg.Docs.Owner,
		"docs_repo", cfg.Docs.Repo,
		"max_workers", cfg.Server.MaxWorkers,
	)

	dbConn, dbCleanup, err := db.NewDatabase(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := storage.NewStore(dbConn.DB)

	ghClient, _, err := createGitHubClient(ctx, cfg, logger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	adapter := github.NewAdapter(ghClient, logger)

	applyRepoOverrides(ctx, cfg, adapter, logger)

	renderer := render.New(render.Config{
		AsciidoctorPath:    cfg.Render.AsciidoctorPath,
		AsciidoctorPDFPath: cfg.Render.AsciidoctorPDFPath,
		HTMLTimeout:        cfg.Render.HTMLTimeout,
		PDFTimeout:         cfg.Render.PDFTimeout,
		LinkHost:           cfg.Docs.RenderedLinkHost,
	}, logger)

	searchClient := searchindex.New(searchindex.Config{
		BaseURL: cfg.Search.BaseURL,
		APIKey:  cfg.Search.APIKey,
		Timeout: cfg.Search.Timeout,
	}, logger)

	driveClient := filestorage.New(filestorage.Config{
		BaseURL:    cfg.Drive.BaseURL,
		APIKey:     cfg.Drive.APIKey,
		SharedName: cfg.Drive.SharedName,
		Timeout:    cfg.Drive.Timeout,
	}, logger)

	hookDeps := hooks.Deps{
		Adapter:       adapter,
		Renderer:      renderer,
		SearchIndex:   searchClient,
		FileStorage:   driveClient,
		Store:         store,
		Logger:        logger,
		DocsOwner:     cfg.Docs.Owner,
		DocsRepo:      cfg.Docs.Repo,
		ConfigsOwner:  cfg.Docs.Owner,
		ConfigsRepo:   cfg.Docs.ConfigsRepo,
		DefaultBranch: cfg.Docs.DefaultBranch,
		PDFFolderName: cfg.Drive.SharedName,
	}
	chain := hooks.Default(logger)

	reconciler := reconcile.New(adapter, renderer, store, chain, hookDeps, reconcile.Config{
		ShortURLHost:     cfg.Docs.ShortURLHost,
		RenderedLinkHost: cfg.Docs.RenderedLinkHost,
	}, logger)

	dispatcher := jobs.NewDispatcher(reconciler, cfg.Server.MaxWorkers, cfg.Server.QueueCapacity, logger)
	httpServer := server.NewServer(ctx, cfg, adapter, dispatcher, logger)

	logger.Info("RFD pipeline application initialized successfully")
	return &App{
			Store:      store,
			Adapter:    adapter,
			Reconciler: reconciler,
			Cfg:        cfg,
			logger:     logger,
			server:     httpServer,
			dispatcher: dispatcher,
		}, func() {
			dbCleanup()
		}, nil
}

// applyRepoOverrides fetches `.rfd.yml` from the documents repository's
// default branch, if present, and applies its documents-directory and
// image-extension overrides globally. A missing override file is
// expected in most deployments and only logged at debug level; any
// other fetch or parse error is logged but non-fatal, since the
// built-in defaults are always a safe fallback.
func applyRepoOverrides(ctx context.Context, cfg *config.Config, adapter github.Adapter, logger *slog.Logger) {
	fetch := func(ctx context.Context, path string) ([]byte, error) {
		data, _, _, err := adapter.GetFile(ctx, cfg.Docs.Owner, cfg.Docs.Repo, cfg.Docs.DefaultBranch, path)
		return data, err
	}

	overrides, err := config.LoadRepoOverrides(ctx, fetch)
	switch {
	case err == nil:
		logger.Info("applied repo override file", "documents_directory", overrides.DocumentsDirectory)
	case errors.Is(err, config.ErrRepoConfigNotFound):
		logger.Debug("no repo override file found, using defaults")
	default:
		logger.Warn("failed to load repo override file, using defaults", "error", err)
		overrides = config.DefaultRepoOverrides()
	}

	rfd.SetDocumentsDirectory(overrides.DocumentsDirectory)
	rfd.SetImageExtensions(overrides.ImageExtensions)
}

// createGitHubClient authenticates either as a GitHub App installation
// (preferred, required for the server) or with a plain personal access
// token (CLI convenience, §10).
func createGitHubClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gogithub.Client, string, error) {
	if cfg.GitHub.AppID != 0 && cfg.GitHub.InstallationID != 0 {
		return github.CreateInstallationClient(ctx, cfg, cfg.GitHub.InstallationID, logger)
	}
	if cfg.GitHub.Token == "" {
		return nil, "", errors.New("no GitHub credentials configured: set github.app_id/installation_id or github.token")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token})
	tc := oauth2.NewClient(ctx, ts)
	return gogithub.NewClient(tc), cfg.GitHub.Token, nil
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting RFD pipeline server",
		"server_port", a.Cfg.Server.Port,
		"max_workers", a.Cfg.Server.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	var shutdownErr error
	a.logger.Info("shutting down RFD pipeline services")

	a.dispatcher.Stop()

	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.logger.Error("error during HTTP server shutdown", "error", err)
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if shutdownErr != nil {
		a.logger.Error("RFD pipeline stopped with errors", "error", shutdownErr)
	} else {
		a.logger.Info("RFD pipeline stopped successfully")
	}
	return shutdownErr
}
