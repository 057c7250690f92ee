package wire

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"

	"github.com/oxidecomputer/rfd-pipeline/internal/app"
	"github.com/oxidecomputer/rfd-pipeline/internal/config"
	"github.com/oxidecomputer/rfd-pipeline/internal/logger"
)

// AppSet is the full provider set for the RFD pipeline server. The
// bulk of the application graph (database connection, the GitHub
// adapter, renderer, search-index and file-storage clients, hook
// chain, reconciler, dispatcher and HTTP server) is assembled inside
// app.NewApp itself rather than exposed as individual wire providers,
// since wiring them depends on business logic - credential selection,
// hook ordering - that wire's pure DI graph doesn't express well.
var AppSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	provideLoggerConfig,
	provideLogWriter,
	provideDefaultSlogLogger,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}

func provideDefaultSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(loggerConfig, writer)
	slog.SetDefault(l)
	return l
}
