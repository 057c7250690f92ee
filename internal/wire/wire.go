//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/oxidecomputer/rfd-pipeline/internal/app"
)

// InitializeApp builds the RFD pipeline application and its cleanup
// function from the provider set in providers.go.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(AppSet)
	return &app.App{}, nil, nil
}
