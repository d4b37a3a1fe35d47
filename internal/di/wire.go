//go:build wireinject
// +build wireinject

package di

import (
	"github.com/splatthy/TVTools/internal/app"
	"github.com/splatthy/TVTools/pkg/config"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*app.App, error) {
	wire.Build(
		ProvideLogger,

		// Upstream clients
		ProvideScreenerClient,
		ProvideIndicatorFetcher,
		ProvideLimiter,

		// Use cases
		ProvideBuilder,
		ProvideScanner,
		ProvideWriter,

		ProvideApp,
	)
	return &app.App{}, nil
}
