package di

import (
	"github.com/splatthy/TVTools/internal/app"
	"github.com/splatthy/TVTools/internal/export"
	"github.com/splatthy/TVTools/internal/service/indicator"
	"github.com/splatthy/TVTools/internal/service/ratelimit"
	"github.com/splatthy/TVTools/internal/service/screener"
	"github.com/splatthy/TVTools/internal/usecase/scan"
	"github.com/splatthy/TVTools/internal/usecase/watchlist"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/logger"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideScreenerClient creates the screener/account client.
func ProvideScreenerClient(cfg *config.Config, log *logger.Logger) *screener.Client {
	return screener.New(cfg, log)
}

// ProvideIndicatorFetcher creates the per-symbol indicator client.
func ProvideIndicatorFetcher(cfg *config.Config, log *logger.Logger) indicator.Fetcher {
	return indicator.New(cfg, log)
}

// ProvideLimiter creates the token bucket throttling indicator fetches.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(1, cfg.Scan.RequestsPerSecond)
}

// ProvideBuilder creates the watchlist builder.
func ProvideBuilder(client *screener.Client, cfg *config.Config, log *logger.Logger) *watchlist.Builder {
	return watchlist.NewBuilder(client, client, cfg, log)
}

// ProvideScanner creates the retracement scanner.
func ProvideScanner(
	indicators indicator.Fetcher,
	client *screener.Client,
	builder *watchlist.Builder,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	log *logger.Logger,
) *scan.Scanner {
	return scan.NewScanner(indicators, client, builder, limiter, cfg, log)
}

// ProvideWriter creates the file materializer.
func ProvideWriter(builder *watchlist.Builder, cfg *config.Config, log *logger.Logger) *export.Writer {
	return export.NewWriter(builder, cfg, log)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	builder *watchlist.Builder,
	scanner *scan.Scanner,
	writer *export.Writer,
) *app.App {
	return app.New(cfg, log, builder, scanner, writer)
}
