package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/splatthy/TVTools/internal/export"
	"github.com/splatthy/TVTools/internal/service/screener"
	"github.com/splatthy/TVTools/internal/usecase/scan"
	"github.com/splatthy/TVTools/internal/usecase/watchlist"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/logger"
)

// App bundles the assembled use cases behind the CLI operations.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	builder *watchlist.Builder
	scanner *scan.Scanner
	writer  *export.Writer
}

// New creates the application.
func New(cfg *config.Config, log *logger.Logger, builder *watchlist.Builder, scanner *scan.Scanner, writer *export.Writer) *App {
	return &App{cfg: cfg, log: log, builder: builder, scanner: scanner, writer: writer}
}

// Generate builds the watchlist once and materializes import files.
func (a *App) Generate(ctx context.Context, dir string, minChange float64) error {
	wl, _ := a.builder.BuildWatchlist(ctx, "")
	if err := watchlist.Save(wl, a.cfg.Watchlist.File); err != nil {
		a.log.Warn("could not persist watchlist snapshot", logger.Error(err))
	}

	files, err := a.writer.Generate(ctx, dir, minChange)
	if err != nil {
		return fmt.Errorf("generate files: %w", err)
	}

	fmt.Printf("Generated %d files in %s\n", len(files), dir)
	return nil
}

// Scan runs the retracement scan and prints a report.
func (a *App) Scan(ctx context.Context, minChange float64) error {
	opportunities, err := a.scanner.Scan(ctx, nil, minChange)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if len(opportunities) == 0 {
		fmt.Println("No retracement opportunities found.")
		return nil
	}

	w := os.Stdout
	fmt.Fprintf(w, "%-14s %-10s %-10s %-7s %-8s %-12s %s\n",
		"SYMBOL", "MACRO", "TREND", "CHG%", "SCORE", "PROXIMITY", "RECOMMENDATION")
	for _, opp := range opportunities {
		fmt.Fprintf(w, "%-14s %-10s %-10s %+-7.2f %-8.2f %-12s %s\n",
			opp.Symbol, opp.MacroTrend, opp.SymbolTrend,
			opp.RecentChangePercent, opp.RetracementScore,
			opp.KeyLevelProximity, opp.Recommendation)
	}
	return nil
}

// Sync pushes the perpetuals list and top movers to the account watchlists.
// Without a session token the lists are still built, just not pushed.
func (a *App) Sync(ctx context.Context, minChange float64) error {
	if _, err := a.builder.SyncPerpetuals(ctx); err != nil {
		if errors.Is(err, screener.ErrNoSession) {
			fmt.Println("No session token configured; watchlists built but not pushed.")
			return nil
		}
		return fmt.Errorf("sync perpetuals: %w", err)
	}
	if _, err := a.builder.SyncHighChange(ctx, minChange); err != nil {
		return fmt.Errorf("sync high change: %w", err)
	}
	fmt.Println("Account watchlists synced.")
	return nil
}
