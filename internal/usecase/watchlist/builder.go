package watchlist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/logger"
)

// ErrInvalidThreshold marks a caller-supplied threshold that is negative or
// not a finite number. This is a usage error, raised before any fetch.
var ErrInvalidThreshold = errors.New("min change percent must be a non-negative finite number")

// changeSanityBound excludes screener change values that cannot be real.
const changeSanityBound = 1000.0

const defaultWatchlistName = "TVTools_Crypto_Screener"

// ScreenerSource supplies screener snapshots.
type ScreenerSource interface {
	FetchScreenerData(ctx context.Context) models.Snapshot
}

// AccountSync pushes a symbol list to a named account watchlist.
type AccountSync interface {
	UpdateWatchlist(ctx context.Context, name string, symbols []string) error
}

// Builder assembles watchlists from screener data and filters them by
// change percent.
type Builder struct {
	src       ScreenerSource
	account   AccountSync
	log       *logger.Logger
	exchange  string
	syncLimit int
}

// NewBuilder creates a Builder. account may be nil when no account
// operations are wanted.
func NewBuilder(src ScreenerSource, account AccountSync, cfg *config.Config, log *logger.Logger) *Builder {
	return &Builder{
		src:       src,
		account:   account,
		log:       log,
		exchange:  cfg.TradingView.Exchange,
		syncLimit: cfg.Watchlist.SyncLimit,
	}
}

// BuildWatchlist fetches a fresh screener snapshot and wraps it in a
// watchlist. The snapshot origin is returned so callers can refuse to run
// change-based logic on fallback data.
func (b *Builder) BuildWatchlist(ctx context.Context, name string) (*models.Watchlist, models.SnapshotOrigin) {
	if name == "" {
		name = defaultWatchlistName
	}

	snap := b.src.FetchScreenerData(ctx)

	symbols := make([]models.Symbol, 0, len(snap.Records))
	for _, rec := range snap.Records {
		symbols = append(symbols, models.Symbol{
			Symbol:        rec.Symbol,
			Exchange:      b.exchange,
			Price:         rec.Price,
			Volume:        rec.Volume,
			ChangePercent: rec.Change,
		})
	}

	b.log.Info("built watchlist",
		logger.String("name", name),
		logger.Int("symbols", len(symbols)),
		logger.String("origin", snap.Origin.String()))

	return &models.Watchlist{
		Name:      name,
		Symbols:   symbols,
		CreatedAt: time.Now(),
	}, snap.Origin
}

// HighChangeSymbols returns the watchlist subset whose recent change percent
// meets the threshold, sorted by absolute change descending. A nil watchlist
// is built from the screener first. The result is never nil; upstream
// failures yield an empty slice.
func (b *Builder) HighChangeSymbols(ctx context.Context, wl *models.Watchlist, minChangePercent float64) ([]models.HighChangeSymbol, error) {
	if math.IsNaN(minChangePercent) || math.IsInf(minChangePercent, 0) || minChangePercent < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, minChangePercent)
	}
	if minChangePercent > 100 {
		b.log.Warn("unusually high change threshold, few symbols will match",
			logger.Float64("min_change_percent", minChangePercent))
	}

	if wl == nil {
		built, _ := b.BuildWatchlist(ctx, "")
		wl = built
	}

	result := []models.HighChangeSymbol{}
	if len(wl.Symbols) == 0 {
		b.log.Warn("empty watchlist, nothing to filter")
		return result, nil
	}

	b.log.Info("filtering watchlist by change",
		logger.Int("symbols", len(wl.Symbols)),
		logger.Float64("min_change_percent", minChangePercent))

	snap := b.src.FetchScreenerData(ctx)
	if snap.Origin == models.OriginFallback {
		b.log.Error("screener unavailable, fallback data carries no change values; returning empty result")
		return result, nil
	}
	index := snap.Index()

	matched := 0
	var missing []string

	for _, sym := range wl.Symbols {
		if sym.Symbol == "" {
			b.log.Debug("skipping symbol with empty identifier")
			continue
		}

		rec, ok := FindMatch(sym.Symbol, index)
		if !ok {
			missing = append(missing, sym.Symbol)
			continue
		}
		matched++

		if rec.Change == nil {
			b.log.Debug("symbol has no change data", logger.String("symbol", sym.Symbol))
			continue
		}
		change := *rec.Change
		if math.IsNaN(change) || math.IsInf(change, 0) || math.Abs(change) > changeSanityBound {
			b.log.Warn("symbol has implausible change value, skipping",
				logger.String("symbol", sym.Symbol), logger.Float64("change", change))
			continue
		}

		if math.Abs(change) < minChangePercent {
			continue
		}

		result = append(result, models.HighChangeSymbol{
			Symbol:        sym.Symbol,
			ChangePercent: change,
			Price:         sanitize(rec.Price),
			Volume:        sanitize(rec.Volume),
		})
	}

	b.log.Info("matched watchlist symbols against screener",
		logger.Int("matched", matched), logger.Int("total", len(wl.Symbols)))
	if len(missing) > 0 {
		sample := missing
		if len(sample) > 10 {
			sample = sample[:10]
		}
		b.log.Warn("symbols missing from screener data",
			logger.Int("count", len(missing)), logger.Strings("sample", sample))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return math.Abs(result[i].ChangePercent) > math.Abs(result[j].ChangePercent)
	})

	b.log.Info("high change filter complete",
		logger.Int("qualifying", len(result)),
		logger.Float64("min_change_percent", minChangePercent))

	return result, nil
}

// sanitize coerces price/volume fields to valid non-negative numbers,
// defaulting invalid values to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

const (
	perpListName       = "TVTools - Perpetual Pairs"
	highChangeListName = "TVTools - High Change"
)

// SyncPerpetuals builds the full perpetuals watchlist and pushes it to the
// account. Without a session token the watchlist is still returned.
func (b *Builder) SyncPerpetuals(ctx context.Context) (*models.Watchlist, error) {
	wl, _ := b.BuildWatchlist(ctx, "")

	if b.account == nil {
		return wl, nil
	}

	symbols := make([]string, 0, len(wl.Symbols))
	for _, s := range wl.Symbols {
		symbols = append(symbols, s.Symbol)
	}

	if err := b.account.UpdateWatchlist(ctx, perpListName, symbols); err != nil {
		b.log.Warn("account sync failed, watchlist kept locally", logger.Error(err))
		return wl, err
	}
	return wl, nil
}

// SyncHighChange filters top movers and pushes them to the account, capped
// at the configured sync limit.
func (b *Builder) SyncHighChange(ctx context.Context, minChangePercent float64) ([]models.HighChangeSymbol, error) {
	wl, _ := b.BuildWatchlist(ctx, "")
	movers, err := b.HighChangeSymbols(ctx, wl, minChangePercent)
	if err != nil {
		return nil, err
	}

	if b.account == nil || len(movers) == 0 {
		return movers, nil
	}

	limit := b.syncLimit
	if limit > len(movers) {
		limit = len(movers)
	}
	symbols := make([]string, 0, limit)
	for _, m := range movers[:limit] {
		symbols = append(symbols, m.Symbol)
	}

	if err := b.account.UpdateWatchlist(ctx, highChangeListName, symbols); err != nil {
		b.log.Warn("high change sync failed", logger.Error(err))
		return movers, err
	}
	return movers, nil
}
