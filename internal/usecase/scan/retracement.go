package scan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/internal/service/indicator"
	"github.com/splatthy/TVTools/internal/service/ratelimit"
	"github.com/splatthy/TVTools/internal/usecase/watchlist"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/logger"
)

// minReportableScore is the cutoff below which Scan discards opportunities.
const minReportableScore = 0.3

// Scanner finds retracement opportunities by combining the macro trend,
// per-symbol trend structure and proximity to key levels.
type Scanner struct {
	indicators    indicator.Fetcher
	screener      watchlist.ScreenerSource
	builder       *watchlist.Builder
	limiter       *ratelimit.Limiter
	log           *logger.Logger
	exchange      string
	maxCandidates int
	fastTimeframe string
	slowTimeframe string
}

// NewScanner creates a Scanner.
func NewScanner(
	indicators indicator.Fetcher,
	screener watchlist.ScreenerSource,
	builder *watchlist.Builder,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	log *logger.Logger,
) *Scanner {
	return &Scanner{
		indicators:    indicators,
		screener:      screener,
		builder:       builder,
		limiter:       limiter,
		log:           log,
		exchange:      cfg.TradingView.Exchange,
		maxCandidates: cfg.Scan.MaxCandidates,
		fastTimeframe: cfg.Scan.FastTimeframe,
		slowTimeframe: cfg.Scan.SlowTimeframe,
	}
}

// Scan runs the full pipeline: macro trend, candidate selection, per-symbol
// analysis. Results are sorted by score descending; opportunities at or
// below the reporting cutoff are dropped. One symbol's failure never aborts
// the scan.
func (s *Scanner) Scan(ctx context.Context, symbols []string, minChangePercent float64) ([]models.RetracementOpportunity, error) {
	s.log.Info("starting retracement opportunity scan")

	macro := s.macroMarketTrend(ctx)
	s.log.Info("macro market trend determined", logger.String("trend", string(macro)))

	if len(symbols) == 0 {
		movers, err := s.builder.HighChangeSymbols(ctx, nil, minChangePercent)
		if err != nil {
			return nil, fmt.Errorf("select candidates: %w", err)
		}
		for _, m := range movers {
			symbols = append(symbols, m.Symbol)
			if len(symbols) >= s.maxCandidates {
				break
			}
		}
	}

	if len(symbols) == 0 {
		s.log.Warn("no candidate symbols to scan")
		return []models.RetracementOpportunity{}, nil
	}

	// One snapshot serves all recent-change lookups within this scan.
	snap := s.screener.FetchScreenerData(ctx)
	index := snap.Index()

	opportunities := []models.RetracementOpportunity{}
	for _, symbol := range symbols {
		opp, err := s.analyze(ctx, symbol, macro, index)
		if err != nil {
			s.log.Error("symbol analysis failed",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		if opp == nil {
			continue
		}
		if opp.RetracementScore > minReportableScore {
			opportunities = append(opportunities, *opp)
			s.log.Info("found opportunity",
				logger.String("symbol", symbol),
				logger.Float64("score", opp.RetracementScore))
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].RetracementScore > opportunities[j].RetracementScore
	})

	return opportunities, nil
}

// AnalyzeSymbol runs the per-symbol analysis in isolation, returning the
// raw opportunity regardless of score. Returns nil when the symbol has no
// daily indicator data.
func (s *Scanner) AnalyzeSymbol(ctx context.Context, symbol string) (*models.RetracementOpportunity, error) {
	macro := s.macroMarketTrend(ctx)
	snap := s.screener.FetchScreenerData(ctx)
	return s.analyze(ctx, symbol, macro, snap.Index())
}

func (s *Scanner) analyze(ctx context.Context, symbol string, macro models.Trend, index map[string]models.ScreenerRecord) (*models.RetracementOpportunity, error) {
	exchange := s.symbolExchange(symbol)

	slow, err := s.fetchTimeframe(ctx, symbol, exchange, "crypto", s.slowTimeframe)
	if err != nil {
		return nil, err
	}
	if slow.Close == nil {
		s.log.Debug("no daily data for symbol", logger.String("symbol", symbol))
		return nil, nil
	}

	// The fast timeframe is optional; levels it carries are simply absent.
	fast, err := s.fetchTimeframe(ctx, symbol, exchange, "crypto", s.fastTimeframe)
	if err != nil {
		s.log.Debug("no fast-timeframe data for symbol",
			logger.String("symbol", symbol), logger.Error(err))
		fast = models.IndicatorData{Symbol: symbol, Timeframe: s.fastTimeframe}
	}

	symbolTrend := classifyTrend(slow)
	alignment := symbolTrend == macro

	recentChange := 0.0
	if rec, ok := watchlist.FindMatch(symbol, index); ok && rec.Change != nil {
		recentChange = *rec.Change
	}

	counterTrend := isCounterTrendMove(symbolTrend, recentChange)
	distances := keyLevelDistances(fast, slow)
	score := retracementScore(alignment, counterTrend, recentChange, distances)
	proximity := keyLevelProximity(distances)

	return &models.RetracementOpportunity{
		Symbol:              symbol,
		MacroTrend:          macro,
		SymbolTrend:         symbolTrend,
		TrendAlignment:      alignment,
		RecentChangePercent: recentChange,
		IsCounterTrendMove:  counterTrend,
		Distances:           distances,
		RetracementScore:    score,
		KeyLevelProximity:   proximity,
		Recommendation:      recommend(score, proximity, alignment),
	}, nil
}

// fetchTimeframe throttles and fetches one indicator readout.
func (s *Scanner) fetchTimeframe(ctx context.Context, symbol, exchange, screener, timeframe string) (models.IndicatorData, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.IndicatorData{}, err
	}
	return s.indicators.Fetch(ctx, symbol, exchange, screener, timeframe)
}

// symbolExchange picks the exchange for indicator lookups: perpetual
// contracts live on the configured derivatives exchange, bare pairs on spot.
func (s *Scanner) symbolExchange(symbol string) string {
	if strings.HasSuffix(symbol, ".P") {
		return s.exchange
	}
	return "BINANCE"
}

// isCounterTrendMove reports whether the recent change opposes the
// established trend, which reads as a retracement rather than continuation.
func isCounterTrendMove(trend models.Trend, recentChange float64) bool {
	switch trend {
	case models.TrendUp:
		return recentChange < 0
	case models.TrendDown:
		return recentChange > 0
	default:
		return false
	}
}

// keyLevelDistances computes percentage distances from the daily close to
// each tracked reference level. Unknown levels stay nil.
func keyLevelDistances(fast, slow models.IndicatorData) models.LevelDistances {
	var d models.LevelDistances
	if slow.Close == nil || *slow.Close == 0 {
		return d
	}
	price := *slow.Close

	dist := func(level *float64) *float64 {
		if level == nil || *level == 0 {
			return nil
		}
		v := math.Abs(price-*level) / price * 100
		return &v
	}

	d.EMAFast = dist(slow.EMAFast)
	d.EMASlow = dist(slow.EMASlow)
	d.VWAPFast = dist(fast.VWAP)
	d.VWAPSlow = dist(slow.VWAP)
	return d
}

// retracementScore accumulates the composite score, clamped to 1.0.
func retracementScore(alignment, counterTrend bool, recentChange float64, distances models.LevelDistances) float64 {
	score := 0.0

	if alignment && counterTrend {
		score += 0.4
	} else if counterTrend {
		score += 0.2
	}

	switch magnitude := math.Abs(recentChange); {
	case magnitude > 5:
		score += 0.2
	case magnitude > 3:
		score += 0.15
	case magnitude > 1:
		score += 0.1
	}

	if min, ok := distances.Min(); ok {
		switch {
		case min < 1:
			score += 0.3
		case min < 2:
			score += 0.2
		case min < 5:
			score += 0.1
		}
	}

	return math.Min(score, 1.0)
}

// keyLevelProximity buckets the minimum level distance.
func keyLevelProximity(distances models.LevelDistances) models.Proximity {
	min, ok := distances.Min()
	if !ok {
		return models.ProximityFar
	}
	switch {
	case min < 1:
		return models.ProximityNear
	case min < 3:
		return models.ProximityApproaching
	default:
		return models.ProximityFar
	}
}

// recommend is a strict function of score, proximity and alignment.
func recommend(score float64, proximity models.Proximity, alignment bool) models.Recommendation {
	switch {
	case score > 0.7 && proximity == models.ProximityNear && alignment:
		return models.RecommendationHigh
	case score > 0.5 && (proximity == models.ProximityNear || proximity == models.ProximityApproaching):
		return models.RecommendationMedium
	case score > minReportableScore:
		return models.RecommendationLow
	default:
		return models.RecommendationWatch
	}
}
