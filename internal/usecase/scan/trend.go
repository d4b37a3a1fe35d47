package scan

import (
	"context"
	"fmt"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/pkg/logger"
)

// classifyTrend applies the EMA-ordering rule: price above both averages
// with the fast one on top is an uptrend, the mirror image a downtrend,
// anything else sideways. Missing values classify as sideways.
func classifyTrend(data models.IndicatorData) models.Trend {
	if data.Close == nil || data.EMAFast == nil || data.EMASlow == nil {
		return models.TrendSideways
	}

	price, fast, slow := *data.Close, *data.EMAFast, *data.EMASlow
	if price == 0 || fast == 0 || slow == 0 {
		return models.TrendSideways
	}

	switch {
	case price > fast && fast > slow:
		return models.TrendUp
	case price < fast && fast < slow:
		return models.TrendDown
	default:
		return models.TrendSideways
	}
}

// invertDominanceTrend maps the stablecoin-dominance trend to the overall
// market direction. Money flowing into stables means a bearish market.
func invertDominanceTrend(t models.Trend) models.Trend {
	switch t {
	case models.TrendUp:
		return models.TrendDown
	case models.TrendDown:
		return models.TrendUp
	default:
		return models.TrendSideways
	}
}

// dominance instruments on the CRYPTOCAP index feed.
var dominanceSymbols = []string{"USDT.D", "STABLES.D", "BTC.D", "OTHERS.D"}

// MacroBias classifies broad market and altcoin bias from dominance flows.
// Instruments that fail to fetch contribute zero values; an error is
// returned only when every fetch fails.
func (s *Scanner) MacroBias(ctx context.Context) (models.MacroBias, error) {
	values := make(map[string]float64, len(dominanceSymbols))
	changes := make(map[string]float64, len(dominanceSymbols))
	fetched := 0

	for _, sym := range dominanceSymbols {
		data, err := s.fetchTimeframe(ctx, sym, "CRYPTOCAP", "crypto", s.slowTimeframe)
		if err != nil {
			s.log.Warn("could not fetch dominance instrument",
				logger.String("symbol", sym), logger.Error(err))
			continue
		}
		fetched++
		if data.Close != nil {
			values[sym] = *data.Close
		}
		if data.ChangePercent != nil {
			changes[sym] = *data.ChangePercent
		}
	}

	if fetched == 0 {
		return models.MacroBias{}, fmt.Errorf("no dominance data available")
	}

	bias := models.MacroBias{
		USDTDominance:    values["USDT.D"],
		StablesDominance: values["STABLES.D"],
		BTCDominance:     values["BTC.D"],
		OthersDominance:  values["OTHERS.D"],
	}

	// Rising stables dominance means money rotating out of risk.
	switch stables := changes["STABLES.D"]; {
	case stables > 2:
		bias.MarketBias = models.BiasRiskOff
	case stables < -2:
		bias.MarketBias = models.BiasRiskOn
	default:
		bias.MarketBias = models.BiasNeutral
	}

	btc, others := changes["BTC.D"], changes["OTHERS.D"]
	switch {
	case btc < -1 && others > 1:
		bias.AltcoinBias = "bullish"
	case btc > 1 && others < -1:
		bias.AltcoinBias = "bearish"
	default:
		bias.AltcoinBias = "neutral"
	}

	return bias, nil
}

// macroMarketTrend derives the market-wide trend from the stablecoin
// dominance index. On fetch failure it degrades to the coarser bias
// classification, then to neutral.
func (s *Scanner) macroMarketTrend(ctx context.Context) models.Trend {
	data, err := s.fetchTimeframe(ctx, "USDT.D", "CRYPTOCAP", "crypto", s.slowTimeframe)
	if err != nil || data.Close == nil {
		if err != nil {
			s.log.Warn("dominance index unavailable, using macro bias fallback", logger.Error(err))
		}
		return s.macroTrendFallback(ctx)
	}

	return invertDominanceTrend(classifyTrend(data))
}

func (s *Scanner) macroTrendFallback(ctx context.Context) models.Trend {
	bias, err := s.MacroBias(ctx)
	if err != nil {
		return models.TrendNeutral
	}

	switch bias.MarketBias {
	case models.BiasRiskOff:
		return models.TrendDown
	case models.BiasRiskOn:
		return models.TrendUp
	default:
		return models.TrendSideways
	}
}
