package models

import "time"

// Symbol is an immutable snapshot of a tradable instrument.
type Symbol struct {
	Symbol        string   `json:"symbol"`
	Exchange      string   `json:"exchange"`
	Price         float64  `json:"price"`
	Volume        float64  `json:"volume"`
	ChangePercent *float64 `json:"change_percent"`
}

// Watchlist is a named, ordered collection of symbols. Order is preserved
// but carries no meaning for filtering.
type Watchlist struct {
	Name      string    `json:"name"`
	Symbols   []Symbol  `json:"symbols"`
	CreatedAt time.Time `json:"created_at"`
}

// ScreenerRecord is one validated row from the screener. Change is nil when
// the upstream reported no change value.
type ScreenerRecord struct {
	Symbol string
	Price  float64
	Change *float64
	Volume float64
}

// SnapshotOrigin tags whether screener data came from a live fetch or from
// the built-in fallback list.
type SnapshotOrigin int

const (
	OriginFresh SnapshotOrigin = iota
	OriginFallback
)

func (o SnapshotOrigin) String() string {
	if o == OriginFallback {
		return "fallback"
	}
	return "fresh"
}

// Snapshot is a single screener fetch result. Fallback snapshots carry
// zeroed numeric fields and must not feed change-based filtering or
// proximity scoring.
type Snapshot struct {
	Records []ScreenerRecord
	Origin  SnapshotOrigin
}

// Index builds a symbol-keyed lookup over the snapshot records.
func (s Snapshot) Index() map[string]ScreenerRecord {
	idx := make(map[string]ScreenerRecord, len(s.Records))
	for _, r := range s.Records {
		idx[r.Symbol] = r
	}
	return idx
}

// HighChangeSymbol is one result row of the change filter.
type HighChangeSymbol struct {
	Symbol        string  `json:"symbol"`
	ChangePercent float64 `json:"change_percent"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
}

// Trend labels a price-structure direction.
type Trend string

const (
	TrendUp       Trend = "uptrend"
	TrendDown     Trend = "downtrend"
	TrendSideways Trend = "sideways"
	TrendNeutral  Trend = "neutral"
)

// IndicatorData is a flat indicator readout for one symbol at one timeframe.
// A nil field means the level is unknown, never zero.
type IndicatorData struct {
	Symbol        string
	Exchange      string
	Timeframe     string
	Close         *float64
	EMAFast       *float64
	EMASlow       *float64
	VWAP          *float64
	ChangePercent *float64
}

// LevelDistances holds percentage distances from current price to each
// tracked reference level. Missing levels stay nil.
type LevelDistances struct {
	EMAFast  *float64
	EMASlow  *float64
	VWAPFast *float64
	VWAPSlow *float64
}

// Min returns the smallest known distance, or false when none is known.
func (d LevelDistances) Min() (float64, bool) {
	var min float64
	found := false
	for _, v := range []*float64{d.EMAFast, d.EMASlow, d.VWAPFast, d.VWAPSlow} {
		if v == nil {
			continue
		}
		if !found || *v < min {
			min = *v
			found = true
		}
	}
	return min, found
}

// Proximity buckets distance to the nearest key level.
type Proximity string

const (
	ProximityNear        Proximity = "near"
	ProximityApproaching Proximity = "approaching"
	ProximityFar         Proximity = "far"
)

// Recommendation is the discrete tier derived from score, proximity and
// trend alignment.
type Recommendation string

const (
	RecommendationHigh   Recommendation = "high"
	RecommendationMedium Recommendation = "medium"
	RecommendationLow    Recommendation = "low"
	RecommendationWatch  Recommendation = "watch"
)

// RetracementOpportunity is the read-only per-symbol scan result.
type RetracementOpportunity struct {
	Symbol              string
	MacroTrend          Trend
	SymbolTrend         Trend
	TrendAlignment      bool
	RecentChangePercent float64
	IsCounterTrendMove  bool
	Distances           LevelDistances
	RetracementScore    float64
	KeyLevelProximity   Proximity
	Recommendation      Recommendation
}

// MarketBias classifies broad risk appetite from stablecoin dominance flows.
type MarketBias string

const (
	BiasRiskOn  MarketBias = "risk_on"
	BiasRiskOff MarketBias = "risk_off"
	BiasNeutral MarketBias = "neutral"
)

// MacroBias is the dominance-based market classification.
type MacroBias struct {
	USDTDominance    float64
	StablesDominance float64
	BTCDominance     float64
	OthersDominance  float64
	MarketBias       MarketBias
	AltcoinBias      string // "bullish", "bearish", "neutral"
}
