package watchlist

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/logger"
)

type fakeScreener struct {
	snap    models.Snapshot
	fetches int
}

func (f *fakeScreener) FetchScreenerData(ctx context.Context) models.Snapshot {
	f.fetches++
	return f.snap
}

func fptr(v float64) *float64 { return &v }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.TradingView.Exchange = "BLOFIN"
	cfg.Watchlist.SyncLimit = 50
	return cfg
}

func newTestBuilder(src ScreenerSource) *Builder {
	return NewBuilder(src, nil, testConfig(), logger.Nop())
}

func snapshotOf(records ...models.ScreenerRecord) models.Snapshot {
	return models.Snapshot{Records: records, Origin: models.OriginFresh}
}

func watchlistOf(symbols ...string) *models.Watchlist {
	wl := &models.Watchlist{Name: "test", CreatedAt: time.Now()}
	for _, s := range symbols {
		wl.Symbols = append(wl.Symbols, models.Symbol{Symbol: s, Exchange: "BLOFIN"})
	}
	return wl
}

func TestHighChangeSymbolsInvalidThreshold(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf()}
	b := newTestBuilder(src)

	for _, threshold := range []float64{-5.0, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := b.HighChangeSymbols(context.Background(), watchlistOf("BTCUSDT.P"), threshold)
		if !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("threshold %v: got %v, want ErrInvalidThreshold", threshold, err)
		}
	}

	if src.fetches != 0 {
		t.Fatalf("expected no fetch before validation, got %d", src.fetches)
	}
}

func TestHighChangeSymbolsFiltering(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf(
		models.ScreenerRecord{Symbol: "AUSDT.P", Price: 1, Change: fptr(8.5), Volume: 100},
		models.ScreenerRecord{Symbol: "BUSDT.P", Price: 2, Change: fptr(-5.2), Volume: 200},
		models.ScreenerRecord{Symbol: "CUSDT.P", Price: 3, Change: fptr(12.3), Volume: 300},
		models.ScreenerRecord{Symbol: "DUSDT.P", Price: 4, Change: fptr(-3.1), Volume: 400},
		models.ScreenerRecord{Symbol: "EUSDT.P", Price: 5, Change: fptr(15.7), Volume: 500},
	)}
	b := newTestBuilder(src)
	wl := watchlistOf("AUSDT.P", "BUSDT.P", "CUSDT.P", "DUSDT.P", "EUSDT.P")

	got, err := b.HighChangeSymbols(context.Background(), wl, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"EUSDT.P", "CUSDT.P", "AUSDT.P", "BUSDT.P"}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("result[%d] = %s, want %s", i, got[i].Symbol, sym)
		}
	}

	got, err = b.HighChangeSymbols(context.Background(), wl, 10.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "EUSDT.P" || got[1].Symbol != "CUSDT.P" {
		t.Fatalf("threshold 10: got %+v, want [EUSDT.P CUSDT.P]", got)
	}
}

func TestHighChangeSymbolsSortOrder(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf(
		models.ScreenerRecord{Symbol: "AUSDT.P", Price: 1, Change: fptr(6.0)},
		models.ScreenerRecord{Symbol: "BUSDT.P", Price: 1, Change: fptr(-9.5)},
		models.ScreenerRecord{Symbol: "CUSDT.P", Price: 1, Change: fptr(7.2)},
		models.ScreenerRecord{Symbol: "DUSDT.P", Price: 1, Change: fptr(-6.0)},
	)}
	b := newTestBuilder(src)

	got, err := b.HighChangeSymbols(context.Background(),
		watchlistOf("AUSDT.P", "BUSDT.P", "CUSDT.P", "DUSDT.P"), 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < len(got)-1; i++ {
		if math.Abs(got[i].ChangePercent) < math.Abs(got[i+1].ChangePercent) {
			t.Fatalf("not sorted by absolute change at %d: %+v", i, got)
		}
	}

	// ties keep encounter order
	if got[1].Symbol != "CUSDT.P" || got[2].Symbol != "AUSDT.P" || got[3].Symbol != "DUSDT.P" {
		t.Fatalf("unexpected tie order: %+v", got)
	}
}

func TestHighChangeSymbolsSkipsInvalidRecords(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf(
		models.ScreenerRecord{Symbol: "AUSDT.P", Price: 1, Change: nil},
		models.ScreenerRecord{Symbol: "BUSDT.P", Price: 1, Change: fptr(1500)},
		models.ScreenerRecord{Symbol: "CUSDT.P", Price: -3, Change: fptr(9.9), Volume: math.NaN()},
	)}
	b := newTestBuilder(src)

	got, err := b.HighChangeSymbols(context.Background(),
		watchlistOf("AUSDT.P", "BUSDT.P", "CUSDT.P"), 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d results, want 1 (null change and extreme change excluded): %+v", len(got), got)
	}
	if got[0].Symbol != "CUSDT.P" {
		t.Fatalf("got %s, want CUSDT.P", got[0].Symbol)
	}
	if got[0].Price != 0 || got[0].Volume != 0 {
		t.Errorf("invalid price/volume should coerce to 0, got price=%v volume=%v", got[0].Price, got[0].Volume)
	}
}

func TestHighChangeSymbolsEmptyWatchlist(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf()}
	b := newTestBuilder(src)

	got, err := b.HighChangeSymbols(context.Background(), watchlistOf(), 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
	if src.fetches != 0 {
		t.Fatalf("empty watchlist must not fetch, got %d fetches", src.fetches)
	}
}

func TestHighChangeSymbolsFallbackSnapshot(t *testing.T) {
	src := &fakeScreener{snap: models.Snapshot{
		Records: []models.ScreenerRecord{{Symbol: "BTCUSDT", Change: fptr(0)}},
		Origin:  models.OriginFallback,
	}}
	b := newTestBuilder(src)

	got, err := b.HighChangeSymbols(context.Background(), watchlistOf("BTCUSDT"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fallback data must not produce movers, got %+v", got)
	}
}

func TestHighChangeSymbolsUnmatchedSkipped(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf(
		models.ScreenerRecord{Symbol: "AUSDT.P", Price: 1, Change: fptr(8.5), Volume: 10},
	)}
	b := newTestBuilder(src)

	got, err := b.HighChangeSymbols(context.Background(),
		watchlistOf("AUSDT.P", "MISSINGUSDT.P"), 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "AUSDT.P" {
		t.Fatalf("unmatched symbol should be skipped, got %+v", got)
	}
}

func TestHighChangeSymbolsEndToEnd(t *testing.T) {
	src := &fakeScreener{snap: snapshotOf(
		models.ScreenerRecord{Symbol: "AUSDT.P", Price: 1.5, Change: fptr(8.5), Volume: 100},
		models.ScreenerRecord{Symbol: "BUSDT.P", Price: 2.5, Change: fptr(-5.2), Volume: 200},
		models.ScreenerRecord{Symbol: "CUSDT.P", Price: 3.5, Change: fptr(12.3), Volume: 300},
	)}
	b := newTestBuilder(src)

	got, err := b.HighChangeSymbols(context.Background(),
		watchlistOf("AUSDT.P", "BUSDT.P", "CUSDT.P"), 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[0].ChangePercent != 12.3 {
		t.Errorf("first result change = %v, want 12.3", got[0].ChangePercent)
	}
	for _, r := range got {
		if r.Price < 0 || r.Volume < 0 {
			t.Errorf("%s carries negative price/volume: %+v", r.Symbol, r)
		}
	}
}

func TestBuildWatchlistReportsOrigin(t *testing.T) {
	src := &fakeScreener{snap: models.Snapshot{
		Records: []models.ScreenerRecord{{Symbol: "BTCUSDT"}},
		Origin:  models.OriginFallback,
	}}
	b := newTestBuilder(src)

	wl, origin := b.BuildWatchlist(context.Background(), "")
	if origin != models.OriginFallback {
		t.Fatalf("origin = %v, want fallback", origin)
	}
	if len(wl.Symbols) != 1 || wl.Symbols[0].Exchange != "BLOFIN" {
		t.Fatalf("unexpected watchlist: %+v", wl)
	}
	if wl.Name == "" {
		t.Fatal("expected default watchlist name")
	}
}
