package watchlist

import (
	"testing"

	"github.com/splatthy/TVTools/internal/domain/models"
)

func TestFindMatch(t *testing.T) {
	index := map[string]models.ScreenerRecord{
		"BTCUSDT":   {Symbol: "BTCUSDT", Price: 50000},
		"ETHUSDT.P": {Symbol: "ETHUSDT.P", Price: 3000},
		"SOLUSDT":   {Symbol: "SOLUSDT", Price: 150},
		"SOLUSDT.P": {Symbol: "SOLUSDT.P", Price: 151},
	}

	tests := []struct {
		name       string
		symbol     string
		wantSymbol string
		wantOK     bool
	}{
		{
			name:       "exact match",
			symbol:     "BTCUSDT",
			wantSymbol: "BTCUSDT",
			wantOK:     true,
		},
		{
			name:       "suffix stripped",
			symbol:     "BTCUSDT.P",
			wantSymbol: "BTCUSDT",
			wantOK:     true,
		},
		{
			name:       "suffix appended",
			symbol:     "ETHUSDT",
			wantSymbol: "ETHUSDT.P",
			wantOK:     true,
		},
		{
			name:       "exact preferred over variant",
			symbol:     "SOLUSDT.P",
			wantSymbol: "SOLUSDT.P",
			wantOK:     true,
		},
		{
			name:   "absent in both forms",
			symbol: "DOGEUSDT",
			wantOK: false,
		},
		{
			name:   "empty symbol",
			symbol: "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := FindMatch(tt.symbol, index)
			if ok != tt.wantOK {
				t.Fatalf("FindMatch(%q) ok = %v, want %v", tt.symbol, ok, tt.wantOK)
			}
			if ok && rec.Symbol != tt.wantSymbol {
				t.Errorf("FindMatch(%q) = %q, want %q", tt.symbol, rec.Symbol, tt.wantSymbol)
			}
		})
	}
}

func TestFindMatchEmptyIndex(t *testing.T) {
	if _, ok := FindMatch("BTCUSDT", nil); ok {
		t.Fatal("expected no match against nil index")
	}
	if _, ok := FindMatch("BTCUSDT", map[string]models.ScreenerRecord{}); ok {
		t.Fatal("expected no match against empty index")
	}
}

func TestFindMatchDeterministic(t *testing.T) {
	index := map[string]models.ScreenerRecord{
		"BTCUSDT": {Symbol: "BTCUSDT", Price: 50000},
	}
	first, ok1 := FindMatch("BTCUSDT.P", index)
	second, ok2 := FindMatch("BTCUSDT.P", index)
	if ok1 != ok2 || first != second {
		t.Fatalf("repeated calls differ: (%v,%v) vs (%v,%v)", first, ok1, second, ok2)
	}
}
