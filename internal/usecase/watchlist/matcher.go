package watchlist

import (
	"strings"

	"github.com/splatthy/TVTools/internal/domain/models"
)

const perpMarker = ".P"

// FindMatch resolves a watchlist symbol against a screener index despite
// naming drift between the two sources. Exact match wins; otherwise the
// perpetual marker is stripped or appended. A miss is an ordinary outcome,
// not an error.
func FindMatch(symbol string, index map[string]models.ScreenerRecord) (models.ScreenerRecord, bool) {
	if symbol == "" || len(index) == 0 {
		return models.ScreenerRecord{}, false
	}

	if rec, ok := index[symbol]; ok {
		return rec, true
	}

	var variant string
	if strings.HasSuffix(symbol, perpMarker) {
		variant = strings.TrimSuffix(symbol, perpMarker)
	} else {
		variant = symbol + perpMarker
	}

	rec, ok := index[variant]
	return rec, ok
}
