package watchlist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/splatthy/TVTools/internal/domain/models"
)

// Save writes a watchlist snapshot as indented JSON.
func Save(wl *models.Watchlist, path string) error {
	b, err := json.MarshalIndent(wl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	return nil
}

// Load reads a watchlist snapshot. A missing file returns (nil, nil).
func Load(path string) (*models.Watchlist, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var wl models.Watchlist
	if err := json.Unmarshal(b, &wl); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}
	return &wl, nil
}
