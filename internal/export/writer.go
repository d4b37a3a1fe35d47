package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/splatthy/TVTools/internal/domain/models"
	"github.com/splatthy/TVTools/internal/service/screener"
	"github.com/splatthy/TVTools/internal/usecase/watchlist"
	"github.com/splatthy/TVTools/pkg/config"
	"github.com/splatthy/TVTools/pkg/logger"
)

// Writer materializes watchlist data into import files for the charting
// application. Lines starting with '#' are ignored by the importer.
type Writer struct {
	builder  *watchlist.Builder
	log      *logger.Logger
	exchange string
}

// NewWriter creates a Writer.
func NewWriter(builder *watchlist.Builder, cfg *config.Config, log *logger.Logger) *Writer {
	return &Writer{builder: builder, log: log, exchange: cfg.TradingView.Exchange}
}

// WriteSymbolList writes one exchange-qualified symbol per line with a
// commented header.
func (w *Writer) WriteSymbolList(path, title string, symbols []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# %s\n", title)
	fmt.Fprintf(f, "# Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f, "# Total symbols: %d\n\n", len(symbols))
	for _, s := range symbols {
		fmt.Fprintln(f, screener.Qualify(w.exchange, s))
	}
	return nil
}

// WriteHighChangeList writes qualified symbols annotated with their change
// percent as a trailing comment.
func (w *Writer) WriteHighChangeList(path, title string, items []models.HighChangeSymbol) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# %s\n", title)
	fmt.Fprintf(f, "# Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f, "# Total symbols: %d\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(f, "%s  # %+.2f%%\n", screener.Qualify(w.exchange, item.Symbol), item.ChangePercent)
	}
	return nil
}

// WriteSymbolsCSV writes the Symbol,Exchange,Type variant.
func (w *Writer) WriteSymbolsCSV(path string, symbols []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Symbol", "Exchange", "Type"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range symbols {
		if err := cw.Write([]string{s, w.exchange, "Perpetual"}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHighChangeCSV writes the Symbol,Change%,Exchange,Type variant.
func (w *Writer) WriteHighChangeCSV(path string, items []models.HighChangeSymbol) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"Symbol", "Change%", "Exchange", "Type"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range items {
		row := []string{
			item.Symbol,
			strconv.FormatFloat(item.ChangePercent, 'f', 2, 64),
			w.exchange,
			"Perpetual",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteImportInstructions writes a human-readable guide listing the
// generated files.
func (w *Writer) WriteImportInstructions(path string, files []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintln(f, "WATCHLIST IMPORT INSTRUCTIONS")
	fmt.Fprintln(f, "==================================================")
	fmt.Fprintf(f, "\nGenerated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(f, "FILES CREATED:")
	for i, file := range files {
		fmt.Fprintf(f, "%d. %s\n", i+1, filepath.Base(file))
	}

	fmt.Fprintln(f, "\nHOW TO IMPORT:")
	fmt.Fprintln(f, "1. Open the chart page")
	fmt.Fprintln(f, "2. Open the watchlist panel (right side)")
	fmt.Fprintln(f, "3. Watchlist dropdown -> 'Import list...'")
	fmt.Fprintln(f, "4. Select a .txt file from above")
	fmt.Fprintln(f, "5. Name your watchlist and import")

	fmt.Fprintln(f, "\nNOTES:")
	fmt.Fprintln(f, "- Import creates NEW watchlists (doesn't overwrite)")
	fmt.Fprintln(f, "- Files contain one symbol per line")
	fmt.Fprintln(f, "- Comments (lines starting with #) are ignored")
	return nil
}

// Generate runs the build-once flow: discover perpetuals, filter movers and
// emit the full set of import files into dir.
func (w *Writer) Generate(ctx context.Context, dir string, minChangePercent float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	stamp := time.Now().Format("20060102_150405")

	wl, origin := w.builder.BuildWatchlist(ctx, "")
	if len(wl.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols discovered")
	}
	if origin == models.OriginFallback {
		w.log.Warn("generating files from fallback data; change lists will be empty")
	}

	symbols := make([]string, 0, len(wl.Symbols))
	for _, s := range wl.Symbols {
		symbols = append(symbols, s.Symbol)
	}

	var files []string

	perpsTxt := filepath.Join(dir, "perpetual_pairs_"+stamp+".txt")
	if err := w.WriteSymbolList(perpsTxt, "Perpetual Pairs", symbols); err != nil {
		return files, err
	}
	files = append(files, perpsTxt)

	perpsCSV := filepath.Join(dir, "perpetual_pairs_"+stamp+".csv")
	if err := w.WriteSymbolsCSV(perpsCSV, symbols); err != nil {
		return files, err
	}
	files = append(files, perpsCSV)

	movers, err := w.builder.HighChangeSymbols(ctx, wl, minChangePercent)
	if err != nil {
		return files, err
	}

	if len(movers) > 0 {
		title := fmt.Sprintf("High Change Symbols (>%.1f%%)", minChangePercent)

		moversTxt := filepath.Join(dir, "high_change_symbols_"+stamp+".txt")
		if err := w.WriteHighChangeList(moversTxt, title, movers); err != nil {
			return files, err
		}
		files = append(files, moversTxt)

		moversCSV := filepath.Join(dir, "high_change_symbols_"+stamp+".csv")
		if err := w.WriteHighChangeCSV(moversCSV, movers); err != nil {
			return files, err
		}
		files = append(files, moversCSV)
	} else {
		w.log.Warn("no high change symbols found",
			logger.Float64("min_change_percent", minChangePercent))
	}

	instructions := filepath.Join(dir, "import_instructions_"+stamp+".txt")
	if err := w.WriteImportInstructions(instructions, files); err != nil {
		return files, err
	}
	files = append(files, instructions)

	w.log.Info("generated import files",
		logger.Int("count", len(files)), logger.String("dir", dir))
	return files, nil
}
