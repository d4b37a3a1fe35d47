package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/splatthy/TVTools/internal/di"
	"github.com/splatthy/TVTools/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	outputDir := flag.String("o", "watchlist_files", "output directory for generated files")
	minChange := flag.Float64("c", -1, "minimum change percent for the high-change list (default from config)")
	runScan := flag.Bool("scan", false, "run the retracement opportunity scan")
	runSync := flag.Bool("sync", false, "push watchlists to the account")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	threshold := cfg.Watchlist.MinChangePercent
	if *minChange >= 0 {
		threshold = *minChange
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	ctx := context.Background()

	switch {
	case *runScan:
		err = app.Scan(ctx, threshold)
	case *runSync:
		err = app.Sync(ctx, threshold)
	default:
		err = app.Generate(ctx, *outputDir, threshold)
	}

	if err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
