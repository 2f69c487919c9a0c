// Command seedrisk downloads the World Bank intentional-homicide indicator
// and seeds the country_risk table with per-country base risk scores. It is
// intended to run on a schedule (the dataset updates roughly yearly).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/safesignal/safesignal/config"
	"github.com/safesignal/safesignal/internal/database"
	"github.com/safesignal/safesignal/internal/logger"
	"github.com/safesignal/safesignal/internal/risk"
	"github.com/safesignal/safesignal/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting country risk seeder", "indicator_url", cfg.Seeder.IndicatorURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	if err := run(ctx, cfg, store.New(db)); err != nil {
		logger.Fatal("Seeding failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, st store.Store) error {
	client := risk.NewWorldBankClient(cfg.Seeder.IndicatorURL)

	rows, err := client.FetchIndicatorRows(ctx)
	if err != nil {
		return fmt.Errorf("fetch indicator dataset: %w", err)
	}
	logger.Info("Fetched indicator rows", "rows", len(rows))

	risks := risk.BuildLatestRiskTable(rows, cfg.Seeder.HomicideCeiling, time.Now().UTC())
	if len(risks) == 0 {
		return fmt.Errorf("dataset produced no country risk entries")
	}

	if err := st.UpsertCountryRisks(ctx, risks); err != nil {
		return fmt.Errorf("upsert country risks: %w", err)
	}

	logger.Info("Country risk table seeded", "countries", len(risks))
	return nil
}
