// Package main generates a one-shot liquidation report (Markdown + CSVs)
// from PostgreSQL or from a running API instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"liquidation-radar/internal/client"
	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/reporting"
	"liquidation-radar/internal/storage"
	"liquidation-radar/internal/storage/memory"
	pgstore "liquidation-radar/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	apiURL := flag.String("api-url", "", "Fetch records from a running API instead of PostgreSQL")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for API page caching (optional)")
	window := flag.String("window", string(domain.TimeFilterMax), "Time window: 1w, 1m, 1y, max")
	minProfit := flag.Float64("min-profit", 0, "Minimum liquidator profit in USD (inclusive)")
	maxRecords := flag.Int("max-records", 0, "Max records to fetch from the API (0 = all)")
	flag.Parse()

	ctx := context.Background()

	if *apiURL == "" && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --api-url is required")
		os.Exit(1)
	}

	store, cleanup, err := createStore(ctx, *postgresDSN, *apiURL, *redisAddr, *maxRecords)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	report, err := reporting.NewGenerator(store).Generate(ctx, domain.TimeFilter(*window), *minProfit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := writeOutputs(*outputDir, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing outputs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report written to %s/ (%d liquidations, %.2f USD profit)\n",
		*outputDir, report.Summary.TotalLiquidations, report.Summary.TotalLiquidatorProfit)
}

// createStore returns a record store backed by PostgreSQL, or an in-memory
// store filled from the API when --api-url is set.
func createStore(ctx context.Context, postgresDSN, apiURL, redisAddr string, maxRecords int) (storage.LiquidationStore, func(), error) {
	if apiURL != "" {
		var opts []client.Option
		if redisAddr != "" {
			cache, err := client.NewRedisCache(ctx, redisAddr, "", 0)
			if err != nil {
				return nil, nil, fmt.Errorf("connect to redis: %w", err)
			}
			opts = append(opts, client.WithCache(cache, time.Minute))
		}

		records, err := client.New(apiURL, opts...).FetchAll(ctx, maxRecords)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch records from %s: %w", apiURL, err)
		}

		store := memory.NewLiquidationStore()
		if err := store.InsertBulk(ctx, records); err != nil {
			return nil, nil, fmt.Errorf("load fetched records: %w", err)
		}
		return store, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return pgstore.NewLiquidationStore(pool), pool.Close, nil
}

// writeOutputs writes the Markdown report and CSV files.
func writeOutputs(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := map[string]string{
		"REPORT.md":       reporting.RenderMarkdown(report),
		"daily_stats.csv": reporting.RenderTimeSeriesCSV(report.TimeSeries),
		"leaderboard.csv": reporting.RenderLeaderboardCSV(report.Leaderboard),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
