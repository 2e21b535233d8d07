package reporting

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

// record with decimals 0 and price 1.0 so raw amounts equal USD.
func record(id, liquidator string, ts int64, collateralUsd, debtUsd int64) *domain.LiquidationRecord {
	return &domain.LiquidationRecord{
		ID:                         id,
		User:                       "0xuser",
		Liquidator:                 liquidator,
		CollateralAsset:            "0xcol",
		DebtAsset:                  "0xdebt",
		DebtToCover:                strconv.FormatInt(debtUsd, 10),
		LiquidatedCollateralAmount: strconv.FormatInt(collateralUsd, 10),
		BlockTimestamp:             ts,
		BlockNumber:                100,
		TxHash:                     "0x" + id,
		LatencySeconds:             ptr(5.0),
		CollateralSymbol:           ptr("WETH"),
		CollateralDecimals:         ptr(0),
		CollateralPriceUsd:         ptr(1.0),
		DebtSymbol:                 ptr("USDC"),
		DebtDecimals:               ptr(0),
		DebtPriceUsd:               ptr(1.0),
		CreatedAt:                  ts * 1000,
	}
}

func setupGenerator(t *testing.T, records ...*domain.LiquidationRecord) *Generator {
	t.Helper()
	ctx := context.Background()
	store := memory.NewLiquidationStore()
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	return NewGenerator(store)
}

func TestGenerate_FullReport(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	day1 := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC).Unix()
	day2 := time.Date(2026, 8, 11, 10, 0, 0, 0, time.UTC).Unix()

	g := setupGenerator(t,
		record("aaa-0", "0xliq1", day1, 600, 500), // profit 100
		record("bbb-0", "0xliq2", day1+60, 250, 200), // profit 50
		record("ccc-0", "0xliq1", day2, 1200, 1000), // profit 200
	).WithClock(func() time.Time { return now })

	report, err := g.Generate(context.Background(), domain.TimeFilterMax, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, now)
	}
	if report.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", report.RecordCount)
	}
	if report.Summary.TotalLiquidations != 3 {
		t.Errorf("TotalLiquidations = %d, want 3", report.Summary.TotalLiquidations)
	}
	if report.Summary.TotalLiquidatorProfit != 350 {
		t.Errorf("TotalLiquidatorProfit = %f, want 350", report.Summary.TotalLiquidatorProfit)
	}
	if report.Summary.UniqueLiquidators != 2 {
		t.Errorf("UniqueLiquidators = %d, want 2", report.Summary.UniqueLiquidators)
	}

	if len(report.TimeSeries) != 2 {
		t.Fatalf("expected 2 time series buckets, got %d", len(report.TimeSeries))
	}
	if report.TimeSeries[0].Date != "2026-08-10" || report.TimeSeries[0].Count != 2 {
		t.Errorf("first bucket: %+v", report.TimeSeries[0])
	}

	if len(report.Leaderboard) != 2 {
		t.Fatalf("expected 2 leaderboard entries, got %d", len(report.Leaderboard))
	}
	if report.Leaderboard[0].Liquidator != "0xliq1" || report.Leaderboard[0].TotalProfit != 300 {
		t.Errorf("top liquidator: %+v", report.Leaderboard[0])
	}

	// Top events by profit descending.
	if len(report.TopEvents) != 3 {
		t.Fatalf("expected 3 top events, got %d", len(report.TopEvents))
	}
	if report.TopEvents[0].ID != "ccc-0" || report.TopEvents[0].ProfitUsd != 200 {
		t.Errorf("top event: %+v", report.TopEvents[0])
	}
	if report.TopEvents[2].ID != "bbb-0" {
		t.Errorf("last event: %+v", report.TopEvents[2])
	}
}

func TestGenerate_WindowAndThresholdFilter(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	recent := now.Add(-2 * 24 * time.Hour).Unix()
	old := now.Add(-60 * 24 * time.Hour).Unix()

	g := setupGenerator(t,
		record("new-0", "0xliq1", recent, 700, 500), // profit 200, in 1w window
		record("old-0", "0xliq2", old, 5000, 1000),  // outside 1w window
		record("low-0", "0xliq3", recent, 510, 500), // profit 10, below threshold
	).WithClock(func() time.Time { return now })

	report, err := g.Generate(context.Background(), domain.TimeFilter1W, 100)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3 (unfiltered)", report.RecordCount)
	}
	if report.Summary.TotalLiquidations != 1 {
		t.Errorf("TotalLiquidations = %d, want 1", report.Summary.TotalLiquidations)
	}
	if len(report.TopEvents) != 1 || report.TopEvents[0].ID != "new-0" {
		t.Errorf("top events: %+v", report.TopEvents)
	}
}

func TestGenerate_InvalidWindow(t *testing.T) {
	g := setupGenerator(t)
	if _, err := g.Generate(context.Background(), domain.TimeFilter("2d"), 0); err == nil {
		t.Fatal("expected error for invalid window")
	}
}

func TestGenerate_EmptyStore(t *testing.T) {
	g := setupGenerator(t)
	report, err := g.Generate(context.Background(), domain.TimeFilterMax, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.Summary.TotalLiquidations != 0 {
		t.Errorf("TotalLiquidations = %d, want 0", report.Summary.TotalLiquidations)
	}
	if len(report.TopEvents) != 0 {
		t.Errorf("expected no top events, got %d", len(report.TopEvents))
	}
}

func TestTopEvents_UnresolvedSymbols(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	r := record("bare-0", "0xliq1", now.Add(-time.Hour).Unix(), 600, 500)
	r.CollateralSymbol = nil
	r.DebtSymbol = nil

	g := setupGenerator(t, r).WithClock(func() time.Time { return now })
	report, err := g.Generate(context.Background(), domain.TimeFilterMax, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(report.TopEvents) != 1 {
		t.Fatalf("expected 1 top event, got %d", len(report.TopEvents))
	}
	if report.TopEvents[0].CollateralSymbol != "?" || report.TopEvents[0].DebtSymbol != "?" {
		t.Errorf("symbols: %+v", report.TopEvents[0])
	}
}

func TestTopEvents_Capped(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	ts := now.Add(-time.Hour).Unix()

	var records []*domain.LiquidationRecord
	for i := 0; i < TopEventLimit+5; i++ {
		records = append(records, record("ev-"+strconv.Itoa(i), "0xliq1", ts, int64(600+i), 500))
	}

	g := setupGenerator(t, records...).WithClock(func() time.Time { return now })
	report, err := g.Generate(context.Background(), domain.TimeFilterMax, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(report.TopEvents) != TopEventLimit {
		t.Errorf("expected %d top events, got %d", TopEventLimit, len(report.TopEvents))
	}
	// Highest profit first.
	if report.TopEvents[0].ProfitUsd != float64(100+TopEventLimit+4) {
		t.Errorf("top profit = %f", report.TopEvents[0].ProfitUsd)
	}
}

func TestRenderMarkdown(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	day := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC).Unix()

	g := setupGenerator(t, record("aaa-0", "0xliq1", day, 600, 500)).
		WithClock(func() time.Time { return now })
	report, err := g.Generate(context.Background(), domain.TimeFilterMax, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	for _, want := range []string{
		"# Liquidation Report",
		"## Summary",
		"## Daily Activity",
		"| 2026-08-10 | 1 |",
		"## Liquidator Leaderboard",
		"| 0xliq1 | 100.00 |",
		"## Largest Liquidations",
		"WETH/USDC",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	g := setupGenerator(t).WithClock(func() time.Time {
		return time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	})
	report, err := g.Generate(context.Background(), domain.TimeFilterMax, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	for _, want := range []string{
		"No liquidations in window.",
		"No liquidators in window.",
		"No events in window.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderTimeSeriesCSV(t *testing.T) {
	series := []domain.TimeSeriesBucket{
		{Date: "2026-08-10", Count: 2, TotalProfit: 150, TotalDebtUsd: 700, TotalCollateral: 850, AvgLatency: 6},
		{Date: "2026-08-11", Count: 1, TotalProfit: 200, TotalDebtUsd: 1000, TotalCollateral: 1200, AvgLatency: 5},
	}

	csv := RenderTimeSeriesCSV(series)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "date,count,total_profit_usd,total_debt_usd,total_collateral_usd,avg_latency_seconds" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "2026-08-10,2,150.00,700.00,850.00,6.00" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestRenderLeaderboardCSV(t *testing.T) {
	leaderboard := []domain.LiquidatorStat{
		{Liquidator: "0xliq1", TotalProfit: 300, AvgLatency: 4.5, Count: 2},
	}

	csv := RenderLeaderboardCSV(leaderboard)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "0xliq1,300.00,4.50,2" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}
