// Package reporting renders analytics output as Markdown and CSV for
// offline consumption.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"liquidation-radar/internal/analytics"
	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/pricing"
	"liquidation-radar/internal/storage"
)

// Generator produces reports from stored liquidation records.
type Generator struct {
	store storage.LiquidationStore
	now   func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(store storage.LiquidationStore) *Generator {
	return &Generator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for the window and profit threshold.
func (g *Generator) Generate(ctx context.Context, window domain.TimeFilter, minProfitUsd float64) (*Report, error) {
	if !window.Valid() {
		return nil, fmt.Errorf("invalid time window %q", window)
	}

	now := g.now()
	records, err := g.store.GetByTimeRange(ctx, 0, now.Unix()+1)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	result := analytics.Aggregate(records, window, minProfitUsd, now)

	return &Report{
		GeneratedAt:  now,
		Window:       window,
		MinProfitUsd: minProfitUsd,
		RecordCount:  len(records),
		Summary:      result.Summary,
		TimeSeries:   result.TimeSeries,
		Leaderboard:  result.Leaderboard,
		TopEvents:    topEvents(records, window, minProfitUsd, now),
	}, nil
}

// topEvents picks the highest-profit events passing the same window and
// threshold predicates as the aggregation.
func topEvents(records []*domain.LiquidationRecord, window domain.TimeFilter, minProfitUsd float64, now time.Time) []TopEventRow {
	var rows []TopEventRow
	for _, r := range records {
		if !analytics.InWindow(window, now, r.BlockTimestamp) {
			continue
		}
		collateralUsd := pricing.CollateralUsd(r)
		debtUsd := pricing.DebtUsd(r)
		profit := collateralUsd - debtUsd
		if profit < minProfitUsd {
			continue
		}
		rows = append(rows, TopEventRow{
			ID:               r.ID,
			User:             r.User,
			Liquidator:       r.Liquidator,
			CollateralSymbol: symbolOrUnknown(r.CollateralSymbol),
			DebtSymbol:       symbolOrUnknown(r.DebtSymbol),
			CollateralUsd:    collateralUsd,
			DebtUsd:          debtUsd,
			ProfitUsd:        profit,
			BlockTimestamp:   r.BlockTimestamp,
		})
	}

	// Profit descending, id as tie-break so output is deterministic.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProfitUsd != rows[j].ProfitUsd {
			return rows[i].ProfitUsd > rows[j].ProfitUsd
		}
		return rows[i].ID < rows[j].ID
	})

	if len(rows) > TopEventLimit {
		rows = rows[:TopEventLimit]
	}
	return rows
}

func symbolOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return "?"
	}
	return *s
}
