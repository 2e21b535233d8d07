// Package analytics derives on-demand aggregates from liquidation records:
// a scalar summary, a per-UTC-date time series, and a per-liquidator
// leaderboard, all computed in a single pass over the filtered set.
package analytics

import (
	"sort"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/pricing"
)

// Result holds the three derived structures. All are fully rebuilt on
// every call; none are incrementally updated.
type Result struct {
	Summary     domain.AnalyticsSummary   `json:"summary"`
	TimeSeries  []domain.TimeSeriesBucket `json:"time_series"`
	Leaderboard []domain.LiquidatorStat   `json:"leaderboard"`
}

// cutoffMs returns the epoch-millisecond cutoff for a window relative to now.
// TimeFilterMax means no cutoff.
func cutoffMs(window domain.TimeFilter, now time.Time) int64 {
	const day = 24 * time.Hour
	switch window {
	case domain.TimeFilter1W:
		return now.Add(-7 * day).UnixMilli()
	case domain.TimeFilter1M:
		return now.Add(-30 * day).UnixMilli()
	case domain.TimeFilter1Y:
		return now.Add(-365 * day).UnixMilli()
	default:
		return 0
	}
}

// InWindow reports whether a record timestamp (Unix seconds) falls inside
// the window relative to now.
func InWindow(window domain.TimeFilter, now time.Time, blockTimestamp int64) bool {
	return blockTimestamp*1000 >= cutoffMs(window, now)
}

// latencyKnown reports whether the record carries a usable latency sample.
func latencyKnown(r *domain.LiquidationRecord) bool {
	return r.LatencySeconds != nil && *r.LatencySeconds >= 0
}

type dateAccum struct {
	count           int
	totalProfit     float64
	totalDebt       float64
	totalCollateral float64
	latencySum      float64
	latencyCount    int
}

type liquidatorAccum struct {
	totalProfit  float64
	latencySum   float64
	latencyCount int
	count        int
}

// Aggregate filters records to the window and profit threshold, then
// accumulates summary, time series, and leaderboard in one pass.
//
// Both predicates apply before any accumulation: a record failing either
// is excluded from all three outputs uniformly. The profit threshold is
// inclusive (>=). now is injected so callers control the wall clock.
func Aggregate(records []*domain.LiquidationRecord, window domain.TimeFilter, minProfitUsd float64, now time.Time) Result {
	cutoff := cutoffMs(window, now)

	var (
		totalProfit     float64
		totalCollateral float64
		totalDebt       float64
		latencySum      float64
		latencyCount    int
		included        int
	)
	liquidators := make(map[string]*liquidatorAccum)
	dates := make(map[string]*dateAccum)

	for _, r := range records {
		if r.BlockTimestamp*1000 < cutoff {
			continue
		}

		collateralUsd := pricing.CollateralUsd(r)
		debtUsd := pricing.DebtUsd(r)
		profit := collateralUsd - debtUsd
		if profit < minProfitUsd {
			continue
		}

		included++
		totalCollateral += collateralUsd
		totalDebt += debtUsd
		totalProfit += profit
		if latencyKnown(r) {
			latencySum += *r.LatencySeconds
			latencyCount++
		}

		dateKey := time.Unix(r.BlockTimestamp, 0).UTC().Format("2006-01-02")
		bucket := dates[dateKey]
		if bucket == nil {
			bucket = &dateAccum{}
			dates[dateKey] = bucket
		}
		bucket.count++
		bucket.totalProfit += profit
		bucket.totalDebt += debtUsd
		bucket.totalCollateral += collateralUsd
		if latencyKnown(r) {
			bucket.latencySum += *r.LatencySeconds
			bucket.latencyCount++
		}

		stat := liquidators[r.Liquidator]
		if stat == nil {
			stat = &liquidatorAccum{}
			liquidators[r.Liquidator] = stat
		}
		stat.totalProfit += profit
		stat.count++
		if latencyKnown(r) {
			stat.latencySum += *r.LatencySeconds
			stat.latencyCount++
		}
	}

	summary := domain.AnalyticsSummary{
		TotalLiquidations:     included,
		TotalCollateralUsd:    totalCollateral,
		TotalDebtUsd:          totalDebt,
		TotalLiquidatorProfit: totalProfit,
		AvgLatencySeconds:     avg(latencySum, latencyCount),
		UniqueLiquidators:     len(liquidators),
	}

	series := make([]domain.TimeSeriesBucket, 0, len(dates))
	for date, b := range dates {
		series = append(series, domain.TimeSeriesBucket{
			Date:            date,
			Count:           b.count,
			TotalProfit:     b.totalProfit,
			TotalDebtUsd:    b.totalDebt,
			TotalCollateral: b.totalCollateral,
			AvgLatency:      avg(b.latencySum, b.latencyCount),
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	leaderboard := make([]domain.LiquidatorStat, 0, len(liquidators))
	for addr, s := range liquidators {
		leaderboard = append(leaderboard, domain.LiquidatorStat{
			Liquidator:  addr,
			TotalProfit: s.totalProfit,
			AvgLatency:  avg(s.latencySum, s.latencyCount),
			Count:       s.count,
		})
	}
	// Profit descending, address as tie-break so output is deterministic.
	sort.Slice(leaderboard, func(i, j int) bool {
		if leaderboard[i].TotalProfit != leaderboard[j].TotalProfit {
			return leaderboard[i].TotalProfit > leaderboard[j].TotalProfit
		}
		return leaderboard[i].Liquidator < leaderboard[j].Liquidator
	})

	return Result{
		Summary:     summary,
		TimeSeries:  series,
		Leaderboard: leaderboard,
	}
}

// avg is sum/count with 0 for no samples. Zero is the documented
// convention for "no latency data" throughout the analytics output.
func avg(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
