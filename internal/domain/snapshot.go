package domain

// DailyStatRow is one archived time-series bucket, stamped with the
// snapshot run that produced it. Corresponds to the daily_stats table
// in ClickHouse.
type DailyStatRow struct {
	SnapshotID         string  // id of the snapshot run
	Date               string  // YYYY-MM-DD, UTC
	Count              int
	TotalProfitUsd     float64
	TotalDebtUsd       float64
	TotalCollateralUsd float64
	AvgLatencySeconds  float64
	ComputedAt         int64 // Unix timestamp in milliseconds
}

// LiquidatorStatRow is one archived leaderboard entry per snapshot run.
// Corresponds to the liquidator_stats table in ClickHouse.
type LiquidatorStatRow struct {
	SnapshotID        string
	Liquidator        string
	TotalProfitUsd    float64
	AvgLatencySeconds float64
	Count             int
	ComputedAt        int64 // Unix timestamp in milliseconds
}
