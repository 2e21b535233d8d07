package reporting

import (
	"time"

	"liquidation-radar/internal/domain"
)

// Report is the rendered view of one analytics pass over the record set.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	Window       domain.TimeFilter
	MinProfitUsd float64
	RecordCount  int // records in the store, before filtering

	Summary     domain.AnalyticsSummary
	TimeSeries  []domain.TimeSeriesBucket
	Leaderboard []domain.LiquidatorStat

	// Largest single liquidations by profit, capped at TopEventLimit.
	TopEvents []TopEventRow
}

// TopEventLimit caps the largest-liquidations table.
const TopEventLimit = 20

// TopEventRow is one row in the largest-liquidations table.
type TopEventRow struct {
	ID               string
	User             string
	Liquidator       string
	CollateralSymbol string // "?" when metadata is unresolved
	DebtSymbol       string
	CollateralUsd    float64
	DebtUsd          float64
	ProfitUsd        float64
	BlockTimestamp   int64
}
