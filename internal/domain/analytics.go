package domain

// TimeFilter selects the lookback window for analytics aggregation.
type TimeFilter string

// Supported time filters.
const (
	TimeFilter1W  TimeFilter = "1w"
	TimeFilter1M  TimeFilter = "1m"
	TimeFilter1Y  TimeFilter = "1y"
	TimeFilterMax TimeFilter = "max"
)

// Valid reports whether f is one of the supported filters.
func (f TimeFilter) Valid() bool {
	switch f {
	case TimeFilter1W, TimeFilter1M, TimeFilter1Y, TimeFilterMax:
		return true
	}
	return false
}

// AnalyticsSummary is the scalar rollup over the filtered record set.
// All fields are zero-valued for an empty input, never absent.
type AnalyticsSummary struct {
	TotalLiquidations     int     `json:"total_liquidations"`
	TotalCollateralUsd    float64 `json:"total_collateral_usd"`
	TotalDebtUsd          float64 `json:"total_debt_usd"`
	TotalLiquidatorProfit float64 `json:"total_liquidator_profit"`
	AvgLatencySeconds     float64 `json:"avg_latency_seconds"` // over known-latency records; 0 when none
	UniqueLiquidators     int     `json:"unique_liquidators"`
}

// TimeSeriesBucket accumulates one UTC calendar date of liquidations.
type TimeSeriesBucket struct {
	Date            string  `json:"date"` // YYYY-MM-DD, UTC
	Count           int     `json:"count"`
	TotalProfit     float64 `json:"total_profit"`
	TotalDebtUsd    float64 `json:"total_debt_usd"`
	TotalCollateral float64 `json:"total_collateral_usd"`
	AvgLatency      float64 `json:"avg_latency"` // bucket-local, known-latency records only
}

// LiquidatorStat accumulates one liquidator address.
type LiquidatorStat struct {
	Liquidator  string  `json:"liquidator"`
	TotalProfit float64 `json:"total_profit"`
	AvgLatency  float64 `json:"avg_latency"`
	Count       int     `json:"count"`
}
