package reporting

import (
	"fmt"
	"strings"

	"liquidation-radar/internal/domain"
)

// RenderTimeSeriesCSV renders daily buckets as a CSV string.
func RenderTimeSeriesCSV(series []domain.TimeSeriesBucket) string {
	var sb strings.Builder

	sb.WriteString("date,count,total_profit_usd,total_debt_usd,total_collateral_usd,avg_latency_seconds\n")

	for _, b := range series {
		sb.WriteString(fmt.Sprintf("%s,%d,%.2f,%.2f,%.2f,%.2f\n",
			b.Date,
			b.Count,
			b.TotalProfit,
			b.TotalDebtUsd,
			b.TotalCollateral,
			b.AvgLatency,
		))
	}

	return sb.String()
}

// RenderLeaderboardCSV renders liquidator stats as a CSV string.
func RenderLeaderboardCSV(leaderboard []domain.LiquidatorStat) string {
	var sb strings.Builder

	sb.WriteString("liquidator,total_profit_usd,avg_latency_seconds,count\n")

	for _, s := range leaderboard {
		sb.WriteString(fmt.Sprintf("%s,%.2f,%.2f,%d\n",
			s.Liquidator,
			s.TotalProfit,
			s.AvgLatency,
			s.Count,
		))
	}

	return sb.String()
}
