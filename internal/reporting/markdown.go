package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Liquidation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Window: %s | Min profit: $%.2f | Records in store: %d\n\n",
		r.Window, r.MinProfitUsd, r.RecordCount))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Liquidations | %d |\n", r.Summary.TotalLiquidations))
	sb.WriteString(fmt.Sprintf("| Collateral Seized (USD) | %.2f |\n", r.Summary.TotalCollateralUsd))
	sb.WriteString(fmt.Sprintf("| Debt Repaid (USD) | %.2f |\n", r.Summary.TotalDebtUsd))
	sb.WriteString(fmt.Sprintf("| Liquidator Profit (USD) | %.2f |\n", r.Summary.TotalLiquidatorProfit))
	sb.WriteString(fmt.Sprintf("| Avg Latency (s) | %.2f |\n", r.Summary.AvgLatencySeconds))
	sb.WriteString(fmt.Sprintf("| Unique Liquidators | %d |\n", r.Summary.UniqueLiquidators))
	sb.WriteString("\n")

	// Daily Activity
	sb.WriteString("## Daily Activity\n\n")
	if len(r.TimeSeries) > 0 {
		sb.WriteString("| Date | Count | Profit (USD) | Debt (USD) | Collateral (USD) | Avg Latency (s) |\n")
		sb.WriteString("|------|-------|--------------|------------|------------------|------------------|\n")
		for _, b := range r.TimeSeries {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %.2f | %.2f |\n",
				b.Date, b.Count, b.TotalProfit, b.TotalDebtUsd, b.TotalCollateral, b.AvgLatency))
		}
	} else {
		sb.WriteString("No liquidations in window.\n")
	}
	sb.WriteString("\n")

	// Leaderboard
	sb.WriteString("## Liquidator Leaderboard\n\n")
	if len(r.Leaderboard) > 0 {
		sb.WriteString("| Liquidator | Profit (USD) | Avg Latency (s) | Count |\n")
		sb.WriteString("|------------|--------------|------------------|-------|\n")
		for _, s := range r.Leaderboard {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %d |\n",
				s.Liquidator, s.TotalProfit, s.AvgLatency, s.Count))
		}
	} else {
		sb.WriteString("No liquidators in window.\n")
	}
	sb.WriteString("\n")

	// Largest Liquidations
	sb.WriteString("## Largest Liquidations\n\n")
	if len(r.TopEvents) > 0 {
		sb.WriteString("| Event | Pair | Collateral (USD) | Debt (USD) | Profit (USD) | Liquidator |\n")
		sb.WriteString("|-------|------|------------------|------------|--------------|------------|\n")
		for _, e := range r.TopEvents {
			sb.WriteString(fmt.Sprintf("| %s | %s/%s | %.2f | %.2f | %.2f | %s |\n",
				e.ID, e.CollateralSymbol, e.DebtSymbol,
				e.CollateralUsd, e.DebtUsd, e.ProfitUsd, e.Liquidator))
		}
	} else {
		sb.WriteString("No events in window.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
