package domain

// LiquidationAnalysis is the enrichment payload the analyzer resolves for
// a stored record: execution latency plus symbol/decimals/price for both
// legs. Every field is nullable; a partial analysis is still written so
// the record keeps whatever could be resolved.
type LiquidationAnalysis struct {
	LatencySeconds     *float64
	CollateralSymbol   *string
	CollateralDecimals *int
	CollateralPriceUsd *float64
	DebtSymbol         *string
	DebtDecimals       *int
	DebtPriceUsd       *float64
}

// Apply copies the analysis onto a record.
func (a *LiquidationAnalysis) Apply(r *LiquidationRecord) {
	r.LatencySeconds = a.LatencySeconds
	r.CollateralSymbol = a.CollateralSymbol
	r.CollateralDecimals = a.CollateralDecimals
	r.CollateralPriceUsd = a.CollateralPriceUsd
	r.DebtSymbol = a.DebtSymbol
	r.DebtDecimals = a.DebtDecimals
	r.DebtPriceUsd = a.DebtPriceUsd
}
