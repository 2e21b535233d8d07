package domain

// LiquidationRecord represents one LiquidationCall event observed on-chain.
// Corresponds to the liquidations table in PostgreSQL. The raw amount fields
// stay decimal strings end to end: 18-decimal tokens overflow int64 routinely.
type LiquidationRecord struct {
	ID              string `json:"id"`               // "<tx_hash>-<log_index>", unique per event
	User            string `json:"user"`             // borrower address, 0x-hex
	Liquidator      string `json:"liquidator"`       // liquidator address, 0x-hex
	CollateralAsset string `json:"collateral_asset"` // collateral token address, 0x-hex
	DebtAsset       string `json:"debt_asset"`       // debt token address, 0x-hex

	DebtToCover                string `json:"debt_to_cover"`                // raw debt amount, base-10 integer string
	LiquidatedCollateralAmount string `json:"liquidated_collateral_amount"` // raw collateral amount, base-10 integer string

	BlockTimestamp int64  `json:"block_timestamp"` // Unix seconds
	BlockNumber    int64  `json:"block_number"`    // block the event was emitted in
	TxHash         string `json:"tx_hash"`         // transaction hash, 0x-hex

	// Enrichment fields, nil until the analyzer has resolved them.
	// Nil decimals or price means the leg cannot be priced; it contributes
	// zero to USD sums but the record still counts.
	LatencySeconds     *float64 `json:"latency_seconds"` // seconds liquidatable before execution
	CollateralSymbol   *string  `json:"collateral_symbol"`
	CollateralDecimals *int     `json:"collateral_decimals"`
	CollateralPriceUsd *float64 `json:"collateral_price_usd"`
	DebtSymbol         *string  `json:"debt_symbol"`
	DebtDecimals       *int     `json:"debt_decimals"`
	DebtPriceUsd       *float64 `json:"debt_price_usd"`

	CreatedAt int64 `json:"created_at"` // record creation timestamp (ms)
}

// CollateralPriceable reports whether the collateral leg can be converted to USD.
func (r *LiquidationRecord) CollateralPriceable() bool {
	return r.CollateralDecimals != nil && r.CollateralPriceUsd != nil
}

// DebtPriceable reports whether the debt leg can be converted to USD.
func (r *LiquidationRecord) DebtPriceable() bool {
	return r.DebtDecimals != nil && r.DebtPriceUsd != nil
}
