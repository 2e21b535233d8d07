package pricing

import "liquidation-radar/internal/domain"

// CollateralUsd returns the USD value of the collateral seized.
func CollateralUsd(r *domain.LiquidationRecord) float64 {
	return ConvertAmount(r.LiquidatedCollateralAmount, r.CollateralDecimals, r.CollateralPriceUsd).UsdValue
}

// DebtUsd returns the USD value of the debt repaid.
func DebtUsd(r *domain.LiquidationRecord) float64 {
	return ConvertAmount(r.DebtToCover, r.DebtDecimals, r.DebtPriceUsd).UsdValue
}

// ProfitUsd returns the liquidator's net USD profit for one liquidation:
// collateral seized minus debt repaid. Deterministic given the record;
// the aggregation engine and the table view both rely on computing the
// identical figure here.
func ProfitUsd(r *domain.LiquidationRecord) float64 {
	return CollateralUsd(r) - DebtUsd(r)
}
