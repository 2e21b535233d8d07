// Package pricing converts raw fixed-point token amounts to human units
// and USD values, and derives per-liquidation profit.
package pricing

import "math/big"

// Conversion is the priced form of a raw token amount.
// A zero Conversion means "unpriceable", not "worth zero": callers that
// must tell the two apart check the record's nullable inputs, not this.
type Conversion struct {
	HumanAmount float64
	UsdValue    float64
}

// ConvertAmount converts a raw integer amount (base-10 string, arbitrary
// precision) into human units and a USD value.
//
// The raw integer is split into whole part and fractional remainder with
// integer arithmetic first, then converted to float. Converting the full
// raw integer to float64 before dividing loses precision past 2^53 raw
// units, which 18-decimal tokens exceed at everyday USD values.
//
// Nil decimals or price yield a zero Conversion. Malformed raw strings and
// negative decimals are treated the same way (fail-safe); the conversion
// never errors.
func ConvertAmount(raw string, decimals *int, priceUsd *float64) Conversion {
	if decimals == nil || priceUsd == nil || *decimals < 0 {
		return Conversion{}
	}

	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return Conversion{}
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(*decimals)), nil)
	whole, remainder := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	wholeF, _ := new(big.Float).SetInt(whole).Float64()
	remainderF, _ := new(big.Float).SetInt(remainder).Float64()
	divisorF, _ := new(big.Float).SetInt(divisor).Float64()

	human := wholeF + remainderF/divisorF
	return Conversion{
		HumanAmount: human,
		UsdValue:    human * *priceUsd,
	}
}
