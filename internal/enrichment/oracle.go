package enrichment

import (
	"context"
	"math/big"
	"strings"

	"liquidation-radar/internal/ethereum"
)

// Aave v3 oracle on Ethereum mainnet. Prices come back with 8 decimals.
const (
	AaveOracleAddress     = "0x54586be62e3c3580375ae3723c145253060ca0c2"
	selectorGetAssetPrice = "0xb3596f07"
	oraclePriceDecimals   = 1e8
)

// OracleSource resolves asset USD prices from the Aave price oracle.
type OracleSource struct {
	rpc    ethereum.RPCClient
	oracle string
}

// NewOracleSource creates a new oracle source. oracle defaults to the
// mainnet Aave oracle when empty.
func NewOracleSource(rpc ethereum.RPCClient, oracle string) *OracleSource {
	if oracle == "" {
		oracle = AaveOracleAddress
	}
	return &OracleSource{rpc: rpc, oracle: oracle}
}

// Price returns the asset's USD price, or nil if the lookup failed.
func (s *OracleSource) Price(ctx context.Context, asset string) *float64 {
	data := selectorGetAssetPrice + padAddress(asset)

	raw, err := s.rpc.CallContract(ctx, s.oracle, data)
	if err != nil {
		return nil
	}

	price, err := ethereum.HexToBig(raw)
	if err != nil {
		return nil
	}

	f, _ := new(big.Float).SetInt(price).Float64()
	usd := f / oraclePriceDecimals
	return &usd
}

// padAddress left-pads an address to a 32-byte call argument.
func padAddress(addr string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(addr, "0x"))
	return strings.Repeat("0", 64-len(trimmed)) + trimmed
}
