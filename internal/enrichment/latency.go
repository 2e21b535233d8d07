package enrichment

import (
	"context"
	"math/big"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/ethereum"
	"liquidation-radar/internal/indexer"
)

// getUserAccountData(address) returns six words; healthFactor is the last,
// expressed in wad.
const selectorGetUserAccountData = "0xbf92857c"

// DefaultMaxLookback bounds how many blocks before the liquidation the
// prober searches for the moment the position became unhealthy.
const DefaultMaxLookback = 7200 // ~24h of mainnet blocks

var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// LatencyProber measures how long a position stayed liquidatable before
// the liquidation landed. Needs an archive-capable RPC endpoint.
type LatencyProber struct {
	rpc         ethereum.RPCClient
	pool        string
	maxLookback uint64
}

// NewLatencyProber creates a new prober. pool defaults to the mainnet
// Aave Pool when empty.
func NewLatencyProber(rpc ethereum.RPCClient, pool string, maxLookback uint64) *LatencyProber {
	if pool == "" {
		pool = indexer.AavePoolAddress
	}
	if maxLookback == 0 {
		maxLookback = DefaultMaxLookback
	}
	return &LatencyProber{rpc: rpc, pool: pool, maxLookback: maxLookback}
}

// Probe returns the seconds between the position turning unhealthy and the
// liquidation, or nil when it cannot be determined.
func (p *LatencyProber) Probe(ctx context.Context, r *domain.LiquidationRecord) *float64 {
	liqBlock := uint64(r.BlockNumber)
	if liqBlock <= 1 {
		return nil
	}

	// Healthy right before the liquidation block means the position
	// turned unhealthy in the same block: zero latency.
	unhealthy, err := p.unhealthyAt(ctx, r.User, liqBlock-1)
	if err != nil {
		return nil
	}
	if !unhealthy {
		zero := 0.0
		return &zero
	}

	low := uint64(1)
	if liqBlock > p.maxLookback {
		low = liqBlock - p.maxLookback
	}

	// Already unhealthy at the window edge: the true start is out of reach.
	unhealthy, err = p.unhealthyAt(ctx, r.User, low)
	if err != nil {
		return nil
	}
	if unhealthy {
		return nil
	}

	// Binary search the first unhealthy block in (low, liqBlock-1].
	// Invariant: healthy at lo, unhealthy at hi.
	lo, hi := low, liqBlock-1
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		unhealthy, err := p.unhealthyAt(ctx, r.User, mid)
		if err != nil {
			return nil
		}
		if unhealthy {
			hi = mid
		} else {
			lo = mid
		}
	}

	block, err := p.rpc.GetBlockByNumber(ctx, hi)
	if err != nil || block == nil {
		return nil
	}

	latency := float64(r.BlockTimestamp - block.Timestamp)
	return &latency
}

// unhealthyAt reports whether the user's health factor was below 1 at block.
func (p *LatencyProber) unhealthyAt(ctx context.Context, user string, block uint64) (bool, error) {
	data := selectorGetUserAccountData + padAddress(user)

	raw, err := p.rpc.CallContractAt(ctx, p.pool, data, block)
	if err != nil {
		return false, err
	}

	word, err := ethereum.DataWord(raw, 5)
	if err != nil {
		return false, err
	}
	hf, err := ethereum.WordToBig(word)
	if err != nil {
		return false, err
	}

	return hf.Cmp(wad) < 0, nil
}
