package enrichment

import (
	"context"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/ethereum"
	"liquidation-radar/internal/observability"
)

// Enricher resolves metadata, prices, and latency for liquidation records.
type Enricher struct {
	metadata *ReserveMetadataSource
	oracle   *OracleSource
	prober   *LatencyProber
}

// Options configures an Enricher. Pool and Oracle default to the mainnet
// Aave v3 addresses when empty.
type Options struct {
	RPC         ethereum.RPCClient
	Pool        string
	Oracle      string
	MaxLookback uint64
	// ProbeLatency enables the health-factor latency probe, which needs
	// an archive node.
	ProbeLatency bool
}

// New creates a new Enricher.
func New(opts Options) *Enricher {
	e := &Enricher{
		metadata: NewReserveMetadataSource(opts.RPC),
		oracle:   NewOracleSource(opts.RPC, opts.Oracle),
	}
	if opts.ProbeLatency {
		e.prober = NewLatencyProber(opts.RPC, opts.Pool, opts.MaxLookback)
	}
	return e
}

// Enrich resolves everything it can for the record. Stages that fail leave
// their fields nil.
func (e *Enricher) Enrich(ctx context.Context, r *domain.LiquidationRecord) *domain.LiquidationAnalysis {
	analysis := &domain.LiquidationAnalysis{}

	collateral := e.metadata.Lookup(ctx, r.CollateralAsset)
	analysis.CollateralSymbol = collateral.Symbol
	analysis.CollateralDecimals = collateral.Decimals
	if collateral.Symbol == nil || collateral.Decimals == nil {
		observability.RecordEnrichmentFailure("collateral_metadata")
	}

	debt := e.metadata.Lookup(ctx, r.DebtAsset)
	analysis.DebtSymbol = debt.Symbol
	analysis.DebtDecimals = debt.Decimals
	if debt.Symbol == nil || debt.Decimals == nil {
		observability.RecordEnrichmentFailure("debt_metadata")
	}

	analysis.CollateralPriceUsd = e.oracle.Price(ctx, r.CollateralAsset)
	if analysis.CollateralPriceUsd == nil {
		observability.RecordEnrichmentFailure("collateral_price")
	}

	analysis.DebtPriceUsd = e.oracle.Price(ctx, r.DebtAsset)
	if analysis.DebtPriceUsd == nil {
		observability.RecordEnrichmentFailure("debt_price")
	}

	if e.prober != nil {
		analysis.LatencySeconds = e.prober.Probe(ctx, r)
		if analysis.LatencySeconds == nil {
			observability.RecordEnrichmentFailure("latency")
		}
	}

	return analysis
}
