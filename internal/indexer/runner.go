package indexer

import (
	"context"
	"errors"
	"log"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/observability"
	"liquidation-radar/internal/storage"
)

// Enricher fills in token metadata, oracle prices, and latency for a record.
// A nil result means enrichment produced nothing; the record is stored as-is.
type Enricher interface {
	Enrich(ctx context.Context, r *domain.LiquidationRecord) *domain.LiquidationAnalysis
}

// Runner orchestrates continuous liquidation ingestion.
type Runner struct {
	source    *WSLiquidationSource
	store     storage.LiquidationStore
	enricher  Enricher
	publisher EventPublisher
	logger    *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source    *WSLiquidationSource
	Store     storage.LiquidationStore
	Enricher  Enricher       // Optional
	Publisher EventPublisher // Optional
	Logger    *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		source:    opts.Source,
		store:     opts.Store,
		enricher:  opts.Enricher,
		publisher: opts.Publisher,
		logger:    logger,
	}
}

// Run starts continuous ingestion. It blocks until context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Println("Starting indexer runner...")

	recordsCh, err := r.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	r.logger.Println("Subscribed to liquidation events")

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Runner stopping...")
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				r.logger.Println("Liquidation channel closed")
				return errors.New("liquidation channel closed")
			}
			r.processRecord(ctx, record)
		}
	}
}

// processRecord enriches, stores, and publishes a single record.
func (r *Runner) processRecord(ctx context.Context, record *domain.LiquidationRecord) {
	observability.RecordLiquidationProcessed()
	observability.DefaultMetrics.LastBlockSeen.Set(float64(record.BlockNumber))

	if r.enricher != nil {
		start := time.Now()
		if analysis := r.enricher.Enrich(ctx, record); analysis != nil {
			analysis.Apply(record)
			observability.RecordEnrichment(time.Since(start).Seconds())
		}
	}

	if err := r.store.Insert(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Resubscription after reconnect can replay events
			observability.RecordDuplicateSkipped()
			r.logger.Printf("Skipping duplicate record %s", record.ID)
			return
		}
		observability.RecordProcessingError("store")
		r.logger.Printf("Failed to store record %s: %v", record.ID, err)
		return
	}

	observability.RecordLiquidationStored()
	observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
	r.logger.Printf("Stored liquidation %s: user=%s collateral=%s debt=%s block=%d",
		record.ID, record.User, record.CollateralAsset, record.DebtAsset, record.BlockNumber)

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, record); err != nil {
			observability.RecordProcessingError("publish")
			r.logger.Printf("Failed to publish record %s: %v", record.ID, err)
		}
	}
}
