package storage

import (
	"context"

	"liquidation-radar/internal/domain"
)

// LiquidationStore provides access to liquidations storage.
type LiquidationStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, r *domain.LiquidationRecord) error

	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.LiquidationRecord) error

	// GetByID retrieves a record by its id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.LiquidationRecord, error)

	// List retrieves up to limit records ordered by block timestamp DESC,
	// skipping offset, plus the total record count.
	List(ctx context.Context, limit, offset int) ([]*domain.LiquidationRecord, int, error)

	// GetByTimeRange retrieves records with block timestamp within [start, end]
	// (inclusive, Unix seconds), ordered by block timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.LiquidationRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)

	// UpdateAnalysis sets the enrichment fields (latency, symbols, decimals,
	// prices) on an existing record. Returns ErrNotFound if the id does not
	// exist. Nil fields on the update are written as NULL.
	UpdateAnalysis(ctx context.Context, id string, a *domain.LiquidationAnalysis) error
}

// DailyStatStore archives time-series buckets produced by a snapshot run.
type DailyStatStore interface {
	// InsertBulk appends bucket rows for one snapshot.
	InsertBulk(ctx context.Context, rows []*domain.DailyStatRow) error

	// GetBySnapshot retrieves all rows for a snapshot, ordered by date ASC.
	GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.DailyStatRow, error)
}

// LiquidatorStatStore archives leaderboard entries produced by a snapshot run.
type LiquidatorStatStore interface {
	// InsertBulk appends leaderboard rows for one snapshot.
	InsertBulk(ctx context.Context, rows []*domain.LiquidatorStatRow) error

	// GetBySnapshot retrieves all rows for a snapshot, ordered by total profit DESC.
	GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.LiquidatorStatRow, error)
}
