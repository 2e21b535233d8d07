package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/observability"
	"liquidation-radar/internal/storage"
)

// LiquidationStore implements storage.LiquidationStore using PostgreSQL.
type LiquidationStore struct {
	pool *Pool
}

// NewLiquidationStore creates a new LiquidationStore.
func NewLiquidationStore(pool *Pool) *LiquidationStore {
	return &LiquidationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LiquidationStore = (*LiquidationStore)(nil)

const liquidationColumns = `
	id, user_address, liquidator, collateral_asset, debt_asset,
	debt_to_cover, liquidated_collateral_amount,
	block_timestamp, block_number, tx_hash,
	latency_seconds,
	collateral_symbol, collateral_decimals, collateral_price_usd,
	debt_symbol, debt_decimals, debt_price_usd,
	created_at
`

const insertLiquidation = `
	INSERT INTO liquidations (
		id, user_address, liquidator, collateral_asset, debt_asset,
		debt_to_cover, liquidated_collateral_amount,
		block_timestamp, block_number, tx_hash,
		latency_seconds,
		collateral_symbol, collateral_decimals, collateral_price_usd,
		debt_symbol, debt_decimals, debt_price_usd,
		created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *LiquidationStore) Insert(ctx context.Context, r *domain.LiquidationRecord) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	start := time.Now()
	_, err := s.pool.Exec(ctx, insertLiquidation, insertArgs(r)...)
	observability.RecordDBQuery("postgres", "insert_liquidation", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert liquidation: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically inside one transaction.
// Fails the entire batch on any duplicate.
func (s *LiquidationStore) InsertBulk(ctx context.Context, records []*domain.LiquidationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, insertLiquidation, insertArgs(r)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert liquidation %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertArgs(r *domain.LiquidationRecord) []any {
	createdAt := r.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}
	return []any{
		r.ID, r.User, r.Liquidator, r.CollateralAsset, r.DebtAsset,
		r.DebtToCover, r.LiquidatedCollateralAmount,
		r.BlockTimestamp, r.BlockNumber, r.TxHash,
		r.LatencySeconds,
		r.CollateralSymbol, r.CollateralDecimals, r.CollateralPriceUsd,
		r.DebtSymbol, r.DebtDecimals, r.DebtPriceUsd,
		createdAt,
	}
}

// GetByID retrieves a record by its id. Returns ErrNotFound if not exists.
func (s *LiquidationStore) GetByID(ctx context.Context, id string) (*domain.LiquidationRecord, error) {
	query := `SELECT ` + liquidationColumns + ` FROM liquidations WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	r, err := scanLiquidation(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get liquidation by id: %w", err)
	}
	return r, nil
}

// List retrieves up to limit records ordered by block timestamp DESC plus the total count.
func (s *LiquidationStore) List(ctx context.Context, limit, offset int) ([]*domain.LiquidationRecord, int, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, storage.ErrInvalidInput
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM liquidations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count liquidations: %w", err)
	}

	query := `SELECT ` + liquidationColumns + `
		FROM liquidations
		ORDER BY block_timestamp DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list liquidations: %w", err)
	}
	defer rows.Close()

	records, err := collectLiquidations(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetByTimeRange retrieves records within [start, end] inclusive, ordered by block timestamp ASC.
func (s *LiquidationStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.LiquidationRecord, error) {
	query := `SELECT ` + liquidationColumns + `
		FROM liquidations
		WHERE block_timestamp >= $1 AND block_timestamp <= $2
		ORDER BY block_timestamp ASC, id ASC`

	began := time.Now()
	rows, err := s.pool.Query(ctx, query, start, end)
	observability.RecordDBQuery("postgres", "get_by_time_range", time.Since(began).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get liquidations by time range: %w", err)
	}
	defer rows.Close()

	return collectLiquidations(rows)
}

// Count returns the total number of stored records.
func (s *LiquidationStore) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM liquidations`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count liquidations: %w", err)
	}
	return total, nil
}

// UpdateAnalysis sets the enrichment fields on an existing record.
func (s *LiquidationStore) UpdateAnalysis(ctx context.Context, id string, a *domain.LiquidationAnalysis) error {
	if id == "" || a == nil {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE liquidations SET
			latency_seconds = $2,
			collateral_symbol = $3,
			collateral_decimals = $4,
			collateral_price_usd = $5,
			debt_symbol = $6,
			debt_decimals = $7,
			debt_price_usd = $8
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		id,
		a.LatencySeconds,
		a.CollateralSymbol, a.CollateralDecimals, a.CollateralPriceUsd,
		a.DebtSymbol, a.DebtDecimals, a.DebtPriceUsd,
	)
	if err != nil {
		return fmt.Errorf("update liquidation analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanLiquidation scans one row into a record.
func scanLiquidation(row pgx.Row) (*domain.LiquidationRecord, error) {
	var r domain.LiquidationRecord
	err := row.Scan(
		&r.ID, &r.User, &r.Liquidator, &r.CollateralAsset, &r.DebtAsset,
		&r.DebtToCover, &r.LiquidatedCollateralAmount,
		&r.BlockTimestamp, &r.BlockNumber, &r.TxHash,
		&r.LatencySeconds,
		&r.CollateralSymbol, &r.CollateralDecimals, &r.CollateralPriceUsd,
		&r.DebtSymbol, &r.DebtDecimals, &r.DebtPriceUsd,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func collectLiquidations(rows pgx.Rows) ([]*domain.LiquidationRecord, error) {
	var records []*domain.LiquidationRecord
	for rows.Next() {
		r, err := scanLiquidation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan liquidation: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidations: %w", err)
	}
	return records, nil
}
