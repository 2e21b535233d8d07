package clickhouse

import (
	"context"
	"fmt"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/observability"
	"liquidation-radar/internal/storage"
)

// DailyStatStore implements storage.DailyStatStore using ClickHouse.
type DailyStatStore struct {
	conn *Conn
}

// NewDailyStatStore creates a new DailyStatStore.
func NewDailyStatStore(conn *Conn) *DailyStatStore {
	return &DailyStatStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyStatStore = (*DailyStatStore)(nil)

// InsertBulk appends bucket rows for one snapshot via a prepared batch.
func (s *DailyStatStore) InsertBulk(ctx context.Context, rows []*domain.DailyStatRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_stats (
			snapshot_id, date, count,
			total_profit_usd, total_debt_usd, total_collateral_usd,
			avg_latency_seconds, computed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		if r == nil || r.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			r.SnapshotID, r.Date, uint32(r.Count),
			r.TotalProfitUsd, r.TotalDebtUsd, r.TotalCollateralUsd,
			r.AvgLatencySeconds, r.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	start := time.Now()
	err = batch.Send()
	observability.RecordDBQuery("clickhouse", "insert_daily_stats", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySnapshot retrieves all rows for a snapshot, ordered by date ASC.
func (s *DailyStatStore) GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.DailyStatRow, error) {
	query := `
		SELECT snapshot_id, date, count,
			total_profit_usd, total_debt_usd, total_collateral_usd,
			avg_latency_seconds, computed_at
		FROM daily_stats
		WHERE snapshot_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var result []*domain.DailyStatRow
	for rows.Next() {
		var (
			r     domain.DailyStatRow
			count uint32
		)
		err := rows.Scan(
			&r.SnapshotID, &r.Date, &count,
			&r.TotalProfitUsd, &r.TotalDebtUsd, &r.TotalCollateralUsd,
			&r.AvgLatencySeconds, &r.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		r.Count = int(count)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily stats: %w", err)
	}
	return result, nil
}
