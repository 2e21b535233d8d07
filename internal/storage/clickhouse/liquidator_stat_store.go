package clickhouse

import (
	"context"
	"fmt"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/observability"
	"liquidation-radar/internal/storage"
)

// LiquidatorStatStore implements storage.LiquidatorStatStore using ClickHouse.
type LiquidatorStatStore struct {
	conn *Conn
}

// NewLiquidatorStatStore creates a new LiquidatorStatStore.
func NewLiquidatorStatStore(conn *Conn) *LiquidatorStatStore {
	return &LiquidatorStatStore{conn: conn}
}

// Compile-time interface check.
var _ storage.LiquidatorStatStore = (*LiquidatorStatStore)(nil)

// InsertBulk appends leaderboard rows for one snapshot via a prepared batch.
func (s *LiquidatorStatStore) InsertBulk(ctx context.Context, rows []*domain.LiquidatorStatRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO liquidator_stats (
			snapshot_id, liquidator, total_profit_usd,
			avg_latency_seconds, count, computed_at
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
			r.SnapshotID, r.Liquidator, r.TotalProfitUsd,
			r.AvgLatencySeconds, uint32(r.Count), r.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	start := time.Now()
	err = batch.Send()
	observability.RecordDBQuery("clickhouse", "insert_liquidator_stats", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySnapshot retrieves all rows for a snapshot, ordered by total profit DESC.
func (s *LiquidatorStatStore) GetBySnapshot(ctx context.Context, snapshotID string) ([]*domain.LiquidatorStatRow, error) {
	query := `
		SELECT snapshot_id, liquidator, total_profit_usd,
			avg_latency_seconds, count, computed_at
		FROM liquidator_stats
		WHERE snapshot_id = ?
		ORDER BY total_profit_usd DESC, liquidator ASC
	`

	rows, err := s.conn.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query liquidator stats: %w", err)
	}
	defer rows.Close()

	var result []*domain.LiquidatorStatRow
	for rows.Next() {
		var (
			r     domain.LiquidatorStatRow
			count uint32
		)
		err := rows.Scan(
			&r.SnapshotID, &r.Liquidator, &r.TotalProfitUsd,
			&r.AvgLatencySeconds, &count, &r.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan liquidator stat: %w", err)
		}
		r.Count = int(count)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidator stats: %w", err)
	}
	return result, nil
}
