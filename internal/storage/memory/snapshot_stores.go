package memory

import (
	"context"
	"sort"
	"sync"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/storage"
)

// DailyStatStore is an in-memory implementation of storage.DailyStatStore.
type DailyStatStore struct {
	mu   sync.RWMutex
	rows []*domain.DailyStatRow
}

// NewDailyStatStore creates a new in-memory daily stat store.
func NewDailyStatStore() *DailyStatStore {
	return &DailyStatStore{}
}

var _ storage.DailyStatStore = (*DailyStatStore)(nil)

// InsertBulk appends bucket rows for one snapshot.
func (s *DailyStatStore) InsertBulk(_ context.Context, rows []*domain.DailyStatRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		if r == nil || r.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		cp := *r
		s.rows = append(s.rows, &cp)
	}
	return nil
}

// GetBySnapshot retrieves all rows for a snapshot, ordered by date ASC.
func (s *DailyStatStore) GetBySnapshot(_ context.Context, snapshotID string) ([]*domain.DailyStatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyStatRow
	for _, r := range s.rows {
		if r.SnapshotID == snapshotID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

// LiquidatorStatStore is an in-memory implementation of storage.LiquidatorStatStore.
type LiquidatorStatStore struct {
	mu   sync.RWMutex
	rows []*domain.LiquidatorStatRow
}

// NewLiquidatorStatStore creates a new in-memory liquidator stat store.
func NewLiquidatorStatStore() *LiquidatorStatStore {
	return &LiquidatorStatStore{}
}

var _ storage.LiquidatorStatStore = (*LiquidatorStatStore)(nil)

// InsertBulk appends leaderboard rows for one snapshot.
func (s *LiquidatorStatStore) InsertBulk(_ context.Context, rows []*domain.LiquidatorStatRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		if r == nil || r.SnapshotID == "" {
			return storage.ErrInvalidInput
		}
		cp := *r
		s.rows = append(s.rows, &cp)
	}
	return nil
}

// GetBySnapshot retrieves all rows for a snapshot, ordered by total profit DESC.
func (s *LiquidatorStatStore) GetBySnapshot(_ context.Context, snapshotID string) ([]*domain.LiquidatorStatRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidatorStatRow
	for _, r := range s.rows {
		if r.SnapshotID == snapshotID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalProfitUsd != result[j].TotalProfitUsd {
			return result[i].TotalProfitUsd > result[j].TotalProfitUsd
		}
		return result[i].Liquidator < result[j].Liquidator
	})
	return result, nil
}
