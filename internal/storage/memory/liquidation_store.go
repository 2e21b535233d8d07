package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/storage"
)

// LiquidationStore is an in-memory implementation of storage.LiquidationStore.
type LiquidationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LiquidationRecord // keyed by record id
}

// NewLiquidationStore creates a new in-memory liquidation store.
func NewLiquidationStore() *LiquidationStore {
	return &LiquidationStore{
		data: make(map[string]*domain.LiquidationRecord),
	}
}

// Compile-time interface check.
var _ storage.LiquidationStore = (*LiquidationStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *LiquidationStore) Insert(_ context.Context, r *domain.LiquidationRecord) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *r
	if cp.CreatedAt == 0 {
		cp.CreatedAt = time.Now().UnixMilli()
	}
	s.data[r.ID] = &cp
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *LiquidationStore) InsertBulk(_ context.Context, records []*domain.LiquidationRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[r.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batch[r.ID] = struct{}{}
	}

	now := time.Now().UnixMilli()
	for _, r := range records {
		cp := *r
		if cp.CreatedAt == 0 {
			cp.CreatedAt = now
		}
		s.data[r.ID] = &cp
	}
	return nil
}

// GetByID retrieves a record by its id. Returns ErrNotFound if not exists.
func (s *LiquidationStore) GetByID(_ context.Context, id string) (*domain.LiquidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// List retrieves up to limit records ordered by block timestamp DESC plus the total count.
func (s *LiquidationStore) List(_ context.Context, limit, offset int) ([]*domain.LiquidationRecord, int, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.LiquidationRecord, 0, len(s.data))
	for _, r := range s.data {
		cp := *r
		all = append(all, &cp)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].BlockTimestamp != all[j].BlockTimestamp {
			return all[i].BlockTimestamp > all[j].BlockTimestamp
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	if offset >= total {
		return []*domain.LiquidationRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// GetByTimeRange retrieves records within [start, end] inclusive, ordered by block timestamp ASC.
func (s *LiquidationStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.LiquidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidationRecord
	for _, r := range s.data {
		if r.BlockTimestamp >= start && r.BlockTimestamp <= end {
			cp := *r
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlockTimestamp != result[j].BlockTimestamp {
			return result[i].BlockTimestamp < result[j].BlockTimestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Count returns the total number of stored records.
func (s *LiquidationStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// UpdateAnalysis sets the enrichment fields on an existing record.
func (s *LiquidationStore) UpdateAnalysis(_ context.Context, id string, a *domain.LiquidationAnalysis) error {
	if id == "" || a == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Apply(r)
	return nil
}
