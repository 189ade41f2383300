// Package memory provides in-memory implementations of the result
// stores, used by the simulation driver and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"amm-fee-lab/internal/domain"
	"amm-fee-lab/internal/storage"
)

// DayRecordStore is an in-memory implementation of storage.DayRecordStore.
type DayRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DayRecord // keyed by record_id
}

// NewDayRecordStore creates a new in-memory day record store.
func NewDayRecordStore() *DayRecordStore {
	return &DayRecordStore{
		data: make(map[string]*domain.DayRecord),
	}
}

// Insert adds a record. Returns ErrDuplicateKey if record_id exists.
func (s *DayRecordStore) Insert(_ context.Context, r *domain.DayRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *r
	s.data[r.RecordID] = &stored
	return nil
}

// GetByPoolID returns all records for a pool ordered by day ascending.
func (s *DayRecordStore) GetByPoolID(_ context.Context, poolID string) ([]*domain.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*domain.DayRecord
	for _, r := range s.data {
		if r.PoolID == poolID {
			stored := *r
			records = append(records, &stored)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Day < records[j].Day
	})
	return records, nil
}

// PoolIDs returns the distinct pool IDs present, sorted.
func (s *DayRecordStore) PoolIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.data {
		seen[r.PoolID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ storage.DayRecordStore = (*DayRecordStore)(nil)
