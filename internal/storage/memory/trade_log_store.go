package memory

import (
	"context"
	"sort"
	"sync"

	"amm-fee-lab/internal/domain"
	"amm-fee-lab/internal/storage"
)

// TradeLogStore is an in-memory implementation of storage.TradeLogStore.
type TradeLogStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeLog // keyed by trade_id
}

// NewTradeLogStore creates a new in-memory trade log store.
func NewTradeLogStore() *TradeLogStore {
	return &TradeLogStore{
		data: make(map[string]*domain.TradeLog),
	}
}

// Insert adds a trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeLogStore) Insert(_ context.Context, t *domain.TradeLog) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *t
	s.data[t.TradeID] = &stored
	return nil
}

// GetByPoolID returns all trades for a pool ordered by day ascending,
// then by trade_id.
func (s *TradeLogStore) GetByPoolID(_ context.Context, poolID string) ([]*domain.TradeLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trades []*domain.TradeLog
	for _, t := range s.data {
		if t.PoolID == poolID {
			stored := *t
			trades = append(trades, &stored)
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Day != trades[j].Day {
			return trades[i].Day < trades[j].Day
		}
		return trades[i].TradeID < trades[j].TradeID
	})
	return trades, nil
}

// Count returns the total number of stored trades.
func (s *TradeLogStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

var _ storage.TradeLogStore = (*TradeLogStore)(nil)
