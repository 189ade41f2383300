package metrics

import (
	"context"
	"errors"

	"amm-fee-lab/internal/domain"
	"amm-fee-lab/internal/storage"
)

// ErrNoRecords is returned when no day records are available for aggregation.
var ErrNoRecords = errors.New("no day records available for aggregation")

// Aggregator computes pool summaries from stored day records.
type Aggregator struct {
	dayRecordStore storage.DayRecordStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(dayRecordStore storage.DayRecordStore) *Aggregator {
	return &Aggregator{dayRecordStore: dayRecordStore}
}

// ComputeSummary computes the summary for one pool.
// Returns ErrNoRecords if the pool has no day records.
func (a *Aggregator) ComputeSummary(ctx context.Context, poolID string) (*domain.PoolSummary, error) {
	records, err := a.dayRecordStore.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return computeFromRecords(poolID, records), nil
}

// ComputeAllSummaries computes summaries for every pool present in the
// store, in sorted pool-ID order.
func (a *Aggregator) ComputeAllSummaries(ctx context.Context) ([]*domain.PoolSummary, error) {
	poolIDs, err := a.dayRecordStore.PoolIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(poolIDs) == 0 {
		return nil, ErrNoRecords
	}

	summaries := make([]*domain.PoolSummary, 0, len(poolIDs))
	for _, id := range poolIDs {
		s, err := a.ComputeSummary(ctx, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
