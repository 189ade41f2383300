// Package storage defines the result-store interfaces the simulation
// writes to and the reporting layer reads from.
package storage

import (
	"context"

	"amm-fee-lab/internal/domain"
)

// DayRecordStore persists per-pool daily transition records.
type DayRecordStore interface {
	// Insert adds a record. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.DayRecord) error

	// GetByPoolID returns all records for a pool ordered by day ascending.
	GetByPoolID(ctx context.Context, poolID string) ([]*domain.DayRecord, error)

	// PoolIDs returns the distinct pool IDs present, sorted.
	PoolIDs(ctx context.Context) ([]string, error)
}

// TradeLogStore persists individual executed trades.
type TradeLogStore interface {
	// Insert adds a trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeLog) error

	// GetByPoolID returns all trades for a pool ordered by day ascending,
	// then by trade_id for deterministic output.
	GetByPoolID(ctx context.Context, poolID string) ([]*domain.TradeLog, error)

	// Count returns the total number of stored trades.
	Count(ctx context.Context) (int, error)
}
