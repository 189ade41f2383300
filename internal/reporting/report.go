// Package reporting renders run results as CSV and Markdown.
package reporting

import (
	"time"

	"amm-fee-lab/internal/domain"
)

// Report is the complete output of one simulation run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	PoolCount   int

	// Run-wide aggregates
	RunSummary RunSummary

	// Per-pool summaries (sorted by pool_id)
	PoolSummaries []*domain.PoolSummary
}

// RunSummary contains run-wide aggregates across all pools.
type RunSummary struct {
	Days            int // longest pool trajectory
	TotalTrades     int
	TotalVolume     float64
	TotalFeesEarned float64
	TotalArbProfit  float64
	ArbTradeCount   int
}
