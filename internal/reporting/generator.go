package reporting

import (
	"context"
	"time"

	"amm-fee-lab/internal/metrics"
	"amm-fee-lab/internal/storage"
)

// Generator produces reports from stored run data.
type Generator struct {
	aggregator *metrics.Aggregator
	tradeLogs  storage.TradeLogStore
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(dayRecords storage.DayRecordStore, tradeLogs storage.TradeLogStore) *Generator {
	return &Generator{
		aggregator: metrics.NewAggregator(dayRecords),
		tradeLogs:  tradeLogs,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for one run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	summaries, err := g.aggregator.ComputeAllSummaries(ctx)
	if err != nil {
		return nil, err
	}

	var run RunSummary
	for _, s := range summaries {
		if s.Days > run.Days {
			run.Days = s.Days
		}
		run.TotalVolume += s.TotalVolume
		run.TotalFeesEarned += s.TotalFeesEarned
		run.TotalArbProfit += s.TotalArbProfit
		run.ArbTradeCount += s.ArbTradeCount
	}

	if g.tradeLogs != nil {
		n, err := g.tradeLogs.Count(ctx)
		if err != nil {
			return nil, err
		}
		run.TotalTrades = n
	}

	return &Report{
		GeneratedAt:   g.now(),
		RunID:         runID,
		PoolCount:     len(summaries),
		RunSummary:    run,
		PoolSummaries: summaries,
	}, nil
}
