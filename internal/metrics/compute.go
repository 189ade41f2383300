// Package metrics aggregates day records into per-pool run summaries.
package metrics

import (
	"math"
	"sort"

	"amm-fee-lab/internal/domain"
)

// computeFromRecords calculates all summary metrics for one pool's day
// records. Records are sorted by day ascending before the
// order-dependent metrics (streaks, convergence day).
func computeFromRecords(poolID string, records []*domain.DayRecord) *domain.PoolSummary {
	n := len(records)
	if n == 0 {
		return &domain.PoolSummary{PoolID: poolID, ConvergedAtDay: -1}
	}

	sorted := make([]*domain.DayRecord, n)
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Day < sorted[j].Day
	})

	fees := make([]float64, n)
	for i, r := range sorted {
		fees[i] = r.FeeAfter
	}
	mean := computeMean(fees)

	summary := &domain.PoolSummary{
		PoolID: poolID,
		Days:   n,

		FeeMean:   mean,
		FeeStddev: computeStddev(fees, mean),
		FeeMin:    computeMin(fees),
		FeeMax:    computeMax(fees),
		FinalFee:  sorted[n-1].FeeAfter,

		FinalTargetRatio: sorted[n-1].TargetRatio,
		ConvergedAtDay:   -1,
	}

	for _, r := range sorted {
		summary.TotalVolume += r.Volume
		summary.TotalFeesEarned += r.FeesEarned
		summary.TotalArbProfit += r.ArbProfit
		if r.ArbExecuted {
			summary.ArbTradeCount++
		}
		if r.FeeAfter != r.FeeBefore {
			summary.DaysAdjusted++
		}
		if r.ConsecutiveCounter > summary.MaxCounterStreak {
			summary.MaxCounterStreak = r.ConsecutiveCounter
		}
	}

	summary.ConvergedAtDay = computeConvergenceDay(sorted)
	return summary
}

// computeConvergenceDay returns the first day of the trailing stretch
// of days without a fee adjustment, or -1 when the fee moved on the
// last recorded day.
func computeConvergenceDay(sorted []*domain.DayRecord) int {
	day := -1
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].FeeAfter != sorted[i].FeeBefore {
			break
		}
		day = sorted[i].Day
	}
	return day
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func computeMin(values []float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func computeMax(values []float64) float64 {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
