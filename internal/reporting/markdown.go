package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Adaptive Fee Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Pools: %d\n\n", r.RunID, r.PoolCount))

	// Run Summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Days Simulated | %d |\n", r.RunSummary.Days))
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.RunSummary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Total Volume | %.2f |\n", r.RunSummary.TotalVolume))
	sb.WriteString(fmt.Sprintf("| Total Fees Earned | %.4f |\n", r.RunSummary.TotalFeesEarned))
	sb.WriteString(fmt.Sprintf("| Total Arbitrage Profit | %.4f |\n", r.RunSummary.TotalArbProfit))
	sb.WriteString(fmt.Sprintf("| Arbitrage Trades | %d |\n", r.RunSummary.ArbTradeCount))
	sb.WriteString("\n")

	// Per-pool fee trajectories
	sb.WriteString("## Fee Trajectories\n\n")
	if len(r.PoolSummaries) > 0 {
		sb.WriteString("| Pool | Days | Mean | Stddev | Min | Max | Final | Adjusted | MaxStreak | Converged |\n")
		sb.WriteString("|------|------|------|--------|-----|-----|-------|----------|-----------|----------|\n")
		for _, s := range r.PoolSummaries {
			converged := "no"
			if s.ConvergedAtDay >= 0 {
				converged = fmt.Sprintf("day %d", s.ConvergedAtDay)
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %.6f | %.6f | %.6f | %.6f | %.6f | %d | %d | %s |\n",
				s.PoolID, s.Days, s.FeeMean, s.FeeStddev, s.FeeMin, s.FeeMax,
				s.FinalFee, s.DaysAdjusted, s.MaxCounterStreak, converged))
		}
	} else {
		sb.WriteString("No pool summaries available.\n")
	}
	sb.WriteString("\n")

	// Economics
	sb.WriteString("## Pool Economics\n\n")
	if len(r.PoolSummaries) > 0 {
		sb.WriteString("| Pool | Volume | Fees Earned | Arb Profit | Arb Trades | Target Ratio |\n")
		sb.WriteString("|------|--------|-------------|------------|------------|-------------|\n")
		for _, s := range r.PoolSummaries {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.4f | %.4f | %d | %.6f |\n",
				s.PoolID, s.TotalVolume, s.TotalFeesEarned, s.TotalArbProfit,
				s.ArbTradeCount, s.FinalTargetRatio))
		}
	} else {
		sb.WriteString("No pool economics available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
