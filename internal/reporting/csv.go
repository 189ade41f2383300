package reporting

import (
	"fmt"
	"strings"

	"amm-fee-lab/internal/domain"
)

// RenderCSV renders pool summaries as a CSV string.
func RenderCSV(summaries []*domain.PoolSummary) string {
	var sb strings.Builder

	// Header
	sb.WriteString("pool_id,days,fee_mean,fee_stddev,fee_min,fee_max,final_fee,")
	sb.WriteString("final_target_ratio,days_adjusted,max_counter_streak,converged_at_day,")
	sb.WriteString("total_volume,total_fees_earned,total_arb_profit,arb_trade_count\n")

	// Rows
	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("%s,%d,%.8f,%.8f,%.8f,%.8f,%.8f,%.8f,%d,%d,%d,%.6f,%.6f,%.6f,%d\n",
			s.PoolID,
			s.Days,
			s.FeeMean,
			s.FeeStddev,
			s.FeeMin,
			s.FeeMax,
			s.FinalFee,
			s.FinalTargetRatio,
			s.DaysAdjusted,
			s.MaxCounterStreak,
			s.ConvergedAtDay,
			s.TotalVolume,
			s.TotalFeesEarned,
			s.TotalArbProfit,
			s.ArbTradeCount,
		))
	}

	return sb.String()
}
