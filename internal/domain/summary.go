package domain

// PoolSummary aggregates one pool's fee trajectory over a whole run.
type PoolSummary struct {
	PoolID string
	Days   int

	// Fee trajectory
	FeeMean   float64
	FeeStddev float64
	FeeMin    float64
	FeeMax    float64
	FinalFee  float64

	// Fee engine behavior
	FinalTargetRatio float64
	DaysAdjusted     int // days the fee actually moved
	MaxCounterStreak int
	ConvergedAtDay   int // first day of the trailing no-adjustment stretch, -1 if none

	// Economics
	TotalVolume     float64
	TotalFeesEarned float64
	TotalArbProfit  float64
	ArbTradeCount   int
}
