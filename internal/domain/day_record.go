// Package domain holds the plain record types shared across the
// simulation pipeline.
package domain

// DayRecord captures one pool's state transition for one simulated day.
type DayRecord struct {
	RecordID string // deterministic hash
	PoolID   string
	Day      int

	// Daily inputs to the fee engine
	Volume float64 // realized volume, asset B terms
	TVL    float64 // both reserves valued at the external price

	// Fee engine transition
	FeeBefore          float64
	FeeAfter           float64
	TargetRatio        float64
	ConsecutiveCounter int
	Direction          int // -1, 0, +1

	// Arbitrage interaction
	ArbProfit   float64 // expected profit of the executed opportunity, asset B
	ArbExecuted bool

	// End-of-day pool snapshot
	ReserveA      float64
	ReserveB      float64
	SpotPrice     float64
	ExternalPrice float64
	FeesEarned    float64 // fees retained by the pool this day, asset B terms
}
