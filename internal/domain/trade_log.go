package domain

// Trader kind constants.
const (
	TraderRetail      = "RETAIL"
	TraderWhale       = "WHALE"
	TraderArbitrageur = "ARBITRAGEUR"
)

// TradeLog records a single executed trade during a simulation run.
type TradeLog struct {
	TradeID    string // deterministic hash
	PoolID     string
	Day        int
	TraderKind string // RETAIL | WHALE | ARBITRAGEUR

	Direction string  // buy_a | sell_a
	AmountIn  float64
	AmountOut float64
	FeePaid   float64
	Slippage  float64
}
