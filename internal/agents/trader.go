// Package agents implements the trader and liquidity-provider
// populations that generate daily order flow for the simulation.
// All randomness comes from injected seeded sources so runs replay
// identically.
package agents

import (
	"math"
	"math/rand"

	"amm-fee-lab/internal/amm"
	"amm-fee-lab/internal/domain"
)

// TraderProfile configures one trader's sizing and activity behavior.
type TraderProfile struct {
	Kind         string  // domain.TraderRetail | domain.TraderWhale | domain.TraderArbitrageur
	AvgTradeSize float64 // average trade size, asset B terms
	TradeSizeStd float64 // lognormal sigma
	MinTradeSize float64
	MaxTradeSize float64
	TradeProb    float64 // per-day probability of trading
}

// Predefined trader profiles.
var (
	ProfileRetail = TraderProfile{
		Kind:         domain.TraderRetail,
		AvgTradeSize: 100,
		TradeSizeStd: 0.3,
		MinTradeSize: 10,
		MaxTradeSize: 1_000,
		TradeProb:    0.7,
	}

	ProfileWhale = TraderProfile{
		Kind:         domain.TraderWhale,
		AvgTradeSize: 500_000,
		TradeSizeStd: 0.6,
		MinTradeSize: 100_000,
		MaxTradeSize: 10_000_000,
		TradeProb:    0.2,
	}
)

// Trader is one order-flow agent.
type Trader struct {
	Profile TraderProfile

	rng            *rand.Rand
	tradesExecuted int
	totalVolume    float64
}

// NewTrader creates a trader driven by the given random source.
func NewTrader(profile TraderProfile, rng *rand.Rand) *Trader {
	return &Trader{Profile: profile, rng: rng}
}

// ShouldTrade decides whether the trader acts today.
func (t *Trader) ShouldTrade() bool {
	return t.rng.Float64() < t.Profile.TradeProb
}

// TradeSize draws a lognormal trade size and clamps it to the profile
// bounds. The result is in asset B terms.
func (t *Trader) TradeSize() float64 {
	size := math.Exp(math.Log(t.Profile.AvgTradeSize) + t.Profile.TradeSizeStd*t.rng.NormFloat64())
	return math.Max(t.Profile.MinTradeSize, math.Min(t.Profile.MaxTradeSize, size))
}

// Direction picks the side of today's trade, uniformly.
func (t *Trader) Direction() amm.Direction {
	if t.rng.Float64() < 0.5 {
		return amm.BuyA
	}
	return amm.SellA
}

// ChoosePool picks the quote with the highest output. Ties go to the
// lexicographically smallest pool ID so replays stay deterministic.
func (t *Trader) ChoosePool(quotes map[string]amm.RouteQuote) (string, bool) {
	bestID := ""
	bestOut := 0.0
	for id, q := range quotes {
		if q.Err != nil {
			continue
		}
		if bestID == "" || q.AmountOut > bestOut || (q.AmountOut == bestOut && id < bestID) {
			bestID = id
			bestOut = q.AmountOut
		}
	}
	return bestID, bestID != ""
}

// RecordTrade tracks a completed trade.
func (t *Trader) RecordTrade(volume float64) {
	t.tradesExecuted++
	t.totalVolume += volume
}

// TradesExecuted returns the number of trades completed so far.
func (t *Trader) TradesExecuted() int { return t.tradesExecuted }

// TotalVolume returns the cumulative traded volume in asset B terms.
func (t *Trader) TotalVolume() float64 { return t.totalVolume }

// NewTraderPopulation creates retail and whale traders, each with its
// own sub-seeded random source derived from the base seed.
func NewTraderPopulation(retail, whales int, seed int64) []*Trader {
	traders := make([]*Trader, 0, retail+whales)
	for i := 0; i < retail; i++ {
		traders = append(traders, NewTrader(ProfileRetail, rand.New(rand.NewSource(seed+int64(i)))))
	}
	for i := 0; i < whales; i++ {
		traders = append(traders, NewTrader(ProfileWhale, rand.New(rand.NewSource(seed+int64(retail+i)))))
	}
	return traders
}
