// Package arb sizes and executes arbitrage trades that close price gaps
// between a constant-product pool and an external reference market.
package arb

import (
	"math"

	"amm-fee-lab/internal/amm"
)

// Direction of an arbitrage trade relative to the pool.
type Direction int

const (
	// None means the pool price sits inside the external-fee band.
	None Direction = 0
	// BuyFromPool buys asset A from the pool and sells it externally.
	BuyFromPool Direction = 1
	// SellToPool buys asset A externally and sells it to the pool.
	SellToPool Direction = -1
)

// Opportunity is the outcome of one arbitrage evaluation.
// TradeSize is the pool input amount: asset B for BuyFromPool, asset A
// for SellToPool. ExpectedProfit is in units of asset B.
type Opportunity struct {
	Direction      Direction
	TradeSize      float64
	ExpectedProfit float64
	Executed       bool
}

// Calculator evaluates arbitrage between a pool and an external venue.
type Calculator struct {
	// ExternalFee is the proportional cost of trading on the external venue.
	ExternalFee float64
	// MaxCapital caps the deployed capital, in units of asset B.
	MaxCapital float64
}

// NewCalculator creates a calculator with the given external fee and
// capital cap.
func NewCalculator(externalFee, maxCapital float64) *Calculator {
	return &Calculator{ExternalFee: externalFee, MaxCapital: maxCapital}
}

// CalculateOpportunity computes the profit-maximizing trade against the
// pool at the given external reference price. It reads the pool but
// never mutates it, and never fails: "no opportunity" is signaled with
// Direction None and zero profit.
func (c *Calculator) CalculateOpportunity(pool *amm.Pool, externalPrice float64) Opportunity {
	if externalPrice <= 0 || math.IsNaN(externalPrice) {
		return Opportunity{}
	}

	poolPrice := pool.SpotPrice()
	lower := externalPrice * (1 - c.ExternalFee)
	upper := externalPrice * (1 + c.ExternalFee)

	switch {
	case poolPrice < lower:
		return c.buyFromPool(pool, externalPrice)
	case poolPrice > upper:
		return c.sellToPool(pool, externalPrice)
	default:
		return Opportunity{}
	}
}

// buyFromPool sizes the trade that lifts the pool's marginal price up to
// the external price net of fees. The closed form follows from the
// constant-product marginal-price function: the A amount to extract is
// R_A * (sqrt(1/ratio) - 1) with ratio = P_pool*(1+fee) / P_ext*(1-extFee).
func (c *Calculator) buyFromPool(pool *amm.Pool, externalPrice float64) Opportunity {
	ratio := pool.SpotPrice() * (1 + pool.Fee()) / (externalPrice * (1 - c.ExternalFee))
	if ratio <= 0 {
		return Opportunity{}
	}

	amountA := pool.ReserveA() * (math.Sqrt(1/ratio) - 1)
	if amountA <= 0 || amountA >= pool.ReserveA() {
		return Opportunity{}
	}

	// Convert the A target into the B input the pool requires for it.
	amountBNet := amountA * pool.ReserveB() / (pool.ReserveA() - amountA)
	amountB := amountBNet / (1 - pool.Fee())
	amountB = math.Min(amountB, c.MaxCapital)
	if amountB <= 0 {
		return Opportunity{}
	}

	out, err := pool.Quote(amountB, amm.BuyA)
	if err != nil {
		return Opportunity{}
	}
	revenue := out * externalPrice * (1 - c.ExternalFee)

	return Opportunity{
		Direction:      BuyFromPool,
		TradeSize:      amountB,
		ExpectedProfit: revenue - amountB,
	}
}

// sellToPool sizes the trade that pushes the pool's marginal price down
// to the external price plus fees: A amount is R_A * (1 - sqrt(1/ratio))
// with ratio = P_pool*(1-fee) / P_ext*(1+extFee).
func (c *Calculator) sellToPool(pool *amm.Pool, externalPrice float64) Opportunity {
	ratio := pool.SpotPrice() * (1 - pool.Fee()) / (externalPrice * (1 + c.ExternalFee))
	if ratio <= 0 {
		return Opportunity{}
	}

	amountA := pool.ReserveA() * (1 - math.Sqrt(1/ratio))
	amountA = math.Min(amountA, c.MaxCapital/externalPrice)
	if amountA <= 0 {
		return Opportunity{}
	}

	out, err := pool.Quote(amountA, amm.SellA)
	if err != nil {
		return Opportunity{}
	}
	cost := amountA * externalPrice * (1 + c.ExternalFee)

	return Opportunity{
		Direction:      SellToPool,
		TradeSize:      amountA,
		ExpectedProfit: out - cost,
	}
}

// ExecuteOpportunity executes a previously calculated opportunity
// against the pool when its expected profit clears minProfit. Pool
// errors are forwarded unchanged; they are fatal to this opportunity,
// not retried.
func (c *Calculator) ExecuteOpportunity(pool *amm.Pool, opp Opportunity, minProfit float64) (bool, Opportunity, error) {
	if opp.Direction == None || opp.ExpectedProfit < minProfit {
		return false, opp, nil
	}

	dir := amm.BuyA
	if opp.Direction == SellToPool {
		dir = amm.SellA
	}
	if _, err := pool.ExecuteTrade(opp.TradeSize, dir); err != nil {
		return false, opp, err
	}

	opp.Executed = true
	return true, opp, nil
}
