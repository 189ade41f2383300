// Package amm implements a constant-product market maker pool with
// fee-on-input trade execution and multi-pool routing.
package amm

import (
	"fmt"
	"math"
)

// minReserve is the floor below which a reserve is considered exhausted.
// Trades asymptotically deplete reserves but may never cross this level.
const minReserve = 1e-8

// Direction selects which asset is paid into the pool.
type Direction int

// Trade directions. Asset A is the base asset, asset B the quote asset.
const (
	// BuyA pays asset B into the pool and receives asset A.
	BuyA Direction = iota + 1
	// SellA pays asset A into the pool and receives asset B.
	SellA
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case BuyA:
		return "buy_a"
	case SellA:
		return "sell_a"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// TradeResult holds the outcome of a single executed trade.
// Immutable once returned.
type TradeResult struct {
	AmountIn       float64
	AmountOut      float64
	FeePaid        float64 // in units of the input asset
	EffectivePrice float64 // AmountOut / AmountIn
	Slippage       float64 // signed fraction vs pre-trade spot price
}

// Pool is a single constant-product trading venue holding two reserves
// and a current fee. Reserves stay strictly positive for the lifetime of
// the pool. Pool is not safe for concurrent mutation; callers running
// pools in parallel must give each pool a single logical writer.
type Pool struct {
	id       string
	reserveA float64
	reserveB float64
	fee      float64
}

// New creates a pool with initial reserves and fee.
// Both reserves must be strictly positive and the fee in [0,1).
func New(id string, reserveA, reserveB, fee float64) (*Pool, error) {
	if reserveA <= 0 || reserveB <= 0 {
		return nil, fmt.Errorf("%w: reserves must be positive, got A=%g B=%g", ErrInvalidInput, reserveA, reserveB)
	}
	if fee < 0 || fee >= 1 {
		return nil, fmt.Errorf("%w: fee %g outside [0,1)", ErrConfigOutOfRange, fee)
	}
	return &Pool{id: id, reserveA: reserveA, reserveB: reserveB, fee: fee}, nil
}

// ID returns the pool identifier.
func (p *Pool) ID() string { return p.id }

// ReserveA returns the current reserve of asset A.
func (p *Pool) ReserveA() float64 { return p.reserveA }

// ReserveB returns the current reserve of asset B.
func (p *Pool) ReserveB() float64 { return p.reserveB }

// Fee returns the current fee rate.
func (p *Pool) Fee() float64 { return p.fee }

// K returns the constant-product invariant reserveA * reserveB.
func (p *Pool) K() float64 { return p.reserveA * p.reserveB }

// SpotPrice returns the marginal price of asset A in units of asset B.
func (p *Pool) SpotPrice() float64 { return p.reserveB / p.reserveA }

// TVL values both reserves in units of asset B at the given market price
// of asset A. Pass SpotPrice() to value at the pool's own marginal price.
func (p *Pool) TVL(marketPrice float64) float64 {
	return p.reserveA*marketPrice + p.reserveB
}

// Clone returns an independent copy of the pool. Used to evaluate trades
// without touching live reserves.
func (p *Pool) Clone() *Pool {
	c := *p
	return &c
}

// reserves maps a direction to (input reserve, output reserve).
func (p *Pool) reserves(dir Direction) (rin, rout float64, err error) {
	switch dir {
	case BuyA:
		return p.reserveB, p.reserveA, nil
	case SellA:
		return p.reserveA, p.reserveB, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown direction %d", ErrInvalidInput, int(dir))
	}
}

// Quote computes the output amount for a trade without mutating the pool.
//
//	out = R_out * in*(1-fee) / (R_in + in*(1-fee))
//
// The result is always strictly between 0 and R_out.
func (p *Pool) Quote(amountIn float64, dir Direction) (float64, error) {
	if amountIn <= 0 || math.IsNaN(amountIn) || math.IsInf(amountIn, 0) {
		return 0, fmt.Errorf("%w: trade size %g", ErrInvalidInput, amountIn)
	}
	rin, rout, err := p.reserves(dir)
	if err != nil {
		return 0, err
	}
	inAfterFee := amountIn * (1 - p.fee)
	return rout * inAfterFee / (rin + inAfterFee), nil
}

// quoteChecked quotes a trade and verifies the pool could actually
// execute it without exhausting the output reserve.
func (p *Pool) quoteChecked(amountIn float64, dir Direction) (float64, error) {
	amountOut, err := p.Quote(amountIn, dir)
	if err != nil {
		return 0, err
	}
	_, rout, err := p.reserves(dir)
	if err != nil {
		return 0, err
	}
	if rout-amountOut < minReserve {
		return 0, fmt.Errorf("%w: pool %s would fall below %g on %s", ErrReserveExhausted, p.id, minReserve, dir)
	}
	return amountOut, nil
}

// ExecuteTrade swaps amountIn into the pool and updates reserves.
// The full input amount is added to the input reserve, so the invariant
// product never decreases while the fee is positive.
func (p *Pool) ExecuteTrade(amountIn float64, dir Direction) (*TradeResult, error) {
	amountOut, err := p.quoteChecked(amountIn, dir)
	if err != nil {
		return nil, err
	}
	rin, rout, _ := p.reserves(dir)

	spotBefore := rout / rin
	effective := amountOut / amountIn
	result := &TradeResult{
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		FeePaid:        amountIn * p.fee,
		EffectivePrice: effective,
		Slippage:       (effective - spotBefore) / spotBefore,
	}

	switch dir {
	case BuyA:
		p.reserveB += amountIn
		p.reserveA -= amountOut
	case SellA:
		p.reserveA += amountIn
		p.reserveB -= amountOut
	}
	return result, nil
}

// AddLiquidity deposits assets at the pool's current reserve ratio.
// The excess on the non-limiting side stays with the provider; the actual
// deposited amounts are returned.
func (p *Pool) AddLiquidity(amountA, amountB float64) (addedA, addedB float64, err error) {
	if amountA <= 0 || amountB <= 0 {
		return 0, 0, fmt.Errorf("%w: liquidity amounts must be positive, got A=%g B=%g", ErrInvalidInput, amountA, amountB)
	}
	ratio := p.reserveB / p.reserveA
	optimalB := amountA * ratio
	if amountB >= optimalB {
		addedA, addedB = amountA, optimalB
	} else {
		addedA, addedB = amountB/ratio, amountB
	}
	p.reserveA += addedA
	p.reserveB += addedB
	return addedA, addedB, nil
}

// RemoveLiquidity withdraws a proportional share of both reserves.
// The fraction must be in (0,1]; remaining reserves are floored at the
// minimum viable level so the pool stays quotable.
func (p *Pool) RemoveLiquidity(fraction float64) (outA, outB float64, err error) {
	if fraction <= 0 || fraction > 1 || math.IsNaN(fraction) {
		return 0, 0, fmt.Errorf("%w: fraction %g outside (0,1]", ErrInvalidInput, fraction)
	}
	outA = p.reserveA * fraction
	outB = p.reserveB * fraction
	p.reserveA -= outA
	p.reserveB -= outB
	if p.reserveA < minReserve {
		p.reserveA = minReserve
	}
	if p.reserveB < minReserve {
		p.reserveB = minReserve
	}
	return outA, outB, nil
}

// SetFee updates the fee rate. This is the write path used by the dynamic
// fee engine output.
func (p *Pool) SetFee(fee float64) error {
	if fee < 0 || fee >= 1 || math.IsNaN(fee) {
		return fmt.Errorf("%w: fee %g outside [0,1)", ErrConfigOutOfRange, fee)
	}
	p.fee = fee
	return nil
}
