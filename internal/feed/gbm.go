package feed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// GBMSource generates a synthetic price path with geometric Brownian
// motion, one step per call:
//
//	P' = P * exp((mu - sigma^2/2)*dt + sigma*sqrt(dt)*Z)
//
// Drift and volatility are annualized; dt is 1/365 per step. The path
// is deterministic for a given rng seed.
type GBMSource struct {
	price float64
	mu    float64
	sigma float64
	dt    float64
	steps int
	left  int
	rng   *rand.Rand
}

// NewGBMSource builds a path starting at initialPrice, lasting steps
// days. Pass steps <= 0 for an unbounded path.
func NewGBMSource(initialPrice, mu, sigma float64, steps int, rng *rand.Rand) (*GBMSource, error) {
	if initialPrice <= 0 || math.IsNaN(initialPrice) || math.IsInf(initialPrice, 0) {
		return nil, fmt.Errorf("initial price %v must be positive: %w", initialPrice, ErrMalformedData)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("sigma %v must be non-negative: %w", sigma, ErrMalformedData)
	}
	if rng == nil {
		return nil, fmt.Errorf("rng must not be nil: %w", ErrMalformedData)
	}
	return &GBMSource{
		price: initialPrice,
		mu:    mu,
		sigma: sigma,
		dt:    1.0 / 365.0,
		steps: steps,
		left:  steps,
		rng:   rng,
	}, nil
}

// Next advances the path one day and returns the new price.
func (s *GBMSource) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.steps > 0 {
		if s.left == 0 {
			return 0, ErrExhausted
		}
		s.left--
	}
	z := s.rng.NormFloat64()
	s.price *= math.Exp((s.mu-0.5*s.sigma*s.sigma)*s.dt + s.sigma*math.Sqrt(s.dt)*z)
	return s.price, nil
}

var _ PriceSource = (*GBMSource)(nil)
