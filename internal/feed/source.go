// Package feed supplies external reference-market data to the
// simulation: historical OHLCV bars, synthetic price paths, and live
// ticker streams.
package feed

import (
	"context"
	"errors"

	"amm-fee-lab/internal/domain"
)

// Feed errors.
var (
	// ErrExhausted is returned by Next once a finite source has no more data.
	ErrExhausted = errors.New("price source exhausted")

	// ErrClosed is returned after a source has been closed.
	ErrClosed = errors.New("price source closed")

	// ErrMalformedData is returned when an input row cannot be parsed.
	ErrMalformedData = errors.New("malformed market data")
)

// PriceSource yields one external reference price per simulated day.
type PriceSource interface {
	// Next returns the next price. Returns ErrExhausted when the
	// source has no more data.
	Next(ctx context.Context) (float64, error)
}

// BarSource yields OHLCV bars in timestamp order.
type BarSource interface {
	// Next returns the next bar. Returns ErrExhausted at end of data.
	Next(ctx context.Context) (domain.Bar, error)
}
