package amm

import "errors"

// Pool engine errors.
var (
	// ErrInvalidInput is returned for non-positive trade sizes and
	// out-of-range liquidity fractions.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReserveExhausted is returned when a trade would drive a reserve
	// below the minimum viable level.
	ErrReserveExhausted = errors.New("reserve exhausted")

	// ErrConfigOutOfRange is returned when a fee outside [0,1) is supplied.
	ErrConfigOutOfRange = errors.New("config out of range")

	// ErrNoViableRoute is returned by GetBestExecution when every candidate
	// pool failed to quote.
	ErrNoViableRoute = errors.New("no viable route")
)
