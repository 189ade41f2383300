// Package dynfee implements the adaptive daily fee-adjustment algorithm
// as a pure state-transition function over an explicit fee state.
package dynfee

import (
	"errors"
	"fmt"
)

// Config errors.
var (
	// ErrConfigOutOfRange is returned when a configuration bound is violated.
	ErrConfigOutOfRange = errors.New("config out of range")

	// ErrUnknownPoolType is returned by ConfigByType for an unrecognized name.
	ErrUnknownPoolType = errors.New("unknown pool type")
)

// Config is the immutable parameter bundle of the fee-adjustment
// algorithm. Construct once, validate, and pass by value.
type Config struct {
	// LinearSlope scales the fee-adjustment magnitude per unit deviation.
	LinearSlope float64
	// Alpha is the EMA smoothing weight for the target ratio, in (0,1].
	Alpha float64
	// MaxFeeDelta is the absolute per-day fee-change cap.
	MaxFeeDelta float64
	// Tolerance is the fractional band around the target ratio treated
	// as "no adjustment".
	Tolerance float64
	// InitialFee seeds the fee state.
	InitialFee float64
	// MinFee and MaxFee bound the fee at all times.
	MinFee float64
	MaxFee float64
	// MaxAdjustmentRate caps the relative day-over-day fee change.
	MaxAdjustmentRate float64
}

// Validate checks all bounds. Returns ErrConfigOutOfRange on violation.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha %g outside (0,1]", ErrConfigOutOfRange, c.Alpha)
	}
	if c.MinFee < 0 || c.MaxFee >= 1 || c.MinFee > c.MaxFee {
		return fmt.Errorf("%w: fee bounds [%g, %g] invalid", ErrConfigOutOfRange, c.MinFee, c.MaxFee)
	}
	if c.InitialFee < c.MinFee || c.InitialFee > c.MaxFee {
		return fmt.Errorf("%w: initial fee %g outside [%g, %g]", ErrConfigOutOfRange, c.InitialFee, c.MinFee, c.MaxFee)
	}
	if c.LinearSlope <= 0 {
		return fmt.Errorf("%w: linear slope %g must be positive", ErrConfigOutOfRange, c.LinearSlope)
	}
	if c.MaxFeeDelta <= 0 {
		return fmt.Errorf("%w: max fee delta %g must be positive", ErrConfigOutOfRange, c.MaxFeeDelta)
	}
	if c.MaxAdjustmentRate <= 0 {
		return fmt.Errorf("%w: max adjustment rate %g must be positive", ErrConfigOutOfRange, c.MaxAdjustmentRate)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance %g must be non-negative", ErrConfigOutOfRange, c.Tolerance)
	}
	return nil
}

// Pool type names for preset configurations.
const (
	PoolTypeStable   = "stable"
	PoolTypeStandard = "standard"
	PoolTypeVolatile = "volatile"
)

// Preset configurations per pool type. Fee deltas are expressed
// directly as decimal per-day caps.
var (
	// ConfigStable suits stable pairs (USDC/USDT).
	ConfigStable = Config{
		LinearSlope:       0.5,
		Alpha:             0.1,
		MaxFeeDelta:       0.00005,
		Tolerance:         0.02,
		InitialFee:        0.0001,
		MinFee:            0.00005,
		MaxFee:            0.01,
		MaxAdjustmentRate: 100.0,
	}

	// ConfigStandard suits standard pairs (ETH/USDC).
	ConfigStandard = Config{
		LinearSlope:       1.0,
		Alpha:             0.15,
		MaxFeeDelta:       0.0001,
		Tolerance:         0.05,
		InitialFee:        0.0005,
		MinFee:            0.0001,
		MaxFee:            0.03,
		MaxAdjustmentRate: 100.0,
	}

	// ConfigVolatile suits volatile pairs (MEME/ETH).
	ConfigVolatile = Config{
		LinearSlope:       2.0,
		Alpha:             0.2,
		MaxFeeDelta:       0.0002,
		Tolerance:         0.05,
		InitialFee:        0.003,
		MinFee:            0.0005,
		MaxFee:            0.05,
		MaxAdjustmentRate: 100.0,
	}
)

// ConfigByType returns the preset configuration for a pool type name.
func ConfigByType(poolType string) (Config, error) {
	switch poolType {
	case PoolTypeStable:
		return ConfigStable, nil
	case PoolTypeStandard:
		return ConfigStandard, nil
	case PoolTypeVolatile:
		return ConfigVolatile, nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPoolType, poolType)
	}
}
