package dynfee

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMetric is returned for negative volume or non-positive TVL.
var ErrInvalidMetric = errors.New("invalid metric")

// State is the per-pool adaptive-fee memory. The engine itself keeps no
// hidden state: identical inputs and prior state always yield identical
// outputs, so replayed (volume, tvl) sequences reproduce identical fee
// trajectories.
type State struct {
	// CurrentFee mirrors the pool's fee after each update.
	CurrentFee float64
	// TargetRatio is the EMA of the daily volume/TVL ratio.
	TargetRatio float64
	// ConsecutiveCounter counts same-direction adjustments in a row.
	ConsecutiveCounter int
	// LastDirection is -1, 0, or +1.
	LastDirection int
}

// InitializeState seeds a fresh fee state with a zero target ratio.
func InitializeState(initialFee float64) State {
	return State{CurrentFee: initialFee}
}

// InitializeStateSeeded seeds a fresh fee state with a calibrated
// target ratio, typically derived from historical volume/TVL data.
func InitializeStateSeeded(initialFee, targetRatio float64) State {
	return State{CurrentFee: initialFee, TargetRatio: targetRatio}
}

// AdvanceOneDay runs one daily transition of the fee algorithm and
// returns the new fee together with the updated state. The caller is
// responsible for writing the new fee into the pool.
//
// The hysteresis counter rewards sustained directional pressure with
// larger steps while the tolerance band suppresses single-day noise;
// MaxFeeDelta and MaxAdjustmentRate bound the absolute and relative
// day-over-day jumps.
func AdvanceOneDay(volume, tvl float64, prior State, cfg Config) (float64, State, error) {
	if volume < 0 || math.IsNaN(volume) {
		return 0, State{}, fmt.Errorf("%w: volume %g", ErrInvalidMetric, volume)
	}
	if tvl <= 0 || math.IsNaN(tvl) {
		return 0, State{}, fmt.Errorf("%w: tvl %g", ErrInvalidMetric, tvl)
	}

	actualRatio := volume / tvl
	targetRatio := cfg.Alpha*actualRatio + (1-cfg.Alpha)*prior.TargetRatio
	deviation := actualRatio - targetRatio

	next := State{
		CurrentFee:  prior.CurrentFee,
		TargetRatio: targetRatio,
	}

	// Inside the tolerance band: no adjustment, streak resets.
	if math.Abs(deviation) <= cfg.Tolerance*targetRatio {
		return next.CurrentFee, next, nil
	}

	direction := 1
	if deviation < 0 {
		direction = -1
	}
	if direction == prior.LastDirection {
		next.ConsecutiveCounter = prior.ConsecutiveCounter + 1
	} else {
		next.ConsecutiveCounter = 1
	}
	next.LastDirection = direction

	rawDelta := math.Min(cfg.LinearSlope*math.Abs(deviation)*float64(next.ConsecutiveCounter), cfg.MaxFeeDelta)
	rawDelta = math.Min(rawDelta, cfg.MaxAdjustmentRate*prior.CurrentFee)

	newFee := prior.CurrentFee + float64(direction)*rawDelta
	newFee = math.Max(cfg.MinFee, math.Min(cfg.MaxFee, newFee))

	next.CurrentFee = newFee
	return newFee, next, nil
}
