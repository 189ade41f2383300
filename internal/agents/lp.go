package agents

import (
	"math/rand"
)

// LP kind constants.
const (
	LPPassive = "PASSIVE"
	LPActive  = "ACTIVE"
)

// LPProfile configures a liquidity provider's switching behavior.
type LPProfile struct {
	Kind               string
	AvgSwitchingDays   int     // average days between switch checks
	SwitchingCostPct   float64 // cost of moving pools, as a fraction of capital
	AirdropSpeculation float64 // preference multiplier, 1.0 = neutral
	Capital            float64
}

// Predefined LP profiles.
var (
	ProfilePassiveLP = LPProfile{
		Kind:               LPPassive,
		AvgSwitchingDays:   90,
		SwitchingCostPct:   0.005,
		AirdropSpeculation: 1.0,
	}

	ProfileActiveLP = LPProfile{
		Kind:               LPActive,
		AvgSwitchingDays:   7,
		SwitchingCostPct:   0.001,
		AirdropSpeculation: 1.2,
	}
)

// PoolYield is the per-pool information an LP decides on.
type PoolYield struct {
	PoolID string
	APR    float64 // annualized fee yield
}

// LPPosition is an LP's stake in one pool.
type LPPosition struct {
	PoolID        string
	Capital       float64
	EntryDay      int
	NextSwitchDay int
}

// Switch describes a capital movement decided by an LP.
type Switch struct {
	FromPool string // empty for an initial entry
	ToPool   string
	Amount   float64
}

// LPAgent is one liquidity provider with scheduled switching checks.
type LPAgent struct {
	ID      int
	Profile LPProfile

	position            *LPPosition
	switches            int
	totalSwitchingCosts float64
	rng                 *rand.Rand
}

// NewLPAgent creates an LP agent with its own random source.
func NewLPAgent(id int, profile LPProfile, capital float64, rng *rand.Rand) *LPAgent {
	profile.Capital = capital
	return &LPAgent{ID: id, Profile: profile, rng: rng}
}

// Position returns the current position, or nil before entry.
func (a *LPAgent) Position() *LPPosition { return a.position }

// Switches returns how many pool switches this agent has made.
func (a *LPAgent) Switches() int { return a.switches }

// TotalSwitchingCosts returns the cumulative cost paid for switching.
func (a *LPAgent) TotalSwitchingCosts() float64 { return a.totalSwitchingCosts }

// ShouldCheckSwitch reports whether today is a scheduled switch check.
func (a *LPAgent) ShouldCheckSwitch(day int) bool {
	if a.position == nil {
		return true
	}
	return day >= a.position.NextSwitchDay
}

// EvaluateSwitch decides whether to enter or move pools given current
// yields. It returns the decided capital movement, or nil to stay put.
// The additional return over the switching period must cover the
// switching cost before a move is worthwhile.
func (a *LPAgent) EvaluateSwitch(yields []PoolYield, day int) *Switch {
	if len(yields) == 0 {
		return nil
	}

	if a.position == nil {
		best := a.bestYield(yields)
		a.enter(best.PoolID, day)
		return &Switch{ToPool: best.PoolID, Amount: a.position.Capital}
	}

	currentAPR := 0.0
	for _, y := range yields {
		if y.PoolID == a.position.PoolID {
			currentAPR = y.APR * a.Profile.AirdropSpeculation
		}
	}

	horizon := float64(a.Profile.AvgSwitchingDays) / 365.0
	bestID := ""
	bestAPR := currentAPR
	for _, y := range yields {
		if y.PoolID == a.position.PoolID {
			continue
		}
		adjusted := y.APR * a.Profile.AirdropSpeculation
		if (adjusted-currentAPR)*horizon > a.Profile.SwitchingCostPct && adjusted > bestAPR {
			bestAPR = adjusted
			bestID = y.PoolID
		}
	}

	a.scheduleNextCheck(day)
	if bestID == "" {
		return nil
	}
	return a.moveTo(bestID, day)
}

// AccrueFees compounds one day of fee yield into the position.
func (a *LPAgent) AccrueFees(apr float64) {
	if a.position != nil {
		a.position.Capital *= 1 + apr/365
	}
}

func (a *LPAgent) bestYield(yields []PoolYield) PoolYield {
	best := yields[0]
	bestScore := best.APR * a.Profile.AirdropSpeculation
	for _, y := range yields[1:] {
		score := y.APR * a.Profile.AirdropSpeculation
		if score > bestScore || (score == bestScore && y.PoolID < best.PoolID) {
			best = y
			bestScore = score
		}
	}
	return best
}

func (a *LPAgent) enter(poolID string, day int) {
	a.position = &LPPosition{
		PoolID:   poolID,
		Capital:  a.Profile.Capital,
		EntryDay: day,
	}
	a.scheduleNextCheck(day)
}

func (a *LPAgent) moveTo(poolID string, day int) *Switch {
	cost := a.position.Capital * a.Profile.SwitchingCostPct
	a.totalSwitchingCosts += cost
	a.switches++

	from := a.position.PoolID
	a.position.Capital -= cost
	a.position.PoolID = poolID
	a.position.EntryDay = day

	return &Switch{FromPool: from, ToPool: poolID, Amount: a.position.Capital}
}

// scheduleNextCheck jitters the next check by ±20% of the average
// cadence, never below one day.
func (a *LPAgent) scheduleNextCheck(day int) {
	noise := 0.8 + 0.4*a.rng.Float64()
	next := int(float64(a.Profile.AvgSwitchingDays) * noise)
	if next < 1 {
		next = 1
	}
	a.position.NextSwitchDay = day + next
}

// NewLPPopulation creates passive and active LPs with derived seeds.
func NewLPPopulation(passive, active int, capitalPerLP float64, seed int64) []*LPAgent {
	lps := make([]*LPAgent, 0, passive+active)
	for i := 0; i < passive; i++ {
		id := len(lps)
		lps = append(lps, NewLPAgent(id, ProfilePassiveLP, capitalPerLP, rand.New(rand.NewSource(seed+int64(id)))))
	}
	for i := 0; i < active; i++ {
		id := len(lps)
		lps = append(lps, NewLPAgent(id, ProfileActiveLP, capitalPerLP, rand.New(rand.NewSource(seed+int64(id)))))
	}
	return lps
}
