// Package simulation drives the daily market loop: external price
// update, trader order flow, the fee transition, arbitrage, and LP
// capital movement, all persisted as day records and trade logs.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"amm-fee-lab/internal/agents"
	"amm-fee-lab/internal/amm"
	"amm-fee-lab/internal/arb"
	"amm-fee-lab/internal/domain"
	"amm-fee-lab/internal/dynfee"
	"amm-fee-lab/internal/feed"
	"amm-fee-lab/internal/idhash"
	"amm-fee-lab/internal/observability"
	"amm-fee-lab/internal/storage"
)

// Runner errors
var (
	ErrNoPools    = errors.New("no pools configured")
	ErrNoPriceSrc = errors.New("no price source configured")
)

// PoolSetup binds one pool to its fee configuration and state.
type PoolSetup struct {
	Pool   *amm.Pool
	Config dynfee.Config
	State  dynfee.State
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Pools  []PoolSetup
	Prices feed.PriceSource
	Days   int
	Seed   int64

	Traders []*agents.Trader
	LPs     []*agents.LPAgent

	Arb          *arb.Calculator
	MinArbProfit float64

	DayRecords storage.DayRecordStore
	TradeLogs  storage.TradeLogStore

	Logger *zap.Logger
}

// Results summarizes one completed run. Full per-day data lives in the
// stores the runner was given.
type Results struct {
	RunID          string
	DaysRun        int
	TradesExecuted int
	TotalVolume    float64
	TotalArbProfit float64
	FinalStates    map[string]dynfee.State
}

// Runner executes a multi-day market simulation over a set of pools.
type Runner struct {
	pools  []PoolSetup
	prices feed.PriceSource
	days   int
	seed   int64

	traders []*agents.Trader
	lps     []*agents.LPAgent

	arb          *arb.Calculator
	minArbProfit float64

	dayRecords storage.DayRecordStore
	tradeLogs  storage.TradeLogStore

	logger *zap.Logger
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if len(opts.Pools) == 0 {
		return nil, ErrNoPools
	}
	if opts.Prices == nil {
		return nil, ErrNoPriceSrc
	}
	for _, ps := range opts.Pools {
		if err := ps.Config.Validate(); err != nil {
			return nil, fmt.Errorf("pool %s: %w", ps.Pool.ID(), err)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		pools:        opts.Pools,
		prices:       opts.Prices,
		days:         opts.Days,
		seed:         opts.Seed,
		traders:      opts.Traders,
		lps:          opts.LPs,
		arb:          opts.Arb,
		minArbProfit: opts.MinArbProfit,
		dayRecords:   opts.DayRecords,
		tradeLogs:    opts.TradeLogs,
		logger:       logger,
	}, nil
}

// dayTally accumulates one pool's activity within a single day.
type dayTally struct {
	volume     float64 // asset B terms
	feesEarned float64 // asset B terms
	arbProfit  float64
	arbDone    bool
}

// Run executes the configured number of days. The run stops early
// without error when the price source is exhausted; it stops with the
// context error when cancelled between days.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	start := time.Now()

	poolIDs := make([]string, len(r.pools))
	for i, ps := range r.pools {
		poolIDs[i] = ps.Pool.ID()
	}

	results := &Results{
		RunID:       idhash.RunID(r.seed, poolIDs),
		FinalStates: make(map[string]dynfee.State, len(r.pools)),
	}

	r.logger.Info("simulation starting",
		zap.String("run_id", results.RunID),
		zap.Int("days", r.days),
		zap.Int("pools", len(r.pools)),
		zap.Int("traders", len(r.traders)),
		zap.Int("lps", len(r.lps)),
	)

	for day := 0; day < r.days; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		price, err := r.prices.Next(ctx)
		if err != nil {
			if errors.Is(err, feed.ErrExhausted) {
				r.logger.Info("price source exhausted, stopping early",
					zap.Int("day", day))
				break
			}
			return nil, fmt.Errorf("day %d: price update: %w", day, err)
		}

		if err := r.runDay(ctx, day, price, results); err != nil {
			return nil, fmt.Errorf("day %d: %w", day, err)
		}
		results.DaysRun++
		observability.RecordDayComplete()
	}

	for _, ps := range r.pools {
		results.FinalStates[ps.Pool.ID()] = ps.State
	}

	observability.RecordRunDuration(time.Since(start).Seconds())
	r.logger.Info("simulation complete",
		zap.String("run_id", results.RunID),
		zap.Int("days_run", results.DaysRun),
		zap.Int("trades", results.TradesExecuted),
		zap.Float64("total_volume", results.TotalVolume),
		zap.Float64("arb_profit", results.TotalArbProfit),
	)
	return results, nil
}

// runDay executes one full daily cycle at the given external price.
func (r *Runner) runDay(ctx context.Context, day int, price float64, results *Results) error {
	pools := make([]*amm.Pool, len(r.pools))
	for i, ps := range r.pools {
		pools[i] = ps.Pool
	}

	tallies := make(map[string]*dayTally, len(r.pools))
	for _, p := range pools {
		tallies[p.ID()] = &dayTally{}
	}
	seq := 0

	// 1. Trader order flow through best-execution routing.
	for _, trader := range r.traders {
		if !trader.ShouldTrade() {
			continue
		}
		sizeB := trader.TradeSize()
		dir := trader.Direction()

		amountIn := sizeB
		if dir == amm.SellA {
			amountIn = sizeB / price
		}

		quotes := amm.GetAllQuotes(pools, amountIn, dir)
		poolID, ok := trader.ChoosePool(quotes)
		if !ok {
			continue
		}
		pool := r.poolByID(poolID)

		res, err := pool.ExecuteTrade(amountIn, dir)
		if err != nil {
			// The pool drained between quote and execution.
			observability.RecordTradeRejected(poolID)
			continue
		}

		tally := tallies[poolID]
		volumeB, feeB := bTerms(res, dir, price)
		tally.volume += volumeB
		tally.feesEarned += feeB
		results.TradesExecuted++
		results.TotalVolume += volumeB
		trader.RecordTrade(volumeB)
		observability.RecordTradeExecuted(poolID, trader.Profile.Kind, volumeB)

		if err := r.logTrade(ctx, &domain.TradeLog{
			TradeID:    idhash.TradeID(poolID, day, seq),
			PoolID:     poolID,
			Day:        day,
			TraderKind: trader.Profile.Kind,
			Direction:  dir.String(),
			AmountIn:   res.AmountIn,
			AmountOut:  res.AmountOut,
			FeePaid:    res.FeePaid,
			Slippage:   res.Slippage,
		}); err != nil {
			return err
		}
		seq++
	}

	// 2. Per-pool fee transition on realized volume and TVL.
	for i := range r.pools {
		ps := &r.pools[i]
		id := ps.Pool.ID()
		tally := tallies[id]

		feeBefore := ps.Pool.Fee()
		tvl := ps.Pool.TVL(price)
		newFee, next, err := dynfee.AdvanceOneDay(tally.volume, tvl, ps.State, ps.Config)
		if err != nil {
			return fmt.Errorf("fee transition for %s: %w", id, err)
		}
		if err := ps.Pool.SetFee(newFee); err != nil {
			return fmt.Errorf("apply fee for %s: %w", id, err)
		}
		ps.State = next
		observability.RecordFeeUpdate(id, next.LastDirection, newFee)

		if newFee != feeBefore {
			r.logger.Debug("fee adjusted",
				zap.String("pool", id),
				zap.Int("day", day),
				zap.Float64("from", feeBefore),
				zap.Float64("to", newFee),
				zap.Int("streak", next.ConsecutiveCounter),
			)
		}

		// 3. Arbitrage against the external market at the new fee.
		if r.arb != nil {
			opp := r.arb.CalculateOpportunity(ps.Pool, price)
			if opp.Direction != arb.None {
				executed, final, err := r.arb.ExecuteOpportunity(ps.Pool, opp, r.minArbProfit)
				if err != nil {
					return fmt.Errorf("arbitrage on %s: %w", id, err)
				}
				observability.RecordArbOpportunity(executed, final.ExpectedProfit)
				if executed {
					tally.arbProfit = final.ExpectedProfit
					tally.arbDone = true
					results.TotalArbProfit += final.ExpectedProfit

					volumeB, feeB := arbBTerms(final, ps.Pool.Fee(), price)
					tally.volume += volumeB
					tally.feesEarned += feeB
					results.TradesExecuted++
					results.TotalVolume += volumeB
					observability.RecordTradeExecuted(id, domain.TraderArbitrageur, volumeB)

					dirStr := amm.BuyA.String()
					if final.Direction == arb.SellToPool {
						dirStr = amm.SellA.String()
					}
					if err := r.logTrade(ctx, &domain.TradeLog{
						TradeID:    idhash.TradeID(id, day, seq),
						PoolID:     id,
						Day:        day,
						TraderKind: domain.TraderArbitrageur,
						Direction:  dirStr,
						AmountIn:   final.TradeSize,
						FeePaid:    final.TradeSize * ps.Pool.Fee(),
					}); err != nil {
						return err
					}
					seq++
				}
			}
		}

		feeAfter := ps.Pool.Fee()
		observability.UpdatePoolGauges(id, ps.Pool.TVL(price), ps.Pool.SpotPrice())

		if r.dayRecords != nil {
			rec := &domain.DayRecord{
				RecordID:           idhash.DayRecordID(id, day),
				PoolID:             id,
				Day:                day,
				Volume:             tally.volume,
				TVL:                tvl,
				FeeBefore:          feeBefore,
				FeeAfter:           feeAfter,
				TargetRatio:        next.TargetRatio,
				ConsecutiveCounter: next.ConsecutiveCounter,
				Direction:          next.LastDirection,
				ArbProfit:          tally.arbProfit,
				ArbExecuted:        tally.arbDone,
				ReserveA:           ps.Pool.ReserveA(),
				ReserveB:           ps.Pool.ReserveB(),
				SpotPrice:          ps.Pool.SpotPrice(),
				ExternalPrice:      price,
				FeesEarned:         tally.feesEarned,
			}
			if err := r.dayRecords.Insert(ctx, rec); err != nil {
				return fmt.Errorf("persist day record for %s: %w", id, err)
			}
		}
	}

	// 4. LP capital movement on realized yields.
	r.moveLPCapital(day, price, tallies)

	return nil
}

// moveLPCapital lets each due LP re-evaluate pool yields and migrates
// decided capital between pools.
func (r *Runner) moveLPCapital(day int, price float64, tallies map[string]*dayTally) {
	yields := make([]agents.PoolYield, 0, len(r.pools))
	aprByPool := make(map[string]float64, len(r.pools))
	for _, ps := range r.pools {
		id := ps.Pool.ID()
		tvl := ps.Pool.TVL(price)
		apr := 0.0
		if tvl > 0 {
			apr = tallies[id].feesEarned / tvl * 365
		}
		yields = append(yields, agents.PoolYield{PoolID: id, APR: apr})
		aprByPool[id] = apr
	}

	for _, lp := range r.lps {
		if pos := lp.Position(); pos != nil {
			lp.AccrueFees(aprByPool[pos.PoolID])
		}
		if !lp.ShouldCheckSwitch(day) {
			continue
		}
		move := lp.EvaluateSwitch(yields, day)
		if move == nil {
			continue
		}
		r.applySwitch(move, price)
		if move.FromPool != "" {
			observability.RecordLPSwitch()
			r.logger.Debug("lp switched pools",
				zap.Int("lp", lp.ID),
				zap.Int("day", day),
				zap.String("from", move.FromPool),
				zap.String("to", move.ToPool),
				zap.Float64("amount", move.Amount),
			)
		}
	}
}

// applySwitch moves capital between pool reserves. Amounts are in asset
// B value terms; each leg preserves the pool's reserve ratio.
func (r *Runner) applySwitch(move *agents.Switch, price float64) {
	if move.FromPool != "" {
		from := r.poolByID(move.FromPool)
		if from != nil {
			tvl := from.TVL(price)
			if tvl > 0 {
				fraction := move.Amount / tvl
				if fraction > 1 {
					fraction = 1
				}
				if fraction > 0 {
					from.RemoveLiquidity(fraction)
				}
			}
		}
	}

	to := r.poolByID(move.ToPool)
	if to == nil {
		return
	}
	halfB := move.Amount / 2
	spot := to.SpotPrice()
	if spot <= 0 {
		return
	}
	to.AddLiquidity(halfB/spot, halfB)
}

func (r *Runner) poolByID(id string) *amm.Pool {
	for _, ps := range r.pools {
		if ps.Pool.ID() == id {
			return ps.Pool
		}
	}
	return nil
}

func (r *Runner) logTrade(ctx context.Context, t *domain.TradeLog) error {
	if r.tradeLogs == nil {
		return nil
	}
	if err := r.tradeLogs.Insert(ctx, t); err != nil {
		return fmt.Errorf("persist trade %s: %w", t.TradeID, err)
	}
	return nil
}

// bTerms converts one trade's volume and fee into asset B terms.
func bTerms(res *amm.TradeResult, dir amm.Direction, price float64) (volumeB, feeB float64) {
	if dir == amm.BuyA {
		// Input side is asset B.
		return res.AmountIn, res.FeePaid
	}
	return res.AmountOut, res.FeePaid * price
}

// arbBTerms converts an executed opportunity's size and pool fee take
// into asset B terms. TradeSize is pool input: B when buying from the
// pool, A when selling to it.
func arbBTerms(opp arb.Opportunity, fee, price float64) (volumeB, feeB float64) {
	if opp.Direction == arb.BuyFromPool {
		return opp.TradeSize, opp.TradeSize * fee
	}
	return opp.TradeSize * price, opp.TradeSize * fee * price
}
