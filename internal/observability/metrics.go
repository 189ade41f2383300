// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Trading metrics
	TradesExecuted *prometheus.CounterVec
	TradesRejected *prometheus.CounterVec
	VolumeTraded   *prometheus.CounterVec

	// Fee engine metrics
	FeeUpdates *prometheus.CounterVec
	CurrentFee *prometheus.GaugeVec

	// Arbitrage metrics
	ArbOpportunitiesFound   prometheus.Counter
	ArbOpportunitiesSkipped prometheus.Counter
	ArbTradesExecuted       prometheus.Counter
	ArbProfitTotal          prometheus.Counter

	// Liquidity metrics
	LPSwitches prometheus.Counter
	PoolTVL    *prometheus.GaugeVec
	PoolSpot   *prometheus.GaugeVec

	// Runner metrics
	DaysSimulated prometheus.Counter
	RunDuration   prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "amm_fee_lab"
	}

	return &Metrics{
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_executed_total",
			Help:      "Total number of executed trades by pool and trader kind",
		}, []string{"pool", "trader_kind"}),
		TradesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_rejected_total",
			Help:      "Total number of trades rejected by pool",
		}, []string{"pool"}),
		VolumeTraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "volume_traded_total",
			Help:      "Total traded volume in asset B terms by pool",
		}, []string{"pool"}),

		FeeUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "fee_updates_total",
			Help:      "Total number of daily fee transitions by pool and direction",
		}, []string{"pool", "direction"}),
		CurrentFee: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "current_fee",
			Help:      "Current pool fee as a decimal fraction",
		}, []string{"pool"}),

		ArbOpportunitiesFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbitrage",
			Name:      "opportunities_found_total",
			Help:      "Total number of arbitrage opportunities detected",
		}),
		ArbOpportunitiesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbitrage",
			Name:      "opportunities_skipped_total",
			Help:      "Total number of opportunities below the profit threshold",
		}),
		ArbTradesExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbitrage",
			Name:      "trades_executed_total",
			Help:      "Total number of executed arbitrage trades",
		}),
		ArbProfitTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arbitrage",
			Name:      "profit_total",
			Help:      "Cumulative arbitrage profit in asset B terms",
		}),

		LPSwitches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "lp_switches_total",
			Help:      "Total number of LP pool switches",
		}),
		PoolTVL: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "pool_tvl",
			Help:      "Pool TVL valued at the external price, asset B terms",
		}, []string{"pool"}),
		PoolSpot: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "pool_spot_price",
			Help:      "Pool spot price, asset B per asset A",
		}, []string{"pool"}),

		DaysSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "days_simulated_total",
			Help:      "Total number of simulated days completed",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "runner",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of complete simulation runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeExecuted increments trade counters for one executed trade.
func RecordTradeExecuted(pool, traderKind string, volume float64) {
	DefaultMetrics.TradesExecuted.WithLabelValues(pool, traderKind).Inc()
	DefaultMetrics.VolumeTraded.WithLabelValues(pool).Add(volume)
}

// RecordTradeRejected increments the rejected-trade counter.
func RecordTradeRejected(pool string) {
	DefaultMetrics.TradesRejected.WithLabelValues(pool).Inc()
}

// RecordFeeUpdate records one daily fee transition.
func RecordFeeUpdate(pool string, direction int, newFee float64) {
	label := "hold"
	switch {
	case direction > 0:
		label = "up"
	case direction < 0:
		label = "down"
	}
	DefaultMetrics.FeeUpdates.WithLabelValues(pool, label).Inc()
	DefaultMetrics.CurrentFee.WithLabelValues(pool).Set(newFee)
}

// RecordArbOpportunity records a detected opportunity and its outcome.
func RecordArbOpportunity(executed bool, profit float64) {
	DefaultMetrics.ArbOpportunitiesFound.Inc()
	if executed {
		DefaultMetrics.ArbTradesExecuted.Inc()
		if profit > 0 {
			DefaultMetrics.ArbProfitTotal.Add(profit)
		}
	} else {
		DefaultMetrics.ArbOpportunitiesSkipped.Inc()
	}
}

// RecordLPSwitch increments the LP switch counter.
func RecordLPSwitch() {
	DefaultMetrics.LPSwitches.Inc()
}

// UpdatePoolGauges refreshes the per-pool state gauges.
func UpdatePoolGauges(pool string, tvl, spot float64) {
	DefaultMetrics.PoolTVL.WithLabelValues(pool).Set(tvl)
	DefaultMetrics.PoolSpot.WithLabelValues(pool).Set(spot)
}

// RecordDayComplete increments the simulated-day counter.
func RecordDayComplete() {
	DefaultMetrics.DaysSimulated.Inc()
}

// RecordRunDuration observes one complete run's wall-clock time.
func RecordRunDuration(seconds float64) {
	DefaultMetrics.RunDuration.Observe(seconds)
}
