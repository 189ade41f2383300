package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"amm-fee-lab/internal/agents"
	"amm-fee-lab/internal/amm"
	"amm-fee-lab/internal/arb"
	"amm-fee-lab/internal/config"
	"amm-fee-lab/internal/dynfee"
	"amm-fee-lab/internal/feed"
	"amm-fee-lab/internal/observability"
	"amm-fee-lab/internal/reporting"
	"amm-fee-lab/internal/simulation"
	"amm-fee-lab/internal/storage/memory"
)

func main() {
	root := &cobra.Command{
		Use:          "simlab",
		Short:        "Adaptive-fee AMM simulation lab",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full market simulation",
		RunE:  runSimulation,
	}

	runCmd.Flags().Int("days", 365, "simulated days")
	runCmd.Flags().Int64("seed", 42, "random seed")
	runCmd.Flags().StringSlice("pools", []string{"pool-standard:standard"}, "pool specs (id:type, comma-separated)")
	runCmd.Flags().Float64("reserve-a", 1_000, "initial asset A reserve per pool")
	runCmd.Flags().Float64("reserve-b", 3_000_000, "initial asset B reserve per pool")
	runCmd.Flags().String("price-source", "gbm", "external price source (gbm, csv, ws)")
	runCmd.Flags().Float64("initial-price", 3_000, "initial external price (gbm)")
	runCmd.Flags().Float64("mu", 0.05, "annualized drift (gbm)")
	runCmd.Flags().Float64("sigma", 0.8, "annualized volatility (gbm)")
	runCmd.Flags().String("bars-file", "", "OHLCV CSV path (csv)")
	runCmd.Flags().String("ws-url", "", "ticker WebSocket endpoint (ws)")
	runCmd.Flags().String("ws-symbol", "ETHUSD", "ticker symbol (ws)")
	runCmd.Flags().Float64("external-fee", 0.001, "external venue fee")
	runCmd.Flags().Float64("max-capital", 1_000_000, "arbitrageur capital cap, asset B")
	runCmd.Flags().Float64("min-arb-profit", 1, "minimum profit to execute arbitrage, asset B")
	runCmd.Flags().Int("retail-traders", 100, "retail trader count")
	runCmd.Flags().Int("whale-traders", 5, "whale trader count")
	runCmd.Flags().Int("passive-lps", 20, "passive LP count")
	runCmd.Flags().Int("active-lps", 5, "active LP count")
	runCmd.Flags().Float64("lp-capital", 100_000, "capital per LP, asset B")
	runCmd.Flags().String("report-dir", "./reports", "report output directory")
	runCmd.Flags().String("metrics-addr", "", "Prometheus listen address (empty disables)")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)
	root.AddCommand(newReplayCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
		logger.Info("metrics endpoint listening", zap.String("addr", cfg.MetricsAddr))
	}

	prices, cleanup, err := buildPriceSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	setups := make([]simulation.PoolSetup, 0, len(cfg.Pools))
	for _, spec := range cfg.Pools {
		feeCfg, err := dynfee.ConfigByType(spec.Type)
		if err != nil {
			return err
		}
		pool, err := amm.New(spec.ID, cfg.ReserveA, cfg.ReserveB, feeCfg.InitialFee)
		if err != nil {
			return fmt.Errorf("pool %s: %w", spec.ID, err)
		}
		setups = append(setups, simulation.PoolSetup{
			Pool:   pool,
			Config: feeCfg,
			State:  dynfee.InitializeState(feeCfg.InitialFee),
		})
	}

	dayStore := memory.NewDayRecordStore()
	tradeStore := memory.NewTradeLogStore()

	runner, err := simulation.NewRunner(simulation.RunnerOptions{
		Pools:        setups,
		Prices:       prices,
		Days:         cfg.Days,
		Seed:         cfg.Seed,
		Traders:      agents.NewTraderPopulation(cfg.RetailTraders, cfg.WhaleTraders, cfg.Seed),
		LPs:          agents.NewLPPopulation(cfg.PassiveLPs, cfg.ActiveLPs, cfg.LPCapital, cfg.Seed+1),
		Arb:          arb.NewCalculator(cfg.ExternalFee, cfg.MaxCapital),
		MinArbProfit: cfg.MinArbProfit,
		DayRecords:   dayStore,
		TradeLogs:    tradeStore,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	results, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	report, err := reporting.NewGenerator(dayStore, tradeStore).Generate(ctx, results.RunID)
	if err != nil {
		return err
	}
	return writeReports(cfg.ReportDir, report, logger)
}

// buildPriceSource wires the configured external price source. The
// returned cleanup releases any underlying file or connection.
func buildPriceSource(ctx context.Context, cfg config.Config) (feed.PriceSource, func(), error) {
	switch cfg.PriceSource {
	case config.SourceGBM:
		src, err := feed.NewGBMSource(cfg.InitialPrice, cfg.Mu, cfg.Sigma, 0,
			rand.New(rand.NewSource(cfg.Seed^0x5eed)))
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	case config.SourceCSV:
		bars, err := feed.OpenCSVBarSource(cfg.BarsFile)
		if err != nil {
			return nil, nil, err
		}
		return feed.NewClosePriceSource(bars), func() { bars.Close() }, nil
	case config.SourceWS:
		src, err := feed.NewWSTickerSource(ctx, cfg.WSURL, cfg.WSSymbol, nil)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown price source %q", cfg.PriceSource)
	}
}

func writeReports(dir string, report *reporting.Report, logger *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	csvPath := filepath.Join(dir, "summary.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.PoolSummaries)), 0o644); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}

	mdPath := filepath.Join(dir, "report.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	logger.Info("reports written",
		zap.String("run_id", report.RunID),
		zap.String("csv", csvPath),
		zap.String("markdown", mdPath),
	)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
