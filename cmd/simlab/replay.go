package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"amm-fee-lab/internal/dynfee"
)

func newReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fee trajectory from recorded volume/TVL data",
		Long: "Reads daily volume,tvl rows from a CSV file and prints the fee " +
			"trajectory the adaptive algorithm would have produced, without " +
			"simulating traders or arbitrage.",
		RunE: runReplay,
	}

	replayCmd.Flags().String("in", "", "input CSV with header volume,tvl")
	replayCmd.Flags().String("pool-type", "standard", "fee profile (stable, standard, volatile)")
	replayCmd.Flags().Float64("seed-target", 0, "initial target ratio, 0 starts cold")

	return replayCmd
}

func runReplay(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("in")
	poolType, _ := cmd.Flags().GetString("pool-type")
	seedTarget, _ := cmd.Flags().GetFloat64("seed-target")

	if path == "" {
		return fmt.Errorf("--in is required")
	}

	cfg, err := dynfee.ConfigByType(poolType)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if header[0] != "volume" || header[1] != "tvl" {
		return fmt.Errorf("expected header volume,tvl; got %v", header)
	}

	state := dynfee.InitializeState(cfg.InitialFee)
	if seedTarget > 0 {
		state = dynfee.InitializeStateSeeded(cfg.InitialFee, seedTarget)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "day,fee,target_ratio,counter,direction")

	for day := 0; ; day++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", day+2, err)
		}

		volume, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return fmt.Errorf("row %d: volume %q: %w", day+2, rec[0], err)
		}
		tvl, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return fmt.Errorf("row %d: tvl %q: %w", day+2, rec[1], err)
		}

		fee, next, err := dynfee.AdvanceOneDay(volume, tvl, state, cfg)
		if err != nil {
			return fmt.Errorf("day %d: %w", day, err)
		}
		state = next

		fmt.Fprintf(out, "%d,%.8f,%.8f,%d,%d\n",
			day, fee, next.TargetRatio, next.ConsecutiveCounter, next.LastDirection)
	}

	return nil
}
