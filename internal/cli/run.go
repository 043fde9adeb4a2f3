package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairsim/fairsim/internal/arrival"
	"github.com/fairsim/fairsim/internal/config"
	"github.com/fairsim/fairsim/internal/dag"
	"github.com/fairsim/fairsim/internal/experiment"
	"github.com/fairsim/fairsim/internal/metrics"
	"github.com/fairsim/fairsim/internal/persistence"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("catalog", "c", "", "path to a workload catalog TOML file (required)")
	runCmd.Flags().StringSliceP("class", "r", nil, "request_type:rate arrival class, repeatable")
	runCmd.Flags().Float64("horizon", 0, "simulated horizon in seconds (overrides config default)")
	runCmd.Flags().Int("replicas", 0, "number of independent replicas to average over (overrides config default)")
	runCmd.Flags().Int("max-concurrent", 0, "concurrency cap on simultaneously-running replicas")
	runCmd.Flags().Uint64("seed", 0, "base RNG seed (overrides config default)")
	runCmd.MarkFlagRequired("catalog")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload catalog and report per-request-type latency percentiles",
	RunE:  runRun,
}

func parseClassRates(raw []string) ([]arrival.ClassRate, error) {
	classes := make([]arrival.ClassRate, 0, len(raw))
	for _, spec := range raw {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --class %q, want request_type:rate", spec)
		}
		rate, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate in --class %q: %w", spec, err)
		}
		classes = append(classes, arrival.ClassRate{RequestType: parts[0], Rate: rate})
	}
	return classes, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if p := configPath(cmd); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	catalogPath, _ := cmd.Flags().GetString("catalog")
	classRaw, _ := cmd.Flags().GetStringSlice("class")
	horizonFlag, _ := cmd.Flags().GetFloat64("horizon")
	replicasFlag, _ := cmd.Flags().GetInt("replicas")
	maxConcurrentFlag, _ := cmd.Flags().GetInt("max-concurrent")
	seedFlag, _ := cmd.Flags().GetUint64("seed")

	cat, err := dag.LoadTOMLFile(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	classes, err := parseClassRates(classRaw)
	if err != nil {
		return err
	}

	horizon := horizonFlag
	if horizon == 0 {
		horizon, err = config.ParseHorizonSeconds(cfg.Simulation.Horizon)
		if err != nil {
			return err
		}
	}
	replicas := replicasFlag
	if replicas == 0 {
		replicas = cfg.Simulation.Replicas
	}
	maxConcurrent := maxConcurrentFlag
	if maxConcurrent == 0 {
		maxConcurrent = cfg.Simulation.MaxConcurrent
	}
	seed := seedFlag
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}

	wl := experiment.Workload{Capacities: cat.Capacities(), Catalog: cat, Classes: classes}
	runner := experiment.NewRunner(experiment.Config{Replicas: replicas, MaxConcurrent: maxConcurrent, Horizon: horizon})
	collector := metrics.NewMemoryCollector()

	results := runner.Run(cmd.Context(), wl, collector, seed)
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("replica %d: %w", res.ReplicaIndex, res.Err)
		}
	}

	if cfg.Persistence.Enabled {
		db, err := persistence.Open(cfg.Persistence.DBPath)
		if err != nil {
			return fmt.Errorf("open persistence db: %w", err)
		}
		defer db.Close()
		runID := fmt.Sprintf("cli-%d", seed)
		if err := db.SaveResults(runID, collector); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
	}

	printSummary(cmd, collector)
	return nil
}

func printSummary(cmd *cobra.Command, collector *metrics.MemoryCollector) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %10s %10s %10s %10s %10s\n", "request_type", "count", "p50", "p90", "p95", "p99")
	for _, reqType := range collector.RequestTypes() {
		p50, _ := collector.Percentile(reqType, 50)
		p90, _ := collector.Percentile(reqType, 90)
		p95, _ := collector.Percentile(reqType, 95)
		p99, _ := collector.Percentile(reqType, 99)
		fmt.Fprintf(out, "%-20s %10d %10.3f %10.3f %10.3f %10.3f\n",
			reqType, collector.Count(reqType), p50, p90, p95, p99)
	}
}
