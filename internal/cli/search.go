package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairsim/fairsim/internal/config"
	"github.com/fairsim/fairsim/internal/dag"
	"github.com/fairsim/fairsim/internal/experiment"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("catalog", "c", "", "path to a workload catalog TOML file (required)")
	searchCmd.Flags().StringSliceP("class", "r", nil, "request_type:rate arrival class for every class except the SLA target, repeatable")
	searchCmd.Flags().String("sla-request-type", "", "request type the SLA applies to (required)")
	searchCmd.Flags().Float64("sla-percentile", 95, "latency percentile the SLA bounds, e.g. 95 for p95")
	searchCmd.Flags().Float64("sla-max-latency", 0, "maximum allowed latency at that percentile (required)")
	searchCmd.Flags().Float64("min-rate", 0.01, "lower bound of the search bracket")
	searchCmd.Flags().Float64("max-rate", 1000, "upper bound of the search bracket")
	searchCmd.Flags().Float64("tolerance", 0.01, "stop once the bracket narrows below this")
	searchCmd.Flags().Float64("horizon", 0, "simulated horizon in seconds (overrides config default)")
	searchCmd.Flags().Int("replicas", 0, "number of independent replicas per candidate rate")
	searchCmd.Flags().Int("max-concurrent", 0, "concurrency cap on simultaneously-running replicas")
	searchCmd.Flags().Uint64("seed", 0, "base RNG seed (overrides config default)")
	searchCmd.MarkFlagRequired("catalog")
	searchCmd.MarkFlagRequired("sla-request-type")
	searchCmd.MarkFlagRequired("sla-max-latency")
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Binary-search the maximum arrival rate for a request type that still satisfies a latency SLA",
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	slaRequestType, _ := cmd.Flags().GetString("sla-request-type")
	slaPercentile, _ := cmd.Flags().GetFloat64("sla-percentile")
	slaMaxLatency, _ := cmd.Flags().GetFloat64("sla-max-latency")
	minRate, _ := cmd.Flags().GetFloat64("min-rate")
	maxRate, _ := cmd.Flags().GetFloat64("max-rate")
	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
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
	sla := experiment.SLA{RequestType: slaRequestType, Percentile: slaPercentile, MaxLatency: slaMaxLatency}
	searchCfg := experiment.SearchConfig{MinRate: minRate, MaxRate: maxRate, Tolerance: tolerance, BaseSeed: seed}

	result, err := experiment.BinarySearch(cmd.Context(), runner, wl, sla, searchCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Feasible {
		fmt.Fprintf(out, "infeasible: %s p%g already exceeds %v at rate %v\n", slaRequestType, slaPercentile, slaMaxLatency, minRate)
		return nil
	}
	fmt.Fprintf(out, "max sustainable rate: %.4f (%d iterations)\n", result.MaxSustainableRate, result.Iterations)
	return nil
}
