// Package cli is fairsim's command-line entrypoint, mirroring the teacher's
// internal/cli command-tree style: a package-level rootCmd, subcommands
// registered from init() in their own files, flags bound with
// cmd.Flags().GetX in the RunE body rather than eagerly in init().
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fairsim",
	Short: "Discrete-event fair-share simulator for multi-agent DAG workloads",
	Long: `fairsim estimates per-request-type latency and throughput for
multi-agent workloads whose tools compete for shared divisible resources
(CPU, NPU, memory, network, disk) under continuous-time dynamic max-min
fair-share scheduling.`,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a fairsim.toml config file (optional)")
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configPath(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("config")
	return v
}
