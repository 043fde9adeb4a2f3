package cli

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fairsim/fairsim/internal/api"
	"github.com/fairsim/fairsim/internal/config"
	"github.com/fairsim/fairsim/internal/experiment"
	"github.com/fairsim/fairsim/internal/observability"
	"github.com/fairsim/fairsim/internal/persistence"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "bind host (overrides config default)")
	serveCmd.Flags().Int("port", 0, "bind port (overrides config default)")
	serveCmd.Flags().Bool("json-logs", false, "emit structured logs as JSON instead of text")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server for submitting runs and SLA searches",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if p := configPath(cmd); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	hostFlag, _ := cmd.Flags().GetString("host")
	portFlag, _ := cmd.Flags().GetInt("port")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")

	host := cfg.Server.Host
	if hostFlag != "" {
		host = hostFlag
	}
	port := cfg.Server.Port
	if portFlag != 0 {
		port = portFlag
	}

	logger := observability.NewLogger(jsonLogs, slog.LevelInfo)

	var store *persistence.DB
	if cfg.Persistence.Enabled {
		db, err := persistence.Open(cfg.Persistence.DBPath)
		if err != nil {
			return fmt.Errorf("open persistence db: %w", err)
		}
		defer db.Close()
		store = db
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Prometheus {
		registry = prometheus.NewRegistry()
	}

	runner := experiment.NewRunner(experiment.Config{
		Replicas:      cfg.Simulation.Replicas,
		MaxConcurrent: cfg.Simulation.MaxConcurrent,
	})

	srv := api.NewServer(runner, store, registry, logger)
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	logger.Info("starting fairsim API server", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
