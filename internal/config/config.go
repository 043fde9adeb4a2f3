// Package config loads fairsim's own process configuration (simulation
// defaults, server bind address, persistence/metrics sinks) from TOML, in
// the shape the teacher's internal/daemon config uses: nested sections, a
// DefaultConfig constructor, and ParseXxx helpers for derived units. This is
// distinct from internal/dag's TOML loader, which authors workload catalogs
// (resource capacities, tool templates, DAGs), not fairsim's own settings.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is fairsim's top-level configuration document.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Simulation  SimulationConfig  `toml:"simulation"`
	Persistence PersistenceConfig `toml:"persistence"`
	Metrics     MetricsConfig     `toml:"metrics"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SimulationConfig sets the defaults an experiment.Runner is built with when
// a run doesn't override them explicitly.
type SimulationConfig struct {
	Replicas      int    `toml:"replicas"`
	MaxConcurrent int    `toml:"max_concurrent"`
	Horizon       string `toml:"horizon"` // duration string, e.g. "1000s"; see ParseHorizonSeconds
	Seed          uint64 `toml:"seed"`
}

// PersistenceConfig selects where snapshots and results are stored.
type PersistenceConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// MetricsConfig holds the metrics sink settings. Prometheus enables the
// /metrics endpoint of `fairsim serve`; the Redis fields are parsed but no
// command reads them, so no run reports to Redis.
type MetricsConfig struct {
	Prometheus bool `toml:"prometheus"`

	Redis       bool   `toml:"redis"`
	RedisAddr   string `toml:"redis_addr"`
	RedisStream string `toml:"redis_stream"`
}

// DefaultConfig returns fairsim's built-in defaults, used whenever a TOML
// document leaves a field unset.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8089,
		},
		Simulation: SimulationConfig{
			Replicas:      8,
			MaxConcurrent: 4,
			Horizon:       "1000s",
			Seed:          1,
		},
		Persistence: PersistenceConfig{
			Enabled: false,
			DBPath:  "fairsim.db",
		},
		Metrics: MetricsConfig{
			Prometheus:  true,
			Redis:       false,
			RedisAddr:   "127.0.0.1:6379",
			RedisStream: "fairsim:samples",
		},
	}
}

// Load reads and decodes a TOML config document from path, filling unset
// fields from DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: %s: unrecognized keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ParseHorizonSeconds parses SimulationConfig.Horizon into simulated
// seconds. Bare numbers (e.g. "1000") are accepted as seconds directly;
// suffixed durations (e.g. "90m") are parsed with time.ParseDuration.
func ParseHorizonSeconds(horizon string) (float64, error) {
	if horizon == "" {
		d, _ := time.ParseDuration(DefaultConfig().Simulation.Horizon)
		return d.Seconds(), nil
	}
	if v, err := strconv.ParseFloat(horizon, 64); err == nil {
		return v, nil
	}
	d, err := time.ParseDuration(horizon)
	if err != nil {
		return 0, fmt.Errorf("config: invalid horizon %q: %w", horizon, err)
	}
	return d.Seconds(), nil
}
