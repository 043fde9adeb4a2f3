// Package experiment drives many independent simcore.Engine replicas and
// merges their results — the one place in fairsim where real goroutine
// concurrency is used, since each replica owns fully disjoint state
// (spec.md §5, "Outer-loop parallelism").
package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/fairsim/fairsim/internal/arrival"
	"github.com/fairsim/fairsim/internal/metrics"
	"github.com/fairsim/fairsim/internal/simcore"
)

// Config controls Runner concurrency, grounded directly on
// internal/app/executor.Config's MaxConcurrent semaphore pattern.
type Config struct {
	Replicas      int // number of independent simulation runs to average over
	MaxConcurrent int // concurrency cap on simultaneously-running replicas
	Horizon       float64
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{Replicas: 8, MaxConcurrent: 4, Horizon: 1000}
}

// Workload describes what one replica simulates: a catalog (templates + DAGs
// + capacities) and the per-request-type arrival rates to drive it with.
type Workload struct {
	Capacities simcore.ResourceTable
	Catalog    interface {
		simcore.TemplateProvider
		simcore.DAGProvider
	}
	Classes []arrival.ClassRate
}

// Result is one replica's outcome.
type Result struct {
	ReplicaIndex int
	Seed         uint64
	RunResult    simcore.RunResult
	Err          error
}

// Runner drives Config.Replicas independent replicas of a Workload,
// bounded by a semaphore exactly like executor.Executor's sem channel.
type Runner struct {
	cfg Config
}

// NewRunner constructs a Runner, defaulting unset fields from DefaultConfig.
func NewRunner(cfg Config) *Runner {
	if cfg.Replicas <= 0 {
		cfg.Replicas = DefaultConfig().Replicas
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = DefaultConfig().Horizon
	}
	return &Runner{cfg: cfg}
}

// idGenerator returns a per-replica NewID function. Each replica gets its
// own counter so IDs never collide across concurrently-running engines that
// might otherwise share an underlying generator's mutable state.
func idGenerator(replicaIndex int) func() string {
	n := 0
	return func() string {
		id := fmt.Sprintf("r%d-id-%d", replicaIndex, n)
		n++
		return id
	}
}

// Run drives all replicas against a shared collector (so per-request-type
// percentiles are seed-averaged across all of them) and returns one Result
// per replica in replica-index order, same as an ordered []*Result slice
// regardless of completion order.
func (r *Runner) Run(ctx context.Context, wl Workload, collector metrics.Collector, baseSeed uint64) []Result {
	results := make([]Result, r.cfg.Replicas)
	sem := make(chan struct{}, r.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Replicas; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			seed := baseSeed + uint64(idx)
			results[idx] = r.runOne(ctx, wl, collector, idx, seed)
		}(i)
	}
	wg.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, wl Workload, collector metrics.Collector, idx int, seed uint64) Result {
	engine, err := simcore.NewEngine(simcore.EngineConfig{
		Capacities: wl.Capacities,
		Templates:  wl.Catalog,
		DAGs:       wl.Catalog,
		Metrics:    collector,
		NewID:      idGenerator(idx),
	})
	if err != nil {
		return Result{ReplicaIndex: idx, Seed: seed, Err: fmt.Errorf("experiment: replica %d: %w", idx, err)}
	}

	gen := arrival.NewPoissonGenerator(seed, wl.Classes)
	for _, a := range gen.GenerateUntil(r.cfg.Horizon) {
		if err := engine.Schedule(a.RequestType, a.Time); err != nil {
			return Result{ReplicaIndex: idx, Seed: seed, Err: fmt.Errorf("experiment: replica %d: schedule: %w", idx, err)}
		}
	}

	runResult, err := engine.Run(ctx, r.cfg.Horizon)
	if err != nil {
		return Result{ReplicaIndex: idx, Seed: seed, RunResult: runResult, Err: fmt.Errorf("experiment: replica %d: %w", idx, err)}
	}
	return Result{ReplicaIndex: idx, Seed: seed, RunResult: runResult}
}
