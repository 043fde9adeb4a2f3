package experiment

import (
	"context"
	"fmt"

	"github.com/fairsim/fairsim/internal/arrival"
	"github.com/fairsim/fairsim/internal/metrics"
)

// SLA is a percentile threshold a request type's latency must stay under.
type SLA struct {
	RequestType string
	Percentile  float64 // e.g. 95 for p95
	MaxLatency  float64
}

// SearchConfig bounds a BinarySearch.
type SearchConfig struct {
	MinRate   float64
	MaxRate   float64
	Tolerance float64 // stop once the bracket narrows below this
	BaseSeed  uint64
}

// DefaultSearchConfig returns conservative search bounds.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{MinRate: 0.01, MaxRate: 1000, Tolerance: 0.01, BaseSeed: 1}
}

// SearchResult reports the binary search's outcome.
type SearchResult struct {
	MaxSustainableRate float64
	Iterations         int
	// Feasible is false if even MinRate violates the SLA — the workload
	// cannot sustain the SLA at any positive rate this search tried.
	Feasible bool
}

// BinarySearch finds the maximum arrival rate for sla.RequestType such that
// the seed-averaged percentile stays within sla.MaxLatency, holding every
// other class in wl.Classes fixed at its configured rate. It runs Runner at
// each candidate rate (spec.md §1, "given a latency SLA, what is the maximum
// arrival rate that still satisfies it").
func BinarySearch(ctx context.Context, runner *Runner, wl Workload, sla SLA, cfg SearchConfig) (SearchResult, error) {
	if cfg.MaxRate <= cfg.MinRate {
		return SearchResult{}, fmt.Errorf("experiment: MaxRate must exceed MinRate")
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultSearchConfig().Tolerance
	}

	satisfiesAt := func(rate float64) (bool, error) {
		candidate := withClassRate(wl, sla.RequestType, rate)
		collector := metrics.NewMemoryCollector()
		results := runner.Run(ctx, candidate, collector, cfg.BaseSeed)
		for _, r := range results {
			if r.Err != nil {
				return false, r.Err
			}
		}
		p, ok := collector.Percentile(sla.RequestType, sla.Percentile)
		if !ok {
			// No completions recorded for this request type at this rate —
			// treat as satisfying (nothing to violate), letting the search
			// push the rate higher.
			return true, nil
		}
		return p <= sla.MaxLatency, nil
	}

	lo, hi := cfg.MinRate, cfg.MaxRate
	loOK, err := satisfiesAt(lo)
	if err != nil {
		return SearchResult{}, err
	}
	if !loOK {
		return SearchResult{Feasible: false}, nil
	}

	iterations := 0
	for hi-lo > cfg.Tolerance {
		iterations++
		mid := (lo + hi) / 2
		ok, err := satisfiesAt(mid)
		if err != nil {
			return SearchResult{}, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}

	return SearchResult{MaxSustainableRate: lo, Iterations: iterations, Feasible: true}, nil
}

// withClassRate returns a copy of wl.Classes with requestType's rate replaced
// by rate, leaving every other class untouched.
func withClassRate(wl Workload, requestType string, rate float64) Workload {
	classes := make([]arrival.ClassRate, len(wl.Classes))
	copy(classes, wl.Classes)
	found := false
	for i, c := range classes {
		if c.RequestType == requestType {
			classes[i].Rate = rate
			found = true
		}
	}
	if !found {
		classes = append(classes, arrival.ClassRate{RequestType: requestType, Rate: rate})
	}
	out := wl
	out.Classes = classes
	return out
}
