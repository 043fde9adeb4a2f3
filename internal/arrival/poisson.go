// Package arrival produces the monotonically non-decreasing arrival-event
// streams simcore.Engine.Schedule consumes. It never touches engine internals
// — it is purely a timestamp generator external to the core (spec.md §6,
// "Inputs consumed").
package arrival

import (
	"math"
	"math/rand/v2"
)

// ClassRate is one request type's arrival rate, in events per simulated time
// unit.
type ClassRate struct {
	RequestType string
	Rate        float64 // lambda, events per unit time; a rate <= 0 disables the class
}

// PoissonGenerator draws i.i.d. Exponential(lambda) interarrival times per
// request-type class and superposes them into one combined, time-ordered
// stream — a multi-class Poisson process. Each class's arrivals are
// independent; the merged stream is itself Poisson with the summed rate,
// which is exactly the property callers probing "sustainable throughput"
// under a load mix rely on.
type PoissonGenerator struct {
	classes []ClassRate
	rng     *rand.Rand
	next    []float64 // next arrival time scheduled so far, per class index
	primed  []bool    // whether next[i] has been seeded yet
}

// NewPoissonGenerator constructs a generator seeded deterministically from
// seed, so replica runs in internal/experiment are reproducible given the
// same seed.
func NewPoissonGenerator(seed uint64, classes []ClassRate) *PoissonGenerator {
	return &PoissonGenerator{
		classes: classes,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		next:    make([]float64, len(classes)),
		primed:  make([]bool, len(classes)),
	}
}

// sampleExponential draws one Exponential(lambda) interarrival gap.
func (g *PoissonGenerator) sampleExponential(lambda float64) float64 {
	// -ln(U)/lambda, U uniform on (0,1); ExpFloat64 already implements this
	// but we spell it out so lambda=0 (disabled class) is handled explicitly
	// as "never arrives" rather than dividing by zero.
	if lambda <= 0 {
		return math.Inf(1)
	}
	u := g.rng.Float64()
	for u == 0 {
		u = g.rng.Float64()
	}
	return -math.Log(u) / lambda
}

// Arrival is one generated request arrival.
type Arrival struct {
	RequestType string
	Time        float64
}

// Next returns the earliest not-yet-emitted arrival across all classes,
// advancing that class's internal clock. Generation is lazy and unbounded —
// callers pull arrivals until they have enough, or until Time exceeds a
// horizon they stop at.
func (g *PoissonGenerator) Next() Arrival {
	best := -1
	bestTime := math.Inf(1)
	for i, c := range g.classes {
		if !g.primed[i] {
			g.next[i] = g.sampleExponential(c.Rate)
			g.primed[i] = true
		}
		if g.next[i] < bestTime {
			bestTime = g.next[i]
			best = i
		}
	}
	if best < 0 {
		return Arrival{Time: math.Inf(1)}
	}
	result := Arrival{RequestType: g.classes[best].RequestType, Time: bestTime}
	g.next[best] = bestTime + g.sampleExponential(g.classes[best].Rate)
	return result
}

// GenerateUntil pulls arrivals from Next until the horizon is reached,
// returning them in time order. Intended for feeding a batch simulation run
// that consumes arrivals as pure pre-generated data (spec.md §9).
func (g *PoissonGenerator) GenerateUntil(horizon float64) []Arrival {
	var out []Arrival
	for {
		a := g.Next()
		if a.Time > horizon {
			return out
		}
		out = append(out, a)
	}
}
