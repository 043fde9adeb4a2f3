package metrics

import "sort"

// maxSamples bounds a Histogram's memory the way the teacher's
// observability.Tracer bounds its span ring buffer: once full, the oldest
// sample is evicted to make room for the newest (internal/infra/observability,
// "Ring buffer: overwrite oldest if at capacity").
const maxSamples = 10_000

// Histogram is a streaming percentile estimator over a bounded reservoir of
// observations. It trades exactness for bounded memory: once maxSamples is
// reached, it evicts the oldest observation, biasing estimates toward recent
// behavior — appropriate for long experiment runs where early transient
// behavior should not dominate the final percentile report.
type Histogram struct {
	samples []float64
	next    int // ring-buffer write cursor once at capacity
	full    bool
	count   int // total observations ever recorded, not bounded by capacity
}

// NewHistogram returns an empty Histogram.
func NewHistogram() *Histogram {
	return &Histogram{samples: make([]float64, 0, maxSamples)}
}

// Observe records one latency sample.
func (h *Histogram) Observe(v float64) {
	h.count++
	if len(h.samples) < maxSamples {
		h.samples = append(h.samples, v)
		return
	}
	h.full = true
	h.samples[h.next] = v
	h.next = (h.next + 1) % maxSamples
}

// Count returns the total number of observations ever recorded (not capped
// by the reservoir size).
func (h *Histogram) Count() int { return h.count }

// Percentile returns the p-th percentile (0-100) of the samples currently
// held in the reservoir, interpolating linearly between the two closest
// ranks. Returns 0 if no
// samples have been recorded.
func (h *Histogram) Percentile(p float64) float64 {
	n := len(h.samples)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := (p / 100) * float64(n-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= n {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Mean returns the arithmetic mean of the samples currently held in the
// reservoir, or 0 if empty.
func (h *Histogram) Mean() float64 {
	if len(h.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range h.samples {
		sum += v
	}
	return sum / float64(len(h.samples))
}
