package arrival

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer releases a pre-generated Arrival stream at wall-clock speed, scaled
// by a simulated-time-per-second factor, for live dashboard demos that want
// to "watch" a run unfold rather than get the batch result instantly. It is
// never used by the batch simulation path, which consumes arrivals as pure
// data (spec.md §9, "Global state").
//
// Grounded in goa-ai's AdaptiveRateLimiter (features/model/middleware/ratelimit.go):
// same token-bucket primitive, here wrapping simulated-time delivery instead
// of a provider's tokens-per-minute budget.
type Pacer struct {
	limiter     *rate.Limiter
	timeScale   float64 // simulated time units per wall-clock second
	arrivals    []Arrival
	lastEmitted float64
}

// NewPacer builds a Pacer over a fixed arrival batch. timeScale of 1.0 means
// one simulated time unit per wall-clock second; higher values play the
// stream back faster than simulated time.
func NewPacer(arrivals []Arrival, timeScale float64) *Pacer {
	if timeScale <= 0 {
		timeScale = 1.0
	}
	// burst of 1: deliveries are paced one event at a time, not bursted,
	// since the caller wants to observe arrivals as they "happen". A new
	// limiter starts with a full bucket; spend that token so the first
	// arrival also waits out its gap from simulated time zero.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()
	return &Pacer{
		limiter:   limiter,
		timeScale: timeScale,
		arrivals:  arrivals,
	}
}

// Next blocks until wall-clock time has advanced enough to correspond to the
// next arrival's simulated timestamp, then returns it. Returns false once
// the batch is exhausted or ctx is canceled.
func (p *Pacer) Next(ctx context.Context) (Arrival, bool) {
	if len(p.arrivals) == 0 {
		return Arrival{}, false
	}
	a := p.arrivals[0]
	gap := (a.Time - p.lastEmitted) / p.timeScale
	if gap > 0 {
		p.limiter.SetLimit(rate.Every(time.Duration(gap * float64(time.Second))))
		if err := p.limiter.WaitN(ctx, 1); err != nil {
			return Arrival{}, false
		}
	}
	p.arrivals = p.arrivals[1:]
	p.lastEmitted = a.Time
	return a, true
}

// Remaining reports how many arrivals are left to deliver.
func (p *Pacer) Remaining() int { return len(p.arrivals) }
