// Package schedule provides polling interval strategies for watching
// asynchronous jobs. All strategies are safe for concurrent use.
package schedule

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/vigilhq/vigil"
)

// Strategy computes the wait before the next status check.
type Strategy interface {
	// Interval returns how long to wait before poll attempt n (1-indexed).
	// Attempt 1 is the first wait after the initial status check.
	Interval(attempt int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant always returns the same interval regardless of attempt number.
type Constant struct {
	Every time.Duration
}

// NewConstant creates a constant interval strategy.
func NewConstant(every time.Duration) *Constant {
	return &Constant{Every: every}
}

// Interval returns the fixed interval.
func (c *Constant) Interval(_ int) time.Duration {
	return c.Every
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the interval each attempt until it reaches a stable
// ceiling. Interval = min(Initial * 2^(attempt-1), Stable). Intervals only
// grow or stay flat; there is no jitter.
type Exponential struct {
	Initial time.Duration
	Stable  time.Duration
}

// NewExponential creates an exponential backoff strategy.
func NewExponential(initial, stable time.Duration) *Exponential {
	return &Exponential{Initial: initial, Stable: stable}
}

// Interval returns Initial * 2^(attempt-1), capped at Stable.
func (e *Exponential) Interval(attempt int) time.Duration {
	d := time.Duration(float64(e.Initial) * math.Pow(2, float64(attempt-1)))
	if e.Stable > 0 && d > e.Stable {
		return e.Stable
	}
	return d
}

// ──────────────────────────────────────────────────
// ExponentialWithJitter (full jitter)
// ──────────────────────────────────────────────────

// ExponentialWithJitter applies full jitter to an exponential base.
// Interval = random value in [0, min(Initial * 2^(attempt-1), Stable)].
// This prevents thundering herd when many watchers poll simultaneously.
type ExponentialWithJitter struct {
	Initial time.Duration
	Stable  time.Duration
}

// NewExponentialWithJitter creates an exponential backoff with full jitter.
func NewExponentialWithJitter(initial, stable time.Duration) *ExponentialWithJitter {
	return &ExponentialWithJitter{Initial: initial, Stable: stable}
}

// Interval returns a random duration in [0, min(Initial * 2^(attempt-1), Stable)].
func (e *ExponentialWithJitter) Interval(attempt int) time.Duration {
	base := float64(e.Initial) * math.Pow(2, float64(attempt-1))
	if e.Stable > 0 && base > float64(e.Stable) {
		base = float64(e.Stable)
	}
	return time.Duration(rand.Float64() * base) //nolint:gosec // jitter intentionally uses non-crypto rand
}

// ──────────────────────────────────────────────────
// Predictive
// ──────────────────────────────────────────────────

// PredictiveConfig configures a Predictive strategy.
type PredictiveConfig struct {
	// Start is when the job was created. Zero means time.Now at
	// construction.
	Start time.Time

	// Deadline is the expected completion time relative to Start.
	// Required; NewPredictive rejects a zero or negative value.
	Deadline time.Duration

	// A, B, C are the quadratic coefficients applied to the remaining
	// time in milliseconds: raw = A*r² + B*r + C, yielding milliseconds.
	A, B, C float64

	// Min and Max clamp the computed interval.
	Min, Max time.Duration
}

// Predictive shrinks the interval as the expected completion time
// approaches. With non-negative coefficients the interval is monotonically
// non-increasing toward the deadline, sits at Max while the raw value
// overshoots it, and collapses to Min once the deadline has passed —
// including indefinitely, when the job runs longer than expected.
type Predictive struct {
	cfg PredictiveConfig

	// Now overrides the clock. Intended for tests; nil means time.Now.
	Now func() time.Time
}

// NewPredictive creates a predictive strategy. It fails with
// vigil.ErrNoDeadline when no expected completion time is configured, and
// with vigil.ErrInvalidIntervals when the clamp bounds are inverted.
func NewPredictive(cfg PredictiveConfig) (*Predictive, error) {
	if cfg.Deadline <= 0 {
		return nil, vigil.ErrNoDeadline
	}
	if cfg.Max > 0 && cfg.Max < cfg.Min {
		return nil, vigil.ErrInvalidIntervals
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}
	return &Predictive{cfg: cfg}, nil
}

// Interval evaluates the quadratic over the time remaining until the
// deadline and clamps the result to [Min, Max]. The attempt number is
// irrelevant here; only the clock matters.
func (p *Predictive) Interval(_ int) time.Duration {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	remaining := p.cfg.Deadline - now().Sub(p.cfg.Start)
	if remaining < 0 {
		remaining = 0
	}

	r := float64(remaining.Milliseconds())
	raw := p.cfg.A*r*r + p.cfg.B*r + p.cfg.C
	return clamp(time.Duration(raw*float64(time.Millisecond)), p.cfg.Min, p.cfg.Max)
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if hi > 0 && d > hi {
		return hi
	}
	return d
}

// ──────────────────────────────────────────────────
// Default
// ──────────────────────────────────────────────────

// DefaultStrategy returns the default strategy used by the poll loop:
// Exponential with 1s initial and 8s stable ceiling.
func DefaultStrategy() Strategy {
	return NewExponential(1*time.Second, 8*time.Second)
}
