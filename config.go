package vigil

import "time"

// Config holds the simulation parameters applied when a job is created.
type Config struct {
	// MinDelay is the lower bound of the randomized translation duration.
	MinDelay time.Duration

	// MaxDelay is the upper bound of the randomized translation duration.
	// The actual duration is drawn uniformly from [MinDelay, MaxDelay]
	// (inclusive, millisecond granularity) once at creation.
	MaxDelay time.Duration

	// ErrorRate is the probability in [0, 1] that a job is assigned the
	// error outcome at creation. The draw happens exactly once; a job
	// never fails (or recovers) after the fact.
	ErrorRate float64
}

// DefaultConfig returns a Config with sensible simulation defaults.
func DefaultConfig() Config {
	return Config{
		MinDelay:  5 * time.Second,
		MaxDelay:  30 * time.Second,
		ErrorRate: 0.1,
	}
}

// Validate checks the config for internal consistency.
func (c Config) Validate() error {
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return ErrInvalidDelayRange
	}
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return ErrInvalidErrorRate
	}
	return nil
}
