package vigil

import "errors"

var (
	// Store errors.
	ErrInvalidJobID = errors.New("vigil: invalid job id")
	ErrJobExists    = errors.New("vigil: job already exists")
	ErrJobNotFound  = errors.New("vigil: job not found")

	// Simulation config errors.
	ErrInvalidDelayRange = errors.New("vigil: min delay exceeds max delay")
	ErrInvalidErrorRate  = errors.New("vigil: error rate outside [0, 1]")

	// Polling errors.
	ErrTranslationFailed = errors.New("vigil: translation failed")
	ErrWatchCancelled    = errors.New("vigil: watch cancelled")
	ErrNoStatusCheck     = errors.New("vigil: no status check configured")

	// Scheduler config errors.
	ErrNoDeadline       = errors.New("vigil: no expected completion time configured")
	ErrInvalidIntervals = errors.New("vigil: minimum interval exceeds maximum interval")
)
