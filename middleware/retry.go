package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/job"
	"github.com/vigilhq/vigil/schedule"
)

// Retry returns middleware that re-issues a failed status check up to
// maxAttempts times, waiting strategy.Interval between attempts.
//
// Only transport-level failures are retried. Caller errors
// (vigil.ErrJobNotFound, vigil.ErrInvalidJobID) and context cancellation
// propagate immediately. A job whose status is StatusError is a successful
// check with a terminal answer, not a failure, so it is never retried.
func Retry(maxAttempts int, strategy schedule.Strategy, logger *slog.Logger) Middleware {
	if strategy == nil {
		strategy = schedule.DefaultStrategy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, jobID string, next Handler) (job.Status, error) {
		var st job.Status
		var err error

		for attempt := 1; ; attempt++ {
			st, err = next(ctx)
			if err == nil || !retryable(err) || attempt >= maxAttempts {
				return st, err
			}

			wait := strategy.Interval(attempt)
			logger.Warn("status check failed, retrying",
				slog.String("job_id", jobID),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()),
			)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, vigil.ErrJobNotFound),
		errors.Is(err, vigil.ErrInvalidJobID),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
