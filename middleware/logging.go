package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/vigilhq/vigil/job"
)

// Logging returns middleware that logs every status check and its result.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, jobID string, next Handler) (job.Status, error) {
		start := time.Now()
		st, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("status check failed",
				slog.String("job_id", jobID),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Debug("status check",
				slog.String("job_id", jobID),
				slog.String("status", string(st)),
				slog.Duration("elapsed", elapsed),
			)
		}

		return st, err
	}
}
