package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vigilhq/vigil/job"
)

// Recover returns middleware that recovers from panics in the handler chain.
// Panics are converted to errors and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, jobID string, next Handler) (st job.Status, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("status check panicked",
					slog.String("job_id", jobID),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				st = ""
				retErr = fmt.Errorf("panic checking job %s: %v", jobID, r)
			}
		}()
		return next(ctx)
	}
}
