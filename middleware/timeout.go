package middleware

import (
	"context"
	"time"

	"github.com/vigilhq/vigil/job"
)

// Timeout returns middleware that enforces a per-check deadline. When the
// deadline is exceeded the context is cancelled and the capability should
// return context.DeadlineExceeded.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ string, next Handler) (job.Status, error) {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
