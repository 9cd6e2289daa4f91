package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/vigilhq/vigil/job"
)

// Throttle returns middleware that caps the rate of status checks using a
// shared token-bucket limiter. Useful when many watchers poll the same
// backend through one client.
func Throttle(limiter *rate.Limiter) Middleware {
	return func(ctx context.Context, _ string, next Handler) (job.Status, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		return next(ctx)
	}
}
