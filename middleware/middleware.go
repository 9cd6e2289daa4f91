package middleware

import (
	"context"

	"github.com/vigilhq/vigil/job"
)

// Handler is the terminal function that performs one status check.
type Handler func(ctx context.Context) (job.Status, error)

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the id of the job being watched, and the next handler to
// call. Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, jobID string, next Handler) (job.Status, error)

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recovery, retry) executes as:
//
//	logging → recovery → retry → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, jobID string, next Handler) (job.Status, error) {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) (job.Status, error) {
				return mw(ctx, jobID, prev)
			}
		}
		return h(ctx)
	}
}
