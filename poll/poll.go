// Package poll drives repeated status checks against an asynchronous job
// until it reaches a terminal state.
//
// The loop is deliberately dumb about transport: it consumes a StatusFunc
// capability supplied by the caller and treats any error from it as fatal.
// Scheduling between checks is delegated to a schedule.Strategy, and
// cross-cutting concerns (retry, tracing, throttling) are layered onto the
// capability with the middleware package.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/id"
	"github.com/vigilhq/vigil/job"
	"github.com/vigilhq/vigil/middleware"
	"github.com/vigilhq/vigil/schedule"
)

// StatusFunc is the capability the loop consumes from its environment:
// one status check for one job. It may suspend and may fail with a
// transport error.
type StatusFunc func(ctx context.Context, jobID string) (job.Status, error)

// State is the lifecycle state of a watch session.
type State string

const (
	// StateWaiting means the session has not issued a check yet.
	StateWaiting State = "waiting"
	// StatePolling means the session is between checks.
	StatePolling State = "polling"
	// StateCompleted means the job finished successfully.
	StateCompleted State = "completed"
	// StateFailed means the job failed or the capability errored.
	StateFailed State = "failed"
	// StateCancelled means the caller cancelled the watch.
	StateCancelled State = "cancelled"
)

// Result summarises a finished watch session.
type Result struct {
	SessionID id.ID         `json:"session_id"`
	JobID     string        `json:"job_id"`
	State     State         `json:"state"`
	Status    job.Status    `json:"status,omitempty"`
	Polls     int           `json:"polls"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Loop repeatedly checks a job's status until it is terminal. A Loop is
// reusable and safe for concurrent use; each Watch call runs an independent
// session with no shared mutable state.
type Loop struct {
	check    StatusFunc
	strategy schedule.Strategy
	logger   *slog.Logger
	mw       middleware.Middleware
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithMiddleware wraps the status-check capability with the given
// middleware, outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(l *Loop) { l.mw = middleware.Chain(mws...) }
}

// New creates a Loop around the given capability and interval strategy.
// A nil strategy falls back to schedule.DefaultStrategy. A nil capability
// fails with vigil.ErrNoStatusCheck.
func New(check StatusFunc, strategy schedule.Strategy, opts ...Option) (*Loop, error) {
	if check == nil {
		return nil, vigil.ErrNoStatusCheck
	}
	if strategy == nil {
		strategy = schedule.DefaultStrategy()
	}

	l := &Loop{
		check:    check,
		strategy: strategy,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Watch polls the job until it reaches a terminal state, the capability
// fails, or ctx is cancelled. It blocks for the duration of the session.
//
// The returned Result is always non-nil. The error is nil only when the job
// completed: a terminal error outcome surfaces as vigil.ErrTranslationFailed,
// a capability failure propagates immediately without retry, and
// cancellation surfaces as vigil.ErrWatchCancelled.
func (l *Loop) Watch(ctx context.Context, jobID string) (*Result, error) {
	res := &Result{
		SessionID: id.NewSessionID(),
		JobID:     jobID,
		State:     StateWaiting,
	}
	start := time.Now()

	l.logger.Info("watch started",
		slog.String("session_id", res.SessionID.String()),
		slog.String("job_id", jobID),
	)

	for {
		res.State = StatePolling
		st, err := l.checkOnce(ctx, jobID)
		res.Polls++

		if err != nil {
			res.State = StateFailed
			res.Elapsed = time.Since(start)
			l.logger.Error("watch failed",
				slog.String("session_id", res.SessionID.String()),
				slog.String("job_id", jobID),
				slog.Int("polls", res.Polls),
				slog.String("error", err.Error()),
			)
			return res, fmt.Errorf("poll: status check: %w", err)
		}

		switch st {
		case job.StatusCompleted:
			res.State = StateCompleted
			res.Status = st
			res.Elapsed = time.Since(start)
			l.logger.Info("watch completed",
				slog.String("session_id", res.SessionID.String()),
				slog.String("job_id", jobID),
				slog.Int("polls", res.Polls),
				slog.Duration("elapsed", res.Elapsed),
			)
			return res, nil

		case job.StatusError:
			res.State = StateFailed
			res.Status = st
			res.Elapsed = time.Since(start)
			l.logger.Error("watch failed",
				slog.String("session_id", res.SessionID.String()),
				slog.String("job_id", jobID),
				slog.Int("polls", res.Polls),
				slog.String("error", vigil.ErrTranslationFailed.Error()),
			)
			return res, vigil.ErrTranslationFailed
		}

		// Non-terminal: wait out the strategy's interval, the session's
		// only suspension point.
		wait := l.strategy.Interval(res.Polls)
		l.logger.Debug("job pending",
			slog.String("session_id", res.SessionID.String()),
			slog.String("job_id", jobID),
			slog.Int("polls", res.Polls),
			slog.Duration("next_check_in", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.State = StateCancelled
			res.Elapsed = time.Since(start)
			l.logger.Warn("watch cancelled",
				slog.String("session_id", res.SessionID.String()),
				slog.String("job_id", jobID),
				slog.Int("polls", res.Polls),
			)
			return res, vigil.ErrWatchCancelled
		case <-timer.C:
		}
	}
}

// checkOnce runs a single status check through the middleware chain.
func (l *Loop) checkOnce(ctx context.Context, jobID string) (job.Status, error) {
	if l.mw == nil {
		return l.check(ctx, jobID)
	}
	return l.mw(ctx, jobID, func(ctx context.Context) (job.Status, error) {
		return l.check(ctx, jobID)
	})
}
