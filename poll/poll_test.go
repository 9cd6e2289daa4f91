package poll_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/job"
	"github.com/vigilhq/vigil/middleware"
	"github.com/vigilhq/vigil/poll"
	"github.com/vigilhq/vigil/schedule"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sequence returns a StatusFunc that replays the given answers in order,
// repeating the last one forever.
func sequence(answers ...job.Status) poll.StatusFunc {
	var mu sync.Mutex
	i := 0
	return func(_ context.Context, _ string) (job.Status, error) {
		mu.Lock()
		defer mu.Unlock()
		st := answers[i]
		if i < len(answers)-1 {
			i++
		}
		return st, nil
	}
}

// recordingStrategy remembers the attempt numbers it was asked about.
type recordingStrategy struct {
	mu       sync.Mutex
	attempts []int
}

func (r *recordingStrategy) Interval(attempt int) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return time.Millisecond
}

func TestNew_RequiresStatusCheck(t *testing.T) {
	t.Parallel()
	if _, err := poll.New(nil, nil); !errors.Is(err, vigil.ErrNoStatusCheck) {
		t.Fatalf("New(nil) error = %v, want %v", err, vigil.ErrNoStatusCheck)
	}
}

func TestWatch_CompletesImmediately(t *testing.T) {
	t.Parallel()
	loop, err := poll.New(sequence(job.StatusCompleted), schedule.NewConstant(time.Millisecond),
		poll.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := loop.Watch(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if res.State != poll.StateCompleted {
		t.Errorf("state = %q, want %q", res.State, poll.StateCompleted)
	}
	if res.Status != job.StatusCompleted {
		t.Errorf("status = %q, want %q", res.Status, job.StatusCompleted)
	}
	if res.Polls != 1 {
		t.Errorf("polls = %d, want 1", res.Polls)
	}
	if res.SessionID.IsNil() {
		t.Error("expected a session id")
	}
}

func TestWatch_PollsUntilCompleted(t *testing.T) {
	t.Parallel()
	strategy := &recordingStrategy{}
	loop, err := poll.New(
		sequence(job.StatusPending, job.StatusPending, job.StatusPending, job.StatusCompleted),
		strategy,
		poll.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := loop.Watch(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if res.Polls != 4 {
		t.Errorf("polls = %d, want 4", res.Polls)
	}

	// One interval per pending answer, attempts 1-indexed and increasing.
	want := []int{1, 2, 3}
	if len(strategy.attempts) != len(want) {
		t.Fatalf("strategy consulted %d times, want %d", len(strategy.attempts), len(want))
	}
	for i, attempt := range want {
		if strategy.attempts[i] != attempt {
			t.Errorf("attempts[%d] = %d, want %d", i, strategy.attempts[i], attempt)
		}
	}
}

func TestWatch_TranslationError(t *testing.T) {
	t.Parallel()
	loop, err := poll.New(sequence(job.StatusPending, job.StatusError), schedule.NewConstant(time.Millisecond),
		poll.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := loop.Watch(context.Background(), "t1")
	if !errors.Is(err, vigil.ErrTranslationFailed) {
		t.Fatalf("Watch error = %v, want %v", err, vigil.ErrTranslationFailed)
	}
	if res.State != poll.StateFailed {
		t.Errorf("state = %q, want %q", res.State, poll.StateFailed)
	}
	if res.Status != job.StatusError {
		t.Errorf("status = %q, want %q", res.Status, job.StatusError)
	}
}

func TestWatch_TransportErrorFailsImmediately(t *testing.T) {
	t.Parallel()
	transportErr := errors.New("connection refused")
	var calls int
	check := func(_ context.Context, _ string) (job.Status, error) {
		calls++
		return "", transportErr
	}

	loop, err := poll.New(check, schedule.NewConstant(time.Millisecond), poll.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := loop.Watch(context.Background(), "t1")
	if !errors.Is(err, transportErr) {
		t.Fatalf("Watch error = %v, want wrapped %v", err, transportErr)
	}
	if res.State != poll.StateFailed {
		t.Errorf("state = %q, want %q", res.State, poll.StateFailed)
	}
	if calls != 1 {
		t.Errorf("capability called %d times, want 1 (no retry in the loop)", calls)
	}
}

func TestWatch_Cancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	// Cancel during the first wait: the job stays pending forever and the
	// strategy's interval is long enough that ctx.Done always wins.
	check := func(_ context.Context, _ string) (job.Status, error) {
		cancel()
		return job.StatusPending, nil
	}

	loop, err := poll.New(check, schedule.NewConstant(time.Minute), poll.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := loop.Watch(ctx, "t1")
	if !errors.Is(err, vigil.ErrWatchCancelled) {
		t.Fatalf("Watch error = %v, want %v", err, vigil.ErrWatchCancelled)
	}
	if res.State != poll.StateCancelled {
		t.Errorf("state = %q, want %q", res.State, poll.StateCancelled)
	}
	if res.Polls != 1 {
		t.Errorf("polls = %d, want 1", res.Polls)
	}
}

func TestWatch_MiddlewareDecoratesCapability(t *testing.T) {
	t.Parallel()
	transportErr := errors.New("flaky network")
	var mu sync.Mutex
	calls := 0
	check := func(_ context.Context, _ string) (job.Status, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return "", transportErr
		}
		return job.StatusCompleted, nil
	}

	// Retry is a decoration around the capability, not loop behavior: with
	// it installed the same flaky check succeeds within one poll cycle.
	loop, err := poll.New(check, schedule.NewConstant(time.Millisecond),
		poll.WithLogger(quietLogger()),
		poll.WithMiddleware(middleware.Retry(3, schedule.NewConstant(time.Millisecond), quietLogger())),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := loop.Watch(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if res.Polls != 1 {
		t.Errorf("polls = %d, want 1 (retry happened inside the capability)", res.Polls)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("capability called %d times, want 2", calls)
	}
}

func TestWatch_IndependentConcurrentSessions(t *testing.T) {
	t.Parallel()
	loop, err := poll.New(
		sequence(job.StatusPending, job.StatusCompleted),
		schedule.NewConstant(time.Millisecond),
		poll.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, watchErr := loop.Watch(context.Background(), "t1")
			if watchErr != nil {
				t.Errorf("Watch: %v", watchErr)
				return
			}
			if res.State != poll.StateCompleted {
				t.Errorf("state = %q, want %q", res.State, poll.StateCompleted)
			}
		}()
	}
	wg.Wait()
}
