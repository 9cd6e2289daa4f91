// Package memory provides a fully in-memory simulation backend.
// Safe for concurrent access. Job state does not survive a restart.
package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/job"
)

// Ensure Store implements the job store contract at compile time.
var _ job.Store = (*Store)(nil)

// Store owns all simulated jobs. A single mutex guards the map, which makes
// the read-then-conditionally-mutate sequence in JobStatus one atomic step:
// two concurrent readers past the deadline cannot perform conflicting flips,
// and two concurrent creates of the same id resolve to exactly one winner.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*job.Job

	now func() time.Time
	rng *rand.Rand
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for elapsed-time checks.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeed makes the duration and outcome draws deterministic.
// Intended for tests.
func WithSeed(seed uint64) Option {
	return func(s *Store) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// New returns a new empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		jobs: make(map[string]*job.Job),
		now:  time.Now,
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping always succeeds for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Job store
// ──────────────────────────────────────────────────

// CreateJob registers a new job and draws its randomized duration and
// outcome from cfg.
func (s *Store) CreateJob(_ context.Context, jobID string, cfg vigil.Config) (*job.Job, error) {
	if jobID == "" {
		return nil, vigil.ErrInvalidJobID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobID]; exists {
		return nil, vigil.ErrJobExists
	}

	j := &job.Job{
		ID:         jobID,
		CreatedAt:  s.now(),
		TotalDelay: s.drawDelay(cfg),
		Outcome:    s.drawOutcome(cfg),
		State:      job.StatusPending,
	}
	s.jobs[jobID] = j

	// Return a copy so callers can't mutate the stored record.
	cp := *j
	return &cp, nil
}

// JobStatus computes the current status of a job, recording the
// pending→completed flip durably.
func (s *Store) JobStatus(_ context.Context, jobID string) (job.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return "", vigil.ErrJobNotFound
	}
	return s.observe(j), nil
}

// GetJob retrieves a copy of a job by id.
func (s *Store) GetJob(_ context.Context, jobID string) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return nil, vigil.ErrJobNotFound
	}
	s.observe(j)
	cp := *j
	return &cp, nil
}

// DeleteJob removes a job by id.
func (s *Store) DeleteJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; !ok {
		return vigil.ErrJobNotFound
	}
	delete(s.jobs, jobID)
	return nil
}

// ListJobs returns jobs matching opts, ordered by creation time then id.
func (s *Store) ListJobs(_ context.Context, opts job.ListOpts) ([]*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		st := s.observe(j)
		if opts.Status != "" && st != opts.Status {
			continue
		}
		matched = append(matched, j)
	}

	sort.Slice(matched, func(i, k int) bool {
		if !matched[i].CreatedAt.Equal(matched[k].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[k].CreatedAt)
		}
		return matched[i].ID < matched[k].ID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	result := make([]*job.Job, len(matched))
	for i, j := range matched {
		cp := *j
		result[i] = &cp
	}
	return result, nil
}

// CountJobs returns the number of jobs matching opts.
func (s *Store) CountJobs(_ context.Context, opts job.CountOpts) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, j := range s.jobs {
		if opts.Status != "" && s.observe(j) != opts.Status {
			continue
		}
		count++
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

// observe derives the current status of a job and records the
// pending→completed flip. Callers must hold s.mu.
func (s *Store) observe(j *job.Job) job.Status {
	st := j.StatusAt(s.now())
	if st == job.StatusCompleted && j.State != job.StatusCompleted {
		j.State = job.StatusCompleted
		done := j.CreatedAt.Add(j.TotalDelay)
		j.CompletedAt = &done
	}
	return st
}

// drawDelay picks a duration uniformly from [MinDelay, MaxDelay] inclusive,
// at millisecond granularity.
func (s *Store) drawDelay(cfg vigil.Config) time.Duration {
	spread := cfg.MaxDelay - cfg.MinDelay
	if spread <= 0 {
		return cfg.MinDelay
	}
	ms := s.rng.Int64N(spread.Milliseconds() + 1)
	return cfg.MinDelay + time.Duration(ms)*time.Millisecond
}

// drawOutcome picks the error outcome with probability cfg.ErrorRate.
func (s *Store) drawOutcome(cfg vigil.Config) job.Outcome {
	if s.rng.Float64() < cfg.ErrorRate {
		return job.OutcomeError
	}
	return job.OutcomeSuccess
}
