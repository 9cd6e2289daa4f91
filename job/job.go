package job

import "time"

// Status is the externally observable state of a translation job, as
// returned by a status check.
type Status string

const (
	// StatusPending means translation is still in progress.
	StatusPending Status = "pending"
	// StatusCompleted means translation finished successfully.
	StatusCompleted Status = "completed"
	// StatusError means translation failed.
	StatusError Status = "error"
)

// Terminal reports whether the status will never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Outcome is the terminal disposition drawn once when a job is created.
// It is never re-rolled.
type Outcome string

const (
	// OutcomeSuccess means the job completes once TotalDelay has elapsed.
	OutcomeSuccess Outcome = "success"
	// OutcomeError means every status check reports an error.
	OutcomeError Outcome = "error"
)

// Job represents one simulated video translation task.
type Job struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	TotalDelay  time.Duration `json:"total_delay"`
	Outcome     Outcome       `json:"outcome"`
	State       Status        `json:"state"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// StatusAt derives the observable status at the given instant. It is a pure
// function of the job's immutable creation parameters plus the recorded
// State; it performs no mutation. An error outcome wins unconditionally.
// A success outcome is completed exactly when elapsed >= TotalDelay, and
// once the State records completion the elapsed-time check is skipped so
// the answer can never revert.
func (j *Job) StatusAt(now time.Time) Status {
	if j.Outcome == OutcomeError {
		return StatusError
	}
	if j.State == StatusCompleted {
		return StatusCompleted
	}
	if now.Sub(j.CreatedAt) >= j.TotalDelay {
		return StatusCompleted
	}
	return StatusPending
}
