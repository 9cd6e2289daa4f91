package job

import (
	"context"

	"github.com/vigilhq/vigil"
)

// ListOpts controls pagination and filtering for job list queries.
type ListOpts struct {
	// Limit is the maximum number of jobs to return. Zero means no limit.
	Limit int
	// Offset is the number of jobs to skip.
	Offset int
	// Status filters by derived status. Empty means all statuses.
	Status Status
}

// CountOpts controls filtering for job count queries.
type CountOpts struct {
	// Status filters by derived status. Empty means all statuses.
	Status Status
}

// Store defines the contract of the simulated translation backend.
type Store interface {
	// CreateJob registers a new job under the caller-supplied id and draws
	// its randomized duration and outcome from cfg. Returns
	// vigil.ErrInvalidJobID for an empty id and vigil.ErrJobExists if the
	// id is already taken (the existing job is left untouched).
	CreateJob(ctx context.Context, jobID string, cfg vigil.Config) (*Job, error)

	// JobStatus computes the current status of a job. The pending→completed
	// transition is evaluated lazily against the store's clock and recorded
	// durably, so repeated calls after completion keep returning
	// StatusCompleted. Returns vigil.ErrJobNotFound for an unknown id.
	JobStatus(ctx context.Context, jobID string) (Status, error)

	// GetJob retrieves a copy of a job by id.
	GetJob(ctx context.Context, jobID string) (*Job, error)

	// DeleteJob removes a job by id.
	DeleteJob(ctx context.Context, jobID string) error

	// ListJobs returns jobs matching opts, ordered by creation time.
	ListJobs(ctx context.Context, opts ListOpts) ([]*Job, error)

	// CountJobs returns the number of jobs matching opts.
	CountJobs(ctx context.Context, opts CountOpts) (int64, error)
}
