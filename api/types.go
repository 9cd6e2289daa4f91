package api

// CreateJobRequest is the body of POST /v1/jobs. Delay and error-rate
// fields override the server defaults when set.
type CreateJobRequest struct {
	ID         string   `json:"id"`
	MinDelayMS *int64   `json:"min_delay_ms,omitempty"`
	MaxDelayMS *int64   `json:"max_delay_ms,omitempty"`
	ErrorRate  *float64 `json:"error_rate,omitempty"`
}

// CreateJobResponse acknowledges a created job.
type CreateJobResponse struct {
	ID string `json:"id"`
}

// GetJobRequest is the (path-only) request for GET /v1/jobs/:jobId.
type GetJobRequest struct{}

// JobStatusRequest is the (path-only) request for GET /v1/jobs/:jobId/status.
type JobStatusRequest struct{}

// StatusResponse carries the externally observable status of a job.
type StatusResponse struct {
	Status string `json:"status"`
}

// ListJobsRequest filters GET /v1/jobs.
type ListJobsRequest struct {
	Status string `json:"status" query:"status"`
	Limit  int    `json:"limit" query:"limit"`
	Offset int    `json:"offset" query:"offset"`
}

// JobCountsResponse groups job counts by derived status.
type JobCountsResponse struct {
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Error     int64 `json:"error"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
