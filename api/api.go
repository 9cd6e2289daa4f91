// Package api exposes the simulated translation backend over HTTP.
// It is a thin wrapper: all semantics live in the job store.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/job"
)

// API wires the Forge-style HTTP handlers for the simulation server.
type API struct {
	store    job.Store
	router   forge.Router
	defaults vigil.Config
}

// Option configures an API.
type Option func(*API)

// WithDefaults sets the simulation parameters applied when a create
// request omits them.
func WithDefaults(cfg vigil.Config) Option {
	return func(a *API) { a.defaults = cfg }
}

// New creates an API over the given store.
func New(store job.Store, router forge.Router, opts ...Option) *API {
	a := &API{
		store:    store,
		router:   router,
		defaults: vigil.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	a.RegisterRoutes(a.router)
	return a.router.Handler()
}

// RegisterRoutes registers all vigil API routes into the given Forge router
// with full OpenAPI metadata.
func (a *API) RegisterRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("jobs"))

	_ = g.POST("/jobs", a.createJob,
		forge.WithSummary("Create job"),
		forge.WithDescription("Creates a simulated translation job with a randomized duration and outcome."),
		forge.WithOperationID("createJob"),
		forge.WithRequestSchema(CreateJobRequest{}),
		forge.WithResponseSchema(http.StatusCreated, "Job created", CreateJobResponse{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/jobs/:jobId/status", a.jobStatus,
		forge.WithSummary("Job status"),
		forge.WithDescription("Returns the current status of a job: pending, completed, or error."),
		forge.WithOperationID("jobStatus"),
		forge.WithResponseSchema(http.StatusOK, "Job status", StatusResponse{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/jobs/:jobId", a.getJob,
		forge.WithSummary("Get job"),
		forge.WithDescription("Returns details of a specific job, including its drawn duration and outcome."),
		forge.WithOperationID("getJob"),
		forge.WithResponseSchema(http.StatusOK, "Job details", &job.Job{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/jobs", a.listJobs,
		forge.WithSummary("List jobs"),
		forge.WithDescription("Returns jobs filtered by status."),
		forge.WithOperationID("listJobs"),
		forge.WithRequestSchema(ListJobsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Job list", []*job.Job{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/jobs/counts", a.jobCounts,
		forge.WithSummary("Job counts"),
		forge.WithDescription("Returns job counts grouped by status."),
		forge.WithOperationID("jobCounts"),
		forge.WithResponseSchema(http.StatusOK, "Job counts", JobCountsResponse{}),
		forge.WithErrorResponses(),
	)

	ops := router.Group("/v1", forge.WithGroupTags("ops"))

	_ = ops.GET("/health", a.health,
		forge.WithSummary("Health check"),
		forge.WithOperationID("health"),
		forge.WithResponseSchema(http.StatusOK, "Health", HealthResponse{}),
		forge.WithErrorResponses(),
	)
}
