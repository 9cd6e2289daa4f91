package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/job"
)

func (a *API) createJob(ctx forge.Context, req *CreateJobRequest) (*CreateJobResponse, error) {
	cfg := a.defaults
	if req.MinDelayMS != nil {
		cfg.MinDelay = time.Duration(*req.MinDelayMS) * time.Millisecond
	}
	if req.MaxDelayMS != nil {
		cfg.MaxDelay = time.Duration(*req.MaxDelayMS) * time.Millisecond
	} else if req.MinDelayMS != nil && cfg.MaxDelay < cfg.MinDelay {
		// A min-only request above the default max widens the range
		// to a fixed delay rather than failing validation.
		cfg.MaxDelay = cfg.MinDelay
	}
	if req.ErrorRate != nil {
		cfg.ErrorRate = *req.ErrorRate
	}

	j, err := a.store.CreateJob(ctx.Context(), req.ID, cfg)
	if err != nil {
		return nil, mapStoreError(err)
	}

	resp := &CreateJobResponse{ID: j.ID}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) jobStatus(ctx forge.Context, _ *JobStatusRequest) (*StatusResponse, error) {
	st, err := a.store.JobStatus(ctx.Context(), ctx.Param("jobId"))
	if err != nil {
		return nil, mapStoreError(err)
	}

	resp := &StatusResponse{Status: string(st)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getJob(ctx forge.Context, _ *GetJobRequest) (*job.Job, error) {
	j, err := a.store.GetJob(ctx.Context(), ctx.Param("jobId"))
	if err != nil {
		return nil, mapStoreError(err)
	}

	return j, ctx.JSON(http.StatusOK, j)
}

func (a *API) listJobs(ctx forge.Context, req *ListJobsRequest) ([]*job.Job, error) {
	jobs, err := a.store.ListJobs(ctx.Context(), job.ListOpts{
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
		Status: job.Status(req.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	return jobs, ctx.JSON(http.StatusOK, jobs)
}

func (a *API) jobCounts(ctx forge.Context) error {
	c := ctx.Context()

	resp := JobCountsResponse{}
	for _, st := range []job.Status{job.StatusPending, job.StatusCompleted, job.StatusError} {
		count, err := a.store.CountJobs(c, job.CountOpts{Status: st})
		if err != nil {
			return fmt.Errorf("count jobs (%s): %w", st, err)
		}
		switch st {
		case job.StatusPending:
			resp.Pending = count
		case job.StatusCompleted:
			resp.Completed = count
		case job.StatusError:
			resp.Error = count
		}
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (a *API) health(ctx forge.Context) error {
	if p, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx.Context()); err != nil {
			return forge.InternalError(fmt.Errorf("store unavailable: %w", err))
		}
	}
	return ctx.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// defaultLimit caps list queries at a sane page size.
func defaultLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}

// mapStoreError converts vigil sentinel errors to forge HTTP errors.
// Not-found maps to 404; invalid ids, duplicates, and bad simulation
// parameters are caller errors and map to 400.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, vigil.ErrJobNotFound):
		return forge.NotFound(err.Error())
	case errors.Is(err, vigil.ErrInvalidJobID),
		errors.Is(err, vigil.ErrJobExists),
		errors.Is(err, vigil.ErrInvalidDelayRange),
		errors.Is(err, vigil.ErrInvalidErrorRate):
		return forge.BadRequest(err.Error())
	}
	return err
}
