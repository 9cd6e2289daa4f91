// Package client provides a Go client for a remote vigil simulation server
// over HTTP.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//
//	// Create a job with a fixed 10s duration.
//	res, err := c.CreateJob(ctx, "video-42",
//	    client.WithDelayRange(10*time.Second, 10*time.Second),
//	)
//
//	// Poll it with exponential backoff until it is terminal.
//	out, err := c.Watch(ctx, res.ID, schedule.NewExponential(time.Second, 8*time.Second))
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/job"
	"github.com/vigilhq/vigil/poll"
	"github.com/vigilhq/vigil/schedule"
)

// Client talks to a remote vigil server.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// JobResult contains the result of a create operation.
type JobResult struct {
	ID string `json:"id"`
}

// createJobRequest mirrors the server's create body.
type createJobRequest struct {
	ID         string   `json:"id"`
	MinDelayMS *int64   `json:"min_delay_ms,omitempty"`
	MaxDelayMS *int64   `json:"max_delay_ms,omitempty"`
	ErrorRate  *float64 `json:"error_rate,omitempty"`
}

// statusResponse mirrors the server's status body.
type statusResponse struct {
	Status string `json:"status"`
}

// CreateOption configures a create request.
type CreateOption func(*createJobRequest)

// WithDelayRange fixes the job's randomized duration range, overriding the
// server defaults.
func WithDelayRange(minDelay, maxDelay time.Duration) CreateOption {
	return func(r *createJobRequest) {
		minMS, maxMS := minDelay.Milliseconds(), maxDelay.Milliseconds()
		r.MinDelayMS = &minMS
		r.MaxDelayMS = &maxMS
	}
}

// WithErrorRate overrides the server's default error probability.
func WithErrorRate(rate float64) CreateOption {
	return func(r *createJobRequest) { r.ErrorRate = &rate }
}

// CreateJob registers a new simulated job under the given id.
func (c *Client) CreateJob(ctx context.Context, jobID string, opts ...CreateOption) (*JobResult, error) {
	req := createJobRequest{ID: jobID}
	for _, opt := range opts {
		opt(&req)
	}

	var result JobResult
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", req, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("job created", slog.String("job_id", result.ID))
	return &result, nil
}

// JobStatus checks the current status of a job. Its signature satisfies
// poll.StatusFunc, so a Client can be handed straight to a poll.Loop.
func (c *Client) JobStatus(ctx context.Context, jobID string) (job.Status, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID+"/status", nil, &resp); err != nil {
		return "", err
	}
	return job.Status(resp.Status), nil
}

// GetJob retrieves the full job record, including its drawn duration.
func (c *Client) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	var j job.Job
	if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID, nil, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// Watch runs a poll loop over this client's JobStatus until the job is
// terminal. It is a convenience for poll.New + Loop.Watch.
func (c *Client) Watch(ctx context.Context, jobID string, strategy schedule.Strategy, opts ...poll.Option) (*poll.Result, error) {
	opts = append([]poll.Option{poll.WithLogger(c.logger)}, opts...)
	loop, err := poll.New(c.JobStatus, strategy, opts...)
	if err != nil {
		return nil, err
	}
	return loop.Watch(ctx, jobID)
}

// do issues one JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(method, path, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// apiError converts a non-2xx response into an error, mapping 404 onto the
// vigil.ErrJobNotFound sentinel so callers can match it with errors.Is.
func (c *Client) apiError(method, path string, resp *http.Response) error {
	msg := strings.TrimSpace(string(readCapped(resp.Body, 4096)))
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s: %s", vigil.ErrJobNotFound, method, path, msg)
	}
	return fmt.Errorf("client: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
}

func readCapped(r io.Reader, n int64) []byte {
	data, _ := io.ReadAll(io.LimitReader(r, n))
	return data
}
