package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/client"
	"github.com/vigilhq/vigil/job"
	"github.com/vigilhq/vigil/poll"
	"github.com/vigilhq/vigil/schedule"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateJob(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/jobs" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "video-42"})
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithLogger(quietLogger()))
	res, err := c.CreateJob(context.Background(), "video-42",
		client.WithDelayRange(2*time.Second, 5*time.Second),
		client.WithErrorRate(0.25),
	)
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if res.ID != "video-42" {
		t.Errorf("ID = %q, want %q", res.ID, "video-42")
	}

	if gotBody["id"] != "video-42" {
		t.Errorf("body id = %v, want %q", gotBody["id"], "video-42")
	}
	if gotBody["min_delay_ms"] != float64(2000) || gotBody["max_delay_ms"] != float64(5000) {
		t.Errorf("body delays = %v/%v, want 2000/5000", gotBody["min_delay_ms"], gotBody["max_delay_ms"])
	}
	if gotBody["error_rate"] != 0.25 {
		t.Errorf("body error_rate = %v, want 0.25", gotBody["error_rate"])
	}
}

func TestJobStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs/video-42/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithLogger(quietLogger()))
	st, err := c.JobStatus(context.Background(), "video-42")
	if err != nil {
		t.Fatalf("JobStatus: %v", err)
	}
	if st != job.StatusPending {
		t.Errorf("status = %q, want %q", st, job.StatusPending)
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "job not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithLogger(quietLogger()))
	if _, err := c.JobStatus(context.Background(), "ghost"); !errors.Is(err, vigil.ErrJobNotFound) {
		t.Fatalf("JobStatus error = %v, want %v", err, vigil.ErrJobNotFound)
	}
}

func TestJobStatus_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithLogger(quietLogger()))
	_, err := c.JobStatus(context.Background(), "video-42")
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if errors.Is(err, vigil.ErrJobNotFound) {
		t.Fatalf("500 mapped to not-found: %v", err)
	}
}

func TestWatch_EndToEnd(t *testing.T) {
	t.Parallel()

	var checks atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/jobs":
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "t1"})
		case r.URL.Path == "/v1/jobs/t1/status":
			status := "pending"
			if checks.Add(1) >= 3 {
				status = "completed"
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithLogger(quietLogger()))
	if _, err := c.CreateJob(context.Background(), "t1"); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	res, err := c.Watch(context.Background(), "t1", schedule.NewConstant(time.Millisecond))
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if res.State != poll.StateCompleted {
		t.Errorf("state = %q, want %q", res.State, poll.StateCompleted)
	}
	if res.Polls != 3 {
		t.Errorf("polls = %d, want 3", res.Polls)
	}
}

func TestWatch_TranslationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "error"})
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithLogger(quietLogger()))
	res, err := c.Watch(context.Background(), "doomed", schedule.NewConstant(time.Millisecond))
	if !errors.Is(err, vigil.ErrTranslationFailed) {
		t.Fatalf("Watch error = %v, want %v", err, vigil.ErrTranslationFailed)
	}
	if res.State != poll.StateFailed {
		t.Errorf("state = %q, want %q", res.State, poll.StateFailed)
	}
}
