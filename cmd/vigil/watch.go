package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilhq/vigil/client"
	"github.com/vigilhq/vigil/id"
	"github.com/vigilhq/vigil/middleware"
	"github.com/vigilhq/vigil/poll"
	"github.com/vigilhq/vigil/schedule"
)

var watchFlags struct {
	server    string
	jobID     string
	minDelay  time.Duration
	maxDelay  time.Duration
	errorRate float64

	strategy string

	// Exponential.
	initial time.Duration
	stable  time.Duration

	// Predictive. Coefficients operate on the remaining milliseconds;
	// there is no canonical default, these are just flag defaults.
	deadline    time.Duration
	coeffA      float64
	coeffB      float64
	coeffC      float64
	minInterval time.Duration
	maxInterval time.Duration

	retries int
	verbose bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Create a job and poll it until it is terminal",
	RunE:  runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchFlags.server, "server", "http://localhost:8080", "vigil server base URL")
	f.StringVar(&watchFlags.jobID, "id", "", "job id (generated when empty)")
	f.DurationVar(&watchFlags.minDelay, "min-delay", 5*time.Second, "minimum translation duration")
	f.DurationVar(&watchFlags.maxDelay, "max-delay", 30*time.Second, "maximum translation duration")
	f.Float64Var(&watchFlags.errorRate, "error-rate", 0.1, "probability of the job failing")

	f.StringVar(&watchFlags.strategy, "strategy", "exponential", "interval strategy: exponential or predictive")
	f.DurationVar(&watchFlags.initial, "initial", time.Second, "exponential: first interval")
	f.DurationVar(&watchFlags.stable, "stable", 8*time.Second, "exponential: interval ceiling")
	f.DurationVar(&watchFlags.deadline, "deadline", 30*time.Second, "predictive: expected completion time")
	f.Float64Var(&watchFlags.coeffA, "coeff-a", 1.0/30000, "predictive: quadratic coefficient a")
	f.Float64Var(&watchFlags.coeffB, "coeff-b", 0.01, "predictive: quadratic coefficient b")
	f.Float64Var(&watchFlags.coeffC, "coeff-c", 500, "predictive: quadratic coefficient c")
	f.DurationVar(&watchFlags.minInterval, "min-interval", 500*time.Millisecond, "predictive: interval floor")
	f.DurationVar(&watchFlags.maxInterval, "max-interval", 3*time.Second, "predictive: interval ceiling")

	f.IntVar(&watchFlags.retries, "retries", 0, "retry transport failures up to this many attempts")
	f.BoolVar(&watchFlags.verbose, "verbose", false, "log every status check")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if watchFlags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	jobID := watchFlags.jobID
	if jobID == "" {
		jobID = id.NewJobID().String()
	}

	c := client.New(watchFlags.server, client.WithLogger(logger))

	ctx := cmd.Context()
	if _, err := c.CreateJob(ctx, jobID,
		client.WithDelayRange(watchFlags.minDelay, watchFlags.maxDelay),
		client.WithErrorRate(watchFlags.errorRate),
	); err != nil {
		return err
	}

	strategy, err := buildStrategy()
	if err != nil {
		return err
	}

	var opts []poll.Option
	opts = append(opts, poll.WithLogger(logger))
	if watchFlags.retries > 1 {
		opts = append(opts, poll.WithMiddleware(
			middleware.Logging(logger),
			middleware.Retry(watchFlags.retries, nil, logger),
		))
	} else {
		opts = append(opts, poll.WithMiddleware(middleware.Logging(logger)))
	}

	res, err := c.Watch(ctx, jobID, strategy, opts...)
	if res != nil {
		fmt.Printf("job %s: state=%s status=%s polls=%d elapsed=%s\n",
			res.JobID, res.State, res.Status, res.Polls, res.Elapsed.Round(time.Millisecond))
	}
	return err
}

func buildStrategy() (schedule.Strategy, error) {
	switch watchFlags.strategy {
	case "exponential":
		return schedule.NewExponential(watchFlags.initial, watchFlags.stable), nil
	case "predictive":
		return schedule.NewPredictive(schedule.PredictiveConfig{
			Start:    time.Now(),
			Deadline: watchFlags.deadline,
			A:        watchFlags.coeffA,
			B:        watchFlags.coeffB,
			C:        watchFlags.coeffC,
			Min:      watchFlags.minInterval,
			Max:      watchFlags.maxInterval,
		})
	default:
		return nil, fmt.Errorf("unknown strategy %q", watchFlags.strategy)
	}
}
