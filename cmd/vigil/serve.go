package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilhq/vigil"
	"github.com/vigilhq/vigil/api"
	"github.com/vigilhq/vigil/store/memory"
)

var serveFlags struct {
	addr      string
	minDelay  time.Duration
	maxDelay  time.Duration
	errorRate float64
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation server",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", ":8080", "listen address")
	f.DurationVar(&serveFlags.minDelay, "min-delay", 5*time.Second, "default minimum translation duration")
	f.DurationVar(&serveFlags.maxDelay, "max-delay", 30*time.Second, "default maximum translation duration")
	f.Float64Var(&serveFlags.errorRate, "error-rate", 0.1, "default probability of a job failing")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := vigil.Config{
		MinDelay:  serveFlags.minDelay,
		MaxDelay:  serveFlags.maxDelay,
		ErrorRate: serveFlags.errorRate,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := memory.New()
	defer store.Close()

	srv := &http.Server{
		Addr:              serveFlags.addr,
		Handler:           api.New(store, nil, api.WithDefaults(cfg)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", serveFlags.addr),
			slog.Duration("min_delay", cfg.MinDelay),
			slog.Duration("max_delay", cfg.MaxDelay),
			slog.Float64("error_rate", cfg.ErrorRate),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
