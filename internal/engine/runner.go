package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
)

// Runner executes one engine run per pattern: start a callback listener,
// submit the job, block until the terminal callback or the timeout.
type Runner struct {
	client       *Client
	postgresURL  string
	callbackHost string
	timeout      time.Duration
	logger       *slog.Logger
}

// NewRunner creates a runner. The callback listener binds an ephemeral
// port on callbackHost for each run.
func NewRunner(client *Client, postgresURL, callbackHost string, timeout time.Duration, logger *slog.Logger) *Runner {
	if callbackHost == "" {
		callbackHost = "127.0.0.1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client:       client,
		postgresURL:  postgresURL,
		callbackHost: callbackHost,
		timeout:      timeout,
		logger:       logger,
	}
}

// Run submits the pattern's match rule and waits for the engine's
// terminal callback. Submission failures return an error; a timeout or
// an engine-side error comes back as the Result status.
func (r *Runner) Run(ctx context.Context, p pattern.Pattern) (Result, error) {
	srv := NewCallbackServer(r.logger)
	if err := srv.Start(r.callbackHost, 0); err != nil {
		return Result{}, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	runID := uuid.NewString()
	job := Job{
		RunID:       runID,
		CallbackURL: srv.URL() + "/api/worker",
		MatchSQL:    p.MatchSQL,
		Sources:     BuildSources(r.postgresURL),
		OutputPath:  fmt.Sprintf("/tmp/verify-%s", runID),
		PrimaryKeys: PrimaryKeys(),
	}

	r.logger.Info("running engine",
		slog.String("pattern", p.Name),
		slog.String("run_id", runID),
		slog.String("callback_url", job.CallbackURL),
	)

	if err := r.client.Submit(ctx, job); err != nil {
		return Result{}, err
	}

	return srv.Wait(ctx, r.timeout), nil
}
