// Package engine is the harness's view of the external reconciliation
// engine: job submission to the scheduler, the worker callback channel,
// and JetStream injection for scaled runs. The engine itself is never
// implemented here.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Row source aliases and tables as the engine expects them.
const (
	LeftAlias  = "left_src"
	RightAlias = "right_src"

	invoiceTable = "bench_invoices"
	paymentTable = "bench_payments"
)

// Source names one aliased row source by location.
type Source struct {
	Alias string `json:"alias"`
	URI   string `json:"uri"`
}

// Job is a direct scheduler submission.
type Job struct {
	RunID       string              `json:"run_id"`
	CallbackURL string              `json:"callback_url"`
	MatchSQL    string              `json:"match_sql"`
	Sources     []Source            `json:"sources"`
	OutputPath  string              `json:"output_path"`
	PrimaryKeys map[string][]string `json:"primary_keys"`
}

// Client submits jobs to the scheduler's HTTP API.
type Client struct {
	schedulerURL string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a scheduler client.
func NewClient(schedulerURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		schedulerURL: strings.TrimSuffix(schedulerURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Submit posts the job to the scheduler. Accepted responses are 200 and
// 202; anything else is an error.
func (c *Client) Submit(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.RunID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.schedulerURL+"/api/jobs", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building job request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submitting job %s: %w", job.RunID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("scheduler rejected job %s: HTTP %d", job.RunID, resp.StatusCode)
	}

	c.logger.Debug("job submitted", slog.String("run_id", job.RunID))
	return nil
}

// NormalizePostgresURL rewrites the postgresql:// scheme to postgres://,
// the form the worker's source parser accepts.
func NormalizePostgresURL(url string) string {
	if strings.HasPrefix(url, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(url, "postgresql://")
	}
	return url
}

// BuildSources returns the two aliased benchmark-table sources for a
// Postgres URL.
func BuildSources(pgURL string) []Source {
	pg := NormalizePostgresURL(pgURL)
	return []Source{
		{Alias: LeftAlias, URI: fmt.Sprintf("%s?table=%s", pg, invoiceTable)},
		{Alias: RightAlias, URI: fmt.Sprintf("%s?table=%s", pg, paymentTable)},
	}
}

// PrimaryKeys returns the per-alias key columns the engine dedupes on.
func PrimaryKeys() map[string][]string {
	return map[string][]string{
		LeftAlias:  {"invoice_id"},
		RightAlias: {"payment_id"},
	}
}
