package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// JetStream wiring for scaled-mode injection: exec jobs travel as
// work-queue messages on kalla.exec.
const (
	execStream  = "KALLA_EXEC"
	execSubject = "kalla.exec"
)

// RecipeSource describes one side of a recipe.
type RecipeSource struct {
	Alias      string   `json:"alias"`
	Type       string   `json:"type"`
	URI        string   `json:"uri"`
	PrimaryKey []string `json:"primary_key"`
}

// RecipeSources pairs the left and right sides.
type RecipeSources struct {
	Left  RecipeSource `json:"left"`
	Right RecipeSource `json:"right"`
}

// Recipe is the engine's job description as embedded JSON.
type Recipe struct {
	RecipeID         string        `json:"recipe_id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	MatchSQL         string        `json:"match_sql"`
	MatchDescription string        `json:"match_description"`
	Sources          RecipeSources `json:"sources"`
}

// ExecJob is the message published to the exec stream. RecipeJSON is the
// Recipe serialized to a string, matching the worker's payload contract.
type ExecJob struct {
	Type        string   `json:"type"`
	JobID       string   `json:"job_id"`
	RunID       string   `json:"run_id"`
	RecipeJSON  string   `json:"recipe_json"`
	SourceURIs  []Source `json:"source_uris"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

// NewExecJob builds an exec job for the benchmark tables.
func NewExecJob(jobID, runID, matchSQL, pgURL, callbackURL string) (ExecJob, error) {
	sources := BuildSources(pgURL)
	recipe := Recipe{
		RecipeID:         fmt.Sprintf("bench-%.8s", runID),
		Name:             "Benchmark Recipe",
		Description:      "Auto-generated benchmark recipe",
		MatchSQL:         matchSQL,
		MatchDescription: "Benchmark match SQL",
		Sources: RecipeSources{
			Left: RecipeSource{
				Alias:      LeftAlias,
				Type:       "postgres",
				URI:        sources[0].URI,
				PrimaryKey: []string{"invoice_id"},
			},
			Right: RecipeSource{
				Alias:      RightAlias,
				Type:       "postgres",
				URI:        sources[1].URI,
				PrimaryKey: []string{"payment_id"},
			},
		},
	}

	recipeJSON, err := json.Marshal(recipe)
	if err != nil {
		return ExecJob{}, fmt.Errorf("encoding recipe for run %s: %w", runID, err)
	}

	return ExecJob{
		Type:        "Exec",
		JobID:       jobID,
		RunID:       runID,
		RecipeJSON:  string(recipeJSON),
		SourceURIs:  sources,
		CallbackURL: callbackURL,
	}, nil
}

// Publisher publishes exec jobs to NATS JetStream.
type Publisher struct {
	url    string
	logger *slog.Logger
}

// NewPublisher creates a publisher for the given NATS URL.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{url: url, logger: logger}
}

// PublishExec ensures the exec stream exists and publishes the job.
func (p *Publisher) PublishExec(job ExecJob) error {
	nc, err := nats.Connect(p.url)
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("opening jetstream context: %w", err)
	}

	if _, err := js.StreamInfo(execStream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      execStream,
			Subjects:  []string{execSubject},
			Retention: nats.WorkQueuePolicy,
		})
		if err != nil {
			return fmt.Errorf("creating stream %s: %w", execStream, err)
		}
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding exec job %s: %w", job.JobID, err)
	}
	if _, err := js.Publish(execSubject, data); err != nil {
		return fmt.Errorf("publishing exec job %s: %w", job.JobID, err)
	}

	p.logger.Info("exec job published",
		slog.String("job_id", job.JobID),
		slog.String("subject", execSubject),
	)
	return nil
}
