// Package verifier compares the engine's self-reported counts against
// the ground-truth oracle, pattern by pattern.
//
// Each pattern runs the same sequence with no retries:
// seed -> oracle query -> engine run -> compare. Engine failures and
// timeouts are recorded and the remaining patterns still run; seeding
// and oracle failures are fatal because no partial ground truth can be
// trusted.
package verifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/engine"
	"github.com/barockok/kalla-bench/internal/oracle"
)

// Status is the terminal outcome for one pattern.
type Status string

const (
	StatusPass        Status = "PASS"
	StatusFail        Status = "FAIL"
	StatusEngineError Status = "ENGINE_ERROR"
)

// Seeder drops and reloads the dataset for a pattern. Seeding must be
// idempotent: every call starts from recreated tables.
type Seeder interface {
	Seed(ctx context.Context, p pattern.Pattern) error
}

// SeedFunc adapts a function to the Seeder interface.
type SeedFunc func(ctx context.Context, p pattern.Pattern) error

// Seed calls f.
func (f SeedFunc) Seed(ctx context.Context, p pattern.Pattern) error {
	return f(ctx, p)
}

// EngineRunner submits a pattern's match rule to the engine and blocks
// for its terminal result.
type EngineRunner interface {
	Run(ctx context.Context, p pattern.Pattern) (engine.Result, error)
}

// EngineCounts are the three metrics the engine reports.
type EngineCounts struct {
	Matched        int `json:"matched"`
	UnmatchedLeft  int `json:"unmatched_left"`
	UnmatchedRight int `json:"unmatched_right"`
}

// PatternResult is the verdict for one pattern.
type PatternResult struct {
	Pattern string                   `json:"pattern"`
	Status  Status                   `json:"status"`
	Truth   oracle.GroundTruthResult `json:"truth"`
	Engine  EngineCounts             `json:"engine"`
	Detail  string                   `json:"detail,omitempty"`
}

// Verifier drives the per-pattern verification loop.
type Verifier struct {
	seeder Seeder
	oracle oracle.Oracle
	runner EngineRunner
	logger *slog.Logger
}

// New creates a verifier from its three collaborators.
func New(seeder Seeder, o oracle.Oracle, runner EngineRunner, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{seeder: seeder, oracle: o, runner: runner, logger: logger}
}

// Run verifies each pattern in order and returns one result per
// pattern. Engine-side failures are captured in the results; seeding or
// oracle failures abort with an error.
func (v *Verifier) Run(ctx context.Context, patterns []pattern.Pattern) ([]PatternResult, error) {
	results := make([]PatternResult, 0, len(patterns))

	for _, p := range patterns {
		v.logger.Info("verifying pattern", slog.String("pattern", p.Name))

		if err := v.seeder.Seed(ctx, p); err != nil {
			return results, fmt.Errorf("seeding %s: %w", p.Name, err)
		}

		truth, err := v.oracle.Evaluate(ctx, p)
		if err != nil {
			return results, fmt.Errorf("ground truth for %s: %w", p.Name, err)
		}
		v.logger.Info("ground truth",
			slog.String("pattern", p.Name),
			slog.Int("matched", truth.Matched),
			slog.Int("unmatched_left", truth.UnmatchedLeft),
			slog.Int("unmatched_right", truth.UnmatchedRight),
			slog.Int("total_left", truth.TotalLeft),
			slog.Int("total_right", truth.TotalRight),
		)

		engineResult, err := v.runner.Run(ctx, p)
		if err != nil {
			results = append(results, PatternResult{
				Pattern: p.Name,
				Status:  StatusEngineError,
				Truth:   truth,
				Detail:  err.Error(),
			})
			continue
		}
		if engineResult.Status != engine.StatusComplete {
			detail := fmt.Sprintf("engine reported %s", engineResult.Status)
			if engineResult.Error != "" {
				detail += ": " + engineResult.Error
			}
			results = append(results, PatternResult{
				Pattern: p.Name,
				Status:  StatusEngineError,
				Truth:   truth,
				Detail:  detail,
			})
			continue
		}

		results = append(results, compare(p.Name, truth, engineResult))
	}

	return results, nil
}

// compare checks the three metrics for exact equality and records signed
// deltas (engine - truth) for every mismatch.
func compare(name string, truth oracle.GroundTruthResult, res engine.Result) PatternResult {
	counts := EngineCounts{
		Matched:        res.MatchedCount,
		UnmatchedLeft:  res.UnmatchedLeftCount,
		UnmatchedRight: res.UnmatchedRightCount,
	}

	var detail strings.Builder
	appendDelta := func(metric string, got, want int) {
		if got != want {
			fmt.Fprintf(&detail, "%s: engine=%d vs truth=%d (delta=%d). ", metric, got, want, got-want)
		}
	}
	appendDelta("matched", counts.Matched, truth.Matched)
	appendDelta("unmatched_left", counts.UnmatchedLeft, truth.UnmatchedLeft)
	appendDelta("unmatched_right", counts.UnmatchedRight, truth.UnmatchedRight)

	status := StatusPass
	if detail.Len() > 0 {
		status = StatusFail
	}
	return PatternResult{
		Pattern: name,
		Status:  status,
		Truth:   truth,
		Engine:  counts,
		Detail:  strings.TrimSpace(detail.String()),
	}
}

// AllPass reports whether every pattern passed.
func AllPass(results []PatternResult) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return false
		}
	}
	return len(results) > 0
}
