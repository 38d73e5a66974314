package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
	"github.com/barockok/kalla-bench/internal/emitter"
	"github.com/barockok/kalla-bench/internal/engine"
	"github.com/barockok/kalla-bench/internal/infrastructure/config"
	"github.com/barockok/kalla-bench/internal/infrastructure/logging"
	"github.com/barockok/kalla-bench/internal/infrastructure/store"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		rows       = flag.Int("rows", 100000, "Number of invoice rows")
		pgURL      = flag.String("pg-url", "", "PostgreSQL connection URL (overrides config)")
		natsURL    = flag.String("nats-url", "", "NATS URL (overrides config)")
		matchSQL   = flag.String("match-sql", "", "Match SQL (default: one_to_one rule)")
		matchRate  = flag.Float64("match-rate", record.CanonicalMatchRate, "Match rate 0.0-1.0")
		timeout    = flag.Duration("timeout", 300*time.Second, "Callback wait timeout")
		skipSeed   = flag.Bool("skip-seed", false, "Skip data seeding (assume already seeded)")
		jsonOut    = flag.Bool("json-output", false, "Output results as JSON")
		seed       = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadOrEnv(*configFile)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(cfg.Logging, "inject")

	if *pgURL != "" {
		cfg.Postgres.URL = *pgURL
	}
	if *natsURL != "" {
		cfg.NATS.URL = *natsURL
	}
	sql := *matchSQL
	if sql == "" {
		p, _ := pattern.Lookup(pattern.OneToOne)
		sql = p.MatchSQL
	}

	runID := uuid.NewString()
	logger.Info("Run starting", slog.String("run_id", runID), slog.Int("rows", *rows))

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("Failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	// Callback listener first, so its URL rides in the job payload.
	srv := engine.NewCallbackServer(logger)
	if err := srv.Start(cfg.Callback.Host, cfg.Callback.Port); err != nil {
		logger.Error("Failed to start callback listener", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("Callback listener started", slog.String("url", srv.URL()))

	if !*skipSeed {
		if err := st.Recreate(ctx); err != nil {
			logger.Error("Failed to recreate tables", slog.String("error", err.Error()))
			os.Exit(1)
		}
		em := emitter.New(record.NewGenerator(newRand(*seed)), st, emitter.Config{
			MatchRate: *matchRate,
			ChunkSize: cfg.Bench.ChunkSize,
		}, logger)
		totals, err := em.Run(ctx, *rows)
		if err != nil {
			logger.Error("Seeding failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Seeded benchmark data",
			slog.Int("invoices", totals.Invoices),
			slog.Int("payments", totals.Payments),
		)
	}

	start := time.Now()

	jobID := uuid.NewString()
	job, err := engine.NewExecJob(jobID, runID, sql, cfg.Postgres.URL, srv.URL())
	if err != nil {
		logger.Error("Failed to build exec job", slog.String("error", err.Error()))
		os.Exit(1)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		logger.Error("Failed to encode job payload", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := st.InsertExecJob(ctx, jobID, runID, payload); err != nil {
		logger.Error("Failed to insert job row", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher := engine.NewPublisher(cfg.NATS.URL, logger)
	if err := publisher.PublishExec(job); err != nil {
		logger.Error("Failed to publish exec job", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Waiting for worker callback", slog.Duration("timeout", *timeout))
	result := srv.Wait(ctx, *timeout)
	elapsed := time.Since(start)

	rowsPerSec := 0.0
	if elapsed > 0 {
		rowsPerSec = math.Round(float64(*rows) / elapsed.Seconds())
	}

	if *jsonOut {
		out := map[string]any{
			"run_id":                runID,
			"rows":                  *rows,
			"status":                result.Status,
			"elapsed_secs":          math.Round(elapsed.Seconds()*100) / 100,
			"rows_per_sec":          rowsPerSec,
			"matched_count":         result.MatchedCount,
			"unmatched_left_count":  result.UnmatchedLeftCount,
			"unmatched_right_count": result.UnmatchedRightCount,
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
	} else {
		fmt.Println("\n=== Results ===")
		fmt.Printf("  Run ID:          %s\n", runID)
		fmt.Printf("  Rows:            %d\n", *rows)
		fmt.Printf("  Status:          %s\n", result.Status)
		fmt.Printf("  Elapsed:         %.2fs\n", elapsed.Seconds())
		fmt.Printf("  Rows/sec:        %.0f\n", rowsPerSec)
		fmt.Printf("  Matched:         %d\n", result.MatchedCount)
		fmt.Printf("  Unmatched left:  %d\n", result.UnmatchedLeftCount)
		fmt.Printf("  Unmatched right: %d\n", result.UnmatchedRightCount)
	}

	if result.Status != engine.StatusComplete {
		os.Exit(1)
	}
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}
