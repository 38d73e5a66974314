package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
	"github.com/barockok/kalla-bench/internal/emitter"
	"github.com/barockok/kalla-bench/internal/engine"
	"github.com/barockok/kalla-bench/internal/infrastructure/config"
	"github.com/barockok/kalla-bench/internal/infrastructure/logging"
	"github.com/barockok/kalla-bench/internal/infrastructure/store"
	"github.com/barockok/kalla-bench/internal/verifier"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Configuration file path")
		rows         = flag.Int("rows", 0, "Number of invoice rows (0 = config default)")
		patternsFlag = flag.String("patterns", "", "Comma-separated pattern names (empty = all)")
		pgURL        = flag.String("pg-url", "", "PostgreSQL connection URL (overrides config)")
		schedulerURL = flag.String("scheduler-url", "", "Engine scheduler URL (overrides config)")
		resultsDir   = flag.String("results-dir", "", "Directory for discrepancy reports (overrides config)")
		timeout      = flag.Duration("timeout", 0, "Engine completion timeout (0 = config default)")
		seed         = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
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
	logger := logging.NewLoggerWithSystem(cfg.Logging, "verify")

	if *rows > 0 {
		cfg.Bench.Rows = *rows
	}
	if *pgURL != "" {
		cfg.Postgres.URL = *pgURL
	}
	if *schedulerURL != "" {
		cfg.Scheduler.URL = *schedulerURL
	}
	if *resultsDir != "" {
		cfg.Bench.ResultsDir = *resultsDir
	}
	if *timeout > 0 {
		cfg.Bench.EngineTimeout = *timeout
	}

	patterns, err := resolvePatterns(*patternsFlag)
	if err != nil {
		logger.Error("Invalid patterns", slog.String("error", err.Error()))
		os.Exit(2)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("Failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	rng := newRand(*seed)
	seeder := verifier.SeedFunc(func(ctx context.Context, p pattern.Pattern) error {
		if err := st.Recreate(ctx); err != nil {
			return err
		}
		em := emitter.New(record.NewGenerator(rng), st, emitter.Config{
			Pattern:   p.Name,
			MatchRate: cfg.Bench.MatchRate,
			ChunkSize: cfg.Bench.ChunkSize,
		}, logger)
		_, err := em.Run(ctx, cfg.Bench.Rows)
		return err
	})

	runner := engine.NewRunner(
		engine.NewClient(cfg.Scheduler.URL, logger),
		cfg.Postgres.URL,
		cfg.Callback.Host,
		cfg.Bench.EngineTimeout,
		logger,
	)

	v := verifier.New(seeder, st, runner, logger)

	logger.Info("Starting verification",
		slog.Int("rows", cfg.Bench.Rows),
		slog.Int("patterns", len(patterns)),
		slog.String("scheduler", cfg.Scheduler.URL),
	)

	results, err := v.Run(ctx, patterns)
	if err != nil {
		logger.Error("Verification aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  VERIFICATION SUMMARY")
	for _, r := range results {
		fmt.Printf("  %-15s %-12s %s\n", r.Pattern, r.Status, r.Detail)
	}

	if verifier.AllPass(results) {
		fmt.Println("\n  Overall: ALL PASS")
		return
	}

	fmt.Println("\n  Overall: FAILURES DETECTED")
	path, err := verifier.WriteReport(cfg.Bench.ResultsDir, cfg.Bench.Rows, results)
	if err != nil {
		logger.Error("Failed to write report", slog.String("error", err.Error()))
	} else {
		logger.Info("Bug report saved", slog.String("path", path))
	}
	os.Exit(1)
}

func resolvePatterns(names string) ([]pattern.Pattern, error) {
	if names == "" {
		return pattern.All(), nil
	}
	var out []pattern.Pattern
	for _, name := range strings.Split(names, ",") {
		p, err := pattern.Lookup(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}
