package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
	"github.com/barockok/kalla-bench/internal/emitter"
	"github.com/barockok/kalla-bench/internal/infrastructure/config"
	"github.com/barockok/kalla-bench/internal/infrastructure/logging"
	"github.com/barockok/kalla-bench/internal/infrastructure/store"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path")
		rows        = flag.Int("rows", 0, "Number of invoice rows (required)")
		patternName = flag.String("pattern", pattern.OneToOne, "Match pattern to seed for")
		matchRate   = flag.Float64("match-rate", record.CanonicalMatchRate, "Match rate 0.0-1.0")
		pgURL       = flag.String("pg-url", "", "PostgreSQL connection URL (overrides config)")
		chunkSize   = flag.Int("chunk-size", 0, "Rows per chunk (0 = default)")
		seed        = flag.Int64("seed", 0, "Random seed (0 = time-based)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
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
	logger := logging.NewLoggerWithSystem(cfg.Logging, "seed")

	if *rows <= 0 {
		flag.Usage()
		os.Exit(2)
	}
	p, err := pattern.Lookup(*patternName)
	if err != nil {
		logger.Error("Unknown pattern", slog.String("pattern", *patternName))
		os.Exit(2)
	}
	if *pgURL != "" {
		cfg.Postgres.URL = *pgURL
	}
	if *chunkSize > 0 {
		cfg.Bench.ChunkSize = *chunkSize
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Error("Failed to connect to Postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Recreate(ctx); err != nil {
		logger.Error("Failed to recreate tables", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gen := record.NewGenerator(newRand(*seed))
	em := emitter.New(gen, st, emitter.Config{
		Pattern:   p.Name,
		MatchRate: *matchRate,
		ChunkSize: cfg.Bench.ChunkSize,
	}, logger)

	start := time.Now()
	totals, err := em.Run(ctx, *rows)
	if err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Seeding complete",
		slog.String("pattern", p.Name),
		slog.Int("invoices", totals.Invoices),
		slog.Int("payments", totals.Payments),
		slog.Duration("elapsed", time.Since(start)),
	)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}
