// Standalone completion listener for orchestration scripts: binds a
// port (0 = random), prints CALLBACK_PORT=<n> so a parent process can
// read it, then blocks until the first terminal callback and writes the
// result JSON to the output file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/barockok/kalla-bench/internal/engine"
	"github.com/barockok/kalla-bench/internal/infrastructure/config"
	"github.com/barockok/kalla-bench/internal/infrastructure/logging"
)

func main() {
	var (
		port    = flag.Int("port", 0, "Port to listen on (0 = random available port)")
		output  = flag.String("output", "", "Path to write the result JSON file (required)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := logging.NewLoggerWithSystem(config.LoggingConfig{Level: level, Format: "text"}, "callback")

	if *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	srv := engine.NewCallbackServer(logger)
	if err := srv.Start("127.0.0.1", *port); err != nil {
		logger.Error("Failed to start listener", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// The parent process reads the bound port from stdout.
	fmt.Printf("CALLBACK_PORT=%d\n", srv.Port())

	result := srv.Wait(context.Background(), 0)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("Failed to encode result", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logger.Error("Failed to write result file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Result written",
		slog.String("status", result.Status),
		slog.String("path", *output),
	)
}
