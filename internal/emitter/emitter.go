// Package emitter drives chunked dataset generation with bounded memory.
//
// Only scalar counters survive between chunks: payment and orphan
// offsets, batch numbering, and cumulative totals. Each chunk's rows are
// handed to the sink and dropped before the next chunk is generated.
package emitter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
)

// DefaultChunkSize bounds the number of invoice rows held in memory at
// once.
const DefaultChunkSize = 500_000

// Sink receives generated chunks. Implementations must tolerate multiple
// calls per run.
type Sink interface {
	WriteInvoices(ctx context.Context, invoices []record.Invoice) error
	WritePayments(ctx context.Context, payments []record.Payment) error
}

// Config controls one emission run.
type Config struct {
	// Pattern selects the generation shape; pattern.Batch routes through
	// the batch grouper, everything else through the match distributor.
	Pattern string

	// MatchRate is used as given: 0.0 is a real rate (invoices only, no
	// payments), not a request for the default. Callers wanting the
	// canonical distribution pass record.CanonicalMatchRate.
	MatchRate float64

	ChunkSize int
	Batch     record.BatchConfig
}

// Totals reports what a run produced.
type Totals struct {
	Invoices int
	Payments int
}

// Emitter generates a dataset chunk by chunk into a sink.
type Emitter struct {
	gen    *record.Generator
	sink   Sink
	cfg    Config
	logger *slog.Logger
}

// New creates an emitter. A zero chunk size falls back to the default;
// the match rate is never defaulted so a rate of 0.0 stays 0.0.
func New(gen *record.Generator, sink Sink, cfg Config, logger *slog.Logger) *Emitter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Batch.MinSize == 0 && cfg.Batch.MaxSize == 0 {
		cfg.Batch = record.DefaultBatchConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{gen: gen, sink: sink, cfg: cfg, logger: logger}
}

// Run generates totalRows invoices (plus their payments) and writes them
// through the sink. The generated invoice count must reconcile exactly
// with the request; any shortfall is an error, never silently dropped
// rows.
func (e *Emitter) Run(ctx context.Context, totalRows int) (Totals, error) {
	if totalRows <= 0 {
		return Totals{}, fmt.Errorf("row count must be positive, got %d", totalRows)
	}

	var totals Totals
	payOffset := 0
	orphanOffset := 0
	batchOffset := 0

	for start := 0; start < totalRows; start += e.cfg.ChunkSize {
		size := e.cfg.ChunkSize
		if remaining := totalRows - start; remaining < size {
			size = remaining
		}

		var invoices []record.Invoice
		var payments []record.Payment

		if e.cfg.Pattern == pattern.Batch {
			batchCfg := e.cfg.Batch
			batchCfg.BatchOffset = batchOffset
			var created int
			var err error
			invoices, created, err = e.gen.BatchInvoices(size, start, batchCfg)
			if err != nil {
				return totals, err
			}
			batchOffset += created
			payments = e.gen.BatchPayments(invoices, payOffset)
		} else {
			invoices = e.gen.Invoices(size, start)
			payments = e.gen.Payments(invoices, record.DistributionConfig{
				MatchRate:    e.cfg.MatchRate,
				PayOffset:    payOffset,
				OrphanOffset: orphanOffset,
			})
		}

		if err := e.sink.WriteInvoices(ctx, invoices); err != nil {
			return totals, fmt.Errorf("writing invoice chunk at %d: %w", start, err)
		}
		if err := e.sink.WritePayments(ctx, payments); err != nil {
			return totals, fmt.Errorf("writing payment chunk at %d: %w", start, err)
		}

		totals.Invoices += len(invoices)
		totals.Payments += len(payments)
		payOffset += len(payments)
		if e.cfg.Pattern != pattern.Batch && e.cfg.MatchRate == record.CanonicalMatchRate {
			orphanOffset += int(float64(size) * 0.10)
		}

		e.logger.Debug("chunk written",
			slog.Int("start", start),
			slog.Int("invoices", len(invoices)),
			slog.Int("payments", len(payments)),
		)
	}

	if totals.Invoices != totalRows {
		return totals, fmt.Errorf("generated %d invoices, expected %d", totals.Invoices, totalRows)
	}
	return totals, nil
}
