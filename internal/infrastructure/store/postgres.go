// Package store provides Postgres access for the benchmark tables:
// recreate-and-bulk-load seeding, ground-truth count queries, and the
// exec-job row used by scaled injection.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
	"github.com/barockok/kalla-bench/internal/oracle"
)

// Fixed column order for bulk loads and TSV export.
var (
	InvoiceColumns = []string{
		"invoice_id", "customer_id", "customer_name", "invoice_date",
		"due_date", "amount", "currency", "status", "description",
		"batch_ref",
	}
	PaymentColumns = []string{
		"payment_id", "payer_id", "payer_name", "payment_date",
		"paid_amount", "currency", "payment_method", "reference_number",
		"bank_reference", "notes",
	}
)

const createInvoices = `
DROP TABLE IF EXISTS bench_invoices;
CREATE TABLE bench_invoices (
    invoice_id    TEXT PRIMARY KEY,
    customer_id   TEXT,
    customer_name TEXT,
    invoice_date  TEXT,
    due_date      TEXT,
    amount        DOUBLE PRECISION,
    currency      TEXT,
    status        TEXT,
    description   TEXT,
    batch_ref     TEXT
);
`

const createPayments = `
DROP TABLE IF EXISTS bench_payments;
CREATE TABLE bench_payments (
    payment_id       TEXT PRIMARY KEY,
    payer_id         TEXT,
    payer_name       TEXT,
    payment_date     TEXT,
    paid_amount      DOUBLE PRECISION,
    currency         TEXT,
    payment_method   TEXT,
    reference_number TEXT,
    bank_reference   TEXT,
    notes            TEXT
);
`

// Store wraps a pgx connection pool over the benchmark database.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time check that Store is a SQL-backed oracle.
var _ oracle.Oracle = (*Store)(nil)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Recreate drops and recreates both benchmark tables. Seeding always
// starts from empty tables; there is no update path.
func (s *Store) Recreate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createInvoices); err != nil {
		return fmt.Errorf("recreating bench_invoices: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createPayments); err != nil {
		return fmt.Errorf("recreating bench_payments: %w", err)
	}
	return nil
}

// WriteInvoices bulk-loads invoices via COPY.
func (s *Store) WriteInvoices(ctx context.Context, invoices []record.Invoice) error {
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"bench_invoices"},
		InvoiceColumns,
		pgx.CopyFromSlice(len(invoices), func(i int) ([]any, error) {
			inv := invoices[i]
			return []any{
				inv.InvoiceID, inv.CustomerID, inv.CustomerName, inv.InvoiceDate,
				inv.DueDate, inv.Amount, inv.Currency, inv.Status, inv.Description,
				inv.BatchRef,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying invoices: %w", err)
	}
	return nil
}

// WritePayments bulk-loads payments via COPY.
func (s *Store) WritePayments(ctx context.Context, payments []record.Payment) error {
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"bench_payments"},
		PaymentColumns,
		pgx.CopyFromSlice(len(payments), func(i int) ([]any, error) {
			pay := payments[i]
			return []any{
				pay.PaymentID, pay.PayerID, pay.PayerName, pay.PaymentDate,
				pay.PaidAmount, pay.Currency, pay.PaymentMethod, pay.ReferenceNumber,
				pay.BankReference, pay.Notes,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying payments: %w", err)
	}
	return nil
}

// Evaluate runs the pattern's ground-truth queries directly against the
// loaded tables. All five counts come from independent full-table
// queries; nothing is derived or sampled.
func (s *Store) Evaluate(ctx context.Context, p pattern.Pattern) (oracle.GroundTruthResult, error) {
	var res oracle.GroundTruthResult
	queries := []struct {
		sql  string
		dest *int
	}{
		{p.MatchedSQL, &res.Matched},
		{p.UnmatchedLeftSQL, &res.UnmatchedLeft},
		{p.UnmatchedRightSQL, &res.UnmatchedRight},
		{"SELECT COUNT(*) FROM bench_invoices", &res.TotalLeft},
		{"SELECT COUNT(*) FROM bench_payments", &res.TotalRight},
	}
	for _, q := range queries {
		if err := s.pool.QueryRow(ctx, q.sql).Scan(q.dest); err != nil {
			return oracle.GroundTruthResult{}, fmt.Errorf("ground truth query for %s: %w", p.Name, err)
		}
	}
	return res, nil
}

// InsertExecJob inserts a pending exec job row for the worker to pick
// up after the NATS publish.
func (s *Store) InsertExecJob(ctx context.Context, jobID, runID string, payload []byte) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO jobs (job_id, run_id, job_type, status, payload) VALUES ($1, $2, 'exec', 'pending', $3)",
		jobID, runID, payload,
	)
	if err != nil {
		return fmt.Errorf("inserting exec job %s: %w", jobID, err)
	}
	return nil
}
