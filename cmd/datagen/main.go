package main

import (
	"encoding/csv"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/barockok/kalla-bench/internal/domain/record"
	"github.com/barockok/kalla-bench/internal/infrastructure/config"
	"github.com/barockok/kalla-bench/internal/infrastructure/logging"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		rows       = flag.Int("rows", 0, "Number of invoice rows (required)")
		outputDir  = flag.String("output-dir", "", "Directory to write CSVs into (required)")
		matchRate  = flag.Float64("match-rate", record.CanonicalMatchRate, "Match rate 0.0-1.0")
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
	logger := logging.NewLoggerWithSystem(cfg.Logging, "datagen")

	if *rows <= 0 || *outputDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Error("Failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gen := record.NewGenerator(newRand(*seed))
	invoices := gen.Invoices(*rows, 0)
	payments := gen.Payments(invoices, record.DistributionConfig{MatchRate: *matchRate})

	invPath := filepath.Join(*outputDir, "invoices.csv")
	if err := writeInvoicesCSV(invPath, invoices); err != nil {
		logger.Error("Failed to write invoices", slog.String("error", err.Error()))
		os.Exit(1)
	}
	payPath := filepath.Join(*outputDir, "payments.csv")
	if err := writePaymentsCSV(payPath, payments); err != nil {
		logger.Error("Failed to write payments", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Wrote invoices", slog.Int("count", len(invoices)), slog.String("path", invPath))
	logger.Info("Wrote payments", slog.Int("count", len(payments)), slog.String("path", payPath))
}

func writeInvoicesCSV(path string, invoices []record.Invoice) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"invoice_id", "customer_id", "customer_name", "invoice_date",
		"due_date", "amount", "currency", "status", "description", "batch_ref",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range invoices {
		inv := &invoices[i]
		batchRef := ""
		if inv.BatchRef != nil {
			batchRef = *inv.BatchRef
		}
		row := []string{
			inv.InvoiceID, inv.CustomerID, inv.CustomerName, inv.InvoiceDate,
			inv.DueDate, formatAmount(inv.Amount), inv.Currency, inv.Status,
			inv.Description, batchRef,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writePaymentsCSV(path string, payments []record.Payment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"payment_id", "payer_id", "payer_name", "payment_date",
		"paid_amount", "currency", "payment_method", "reference_number",
		"bank_reference", "notes",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range payments {
		pay := &payments[i]
		row := []string{
			pay.PaymentID, pay.PayerID, pay.PayerName, pay.PaymentDate,
			formatAmount(pay.PaidAmount), pay.Currency, pay.PaymentMethod,
			pay.ReferenceNumber, pay.BankReference, pay.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}
