package store

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/barockok/kalla-bench/internal/domain/record"
)

// TSV export in the Postgres COPY text format: one line per row, fields
// in the fixed column order, NULLs as the literal \N. This is the bulk
// load interchange format for collaborators that take a file instead of
// a live table.

const tsvNull = `\N`

// WriteInvoicesTSV writes invoices as COPY-format TSV.
func WriteInvoicesTSV(w io.Writer, invoices []record.Invoice) error {
	for i := range invoices {
		inv := &invoices[i]
		batchRef := tsvNull
		if inv.BatchRef != nil {
			batchRef = *inv.BatchRef
		}
		fields := []string{
			inv.InvoiceID, inv.CustomerID, inv.CustomerName, inv.InvoiceDate,
			inv.DueDate, formatAmount(inv.Amount), inv.Currency, inv.Status,
			inv.Description, batchRef,
		}
		if err := writeTSVLine(w, fields); err != nil {
			return fmt.Errorf("writing invoice %s: %w", inv.InvoiceID, err)
		}
	}
	return nil
}

// WritePaymentsTSV writes payments as COPY-format TSV.
func WritePaymentsTSV(w io.Writer, payments []record.Payment) error {
	for i := range payments {
		pay := &payments[i]
		fields := []string{
			pay.PaymentID, pay.PayerID, pay.PayerName, pay.PaymentDate,
			formatAmount(pay.PaidAmount), pay.Currency, pay.PaymentMethod,
			pay.ReferenceNumber, pay.BankReference, pay.Notes,
		}
		if err := writeTSVLine(w, fields); err != nil {
			return fmt.Errorf("writing payment %s: %w", pay.PaymentID, err)
		}
	}
	return nil
}

func writeTSVLine(w io.Writer, fields []string) error {
	_, err := io.WriteString(w, strings.Join(fields, "\t")+"\n")
	return err
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
