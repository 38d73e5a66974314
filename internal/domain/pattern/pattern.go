// Package pattern defines the four match patterns the harness verifies:
// the engine-side match rule over aliased left/right sources, the
// ground-truth count queries over the persisted tables, and an
// equivalent in-memory predicate.
//
// The one_to_one ground truth uses ABS(amount - paid_amount) <= 0.02, a
// fixed absolute threshold. The generator's tolerance category uses a
// relative 2% band. Keep them separate: the difference is exactly the
// kind of engine/oracle disagreement the verifier exists to surface.
package pattern

import (
	"fmt"
	"math"

	"github.com/barockok/kalla-bench/internal/domain/record"
)

// AbsoluteTolerance is the fixed threshold used by the one_to_one ground
// truth predicate.
const AbsoluteTolerance = 0.02

// Canonical pattern names, in evaluation order.
const (
	OneToOne = "one_to_one"
	Split    = "split"
	Batch    = "batch"
	Cross    = "cross"
)

// Pattern bundles everything the verifier needs for one relationship
// shape.
type Pattern struct {
	Name string

	// MatchSQL is submitted to the engine; it joins the aliased
	// left_src/right_src row sources.
	MatchSQL string

	// Ground-truth count queries over bench_invoices/bench_payments.
	// Each returns a single integer.
	MatchedSQL        string
	UnmatchedLeftSQL  string
	UnmatchedRightSQL string

	// Matches is the same join predicate evaluated in memory.
	Matches func(inv *record.Invoice, pay *record.Payment) bool
}

var patterns = []Pattern{
	{
		Name: OneToOne,
		MatchSQL: "SELECT i.invoice_id, p.payment_id, i.amount, p.paid_amount " +
			"FROM left_src i JOIN right_src p " +
			"ON i.invoice_id = p.reference_number " +
			"AND tolerance_match(i.amount, p.paid_amount, 0.02)",
		MatchedSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"JOIN bench_payments p ON i.invoice_id = p.reference_number " +
			"AND ABS(i.amount - p.paid_amount) <= 0.02",
		UnmatchedLeftSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_payments p " +
			"  WHERE i.invoice_id = p.reference_number " +
			"  AND ABS(i.amount - p.paid_amount) <= 0.02)",
		UnmatchedRightSQL: "SELECT COUNT(*) FROM bench_payments p " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_invoices i " +
			"  WHERE i.invoice_id = p.reference_number " +
			"  AND ABS(i.amount - p.paid_amount) <= 0.02)",
		Matches: func(inv *record.Invoice, pay *record.Payment) bool {
			return inv.InvoiceID == pay.ReferenceNumber &&
				math.Abs(inv.Amount-pay.PaidAmount) <= AbsoluteTolerance
		},
	},
	{
		Name: Split,
		MatchSQL: "SELECT l.invoice_id, r.payment_id, l.amount AS invoice_amount, " +
			"r.paid_amount AS payment_amount " +
			"FROM left_src l JOIN right_src r ON l.invoice_id = r.reference_number",
		MatchedSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"JOIN bench_payments p ON i.invoice_id = p.reference_number",
		UnmatchedLeftSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_payments p " +
			"  WHERE i.invoice_id = p.reference_number)",
		UnmatchedRightSQL: "SELECT COUNT(*) FROM bench_payments p " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_invoices i " +
			"  WHERE i.invoice_id = p.reference_number)",
		Matches: func(inv *record.Invoice, pay *record.Payment) bool {
			return inv.InvoiceID == pay.ReferenceNumber
		},
	},
	{
		Name: Batch,
		MatchSQL: "SELECT l.invoice_id, r.payment_id, l.batch_ref, " +
			"l.amount AS invoice_amount, r.paid_amount AS batch_total " +
			"FROM left_src l JOIN right_src r ON l.batch_ref = r.reference_number",
		MatchedSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"JOIN bench_payments p ON i.batch_ref = p.reference_number",
		UnmatchedLeftSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"WHERE i.batch_ref IS NULL OR NOT EXISTS (" +
			"  SELECT 1 FROM bench_payments p " +
			"  WHERE i.batch_ref = p.reference_number)",
		UnmatchedRightSQL: "SELECT COUNT(*) FROM bench_payments p " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_invoices i " +
			"  WHERE i.batch_ref = p.reference_number)",
		Matches: func(inv *record.Invoice, pay *record.Payment) bool {
			return inv.BatchRef != nil && *inv.BatchRef == pay.ReferenceNumber
		},
	},
	{
		Name: Cross,
		MatchSQL: "SELECT l.invoice_id, r.payment_id, l.customer_id, " +
			"l.amount AS invoice_amount, r.paid_amount AS payment_amount " +
			"FROM left_src l JOIN right_src r " +
			"ON l.customer_id = r.payer_id AND l.currency = r.currency " +
			"AND SUBSTRING(l.invoice_date, 1, 7) = SUBSTRING(r.payment_date, 1, 7)",
		MatchedSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"JOIN bench_payments p " +
			"ON i.customer_id = p.payer_id AND i.currency = p.currency " +
			"AND SUBSTRING(i.invoice_date, 1, 7) = SUBSTRING(p.payment_date, 1, 7)",
		UnmatchedLeftSQL: "SELECT COUNT(*) FROM bench_invoices i " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_payments p " +
			"  WHERE i.customer_id = p.payer_id AND i.currency = p.currency " +
			"  AND SUBSTRING(i.invoice_date, 1, 7) = SUBSTRING(p.payment_date, 1, 7))",
		UnmatchedRightSQL: "SELECT COUNT(*) FROM bench_payments p " +
			"WHERE NOT EXISTS (" +
			"  SELECT 1 FROM bench_invoices i " +
			"  WHERE i.customer_id = p.payer_id AND i.currency = p.currency " +
			"  AND SUBSTRING(i.invoice_date, 1, 7) = SUBSTRING(p.payment_date, 1, 7))",
		Matches: func(inv *record.Invoice, pay *record.Payment) bool {
			return inv.CustomerID == pay.PayerID &&
				inv.Currency == pay.Currency &&
				monthPrefix(inv.InvoiceDate) == monthPrefix(pay.PaymentDate)
		},
	},
}

// All returns the patterns in canonical order.
func All() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// Lookup resolves a pattern by name.
func Lookup(name string) (Pattern, error) {
	for _, p := range patterns {
		if p.Name == name {
			return p, nil
		}
	}
	return Pattern{}, fmt.Errorf("unknown pattern %q", name)
}

// monthPrefix returns the YYYY-MM prefix of a YYYY-MM-DD date string.
func monthPrefix(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
