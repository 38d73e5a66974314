// Package record defines the benchmark row types and the deterministic
// generators that produce them.
//
// All generation is driven by an explicit *rand.Rand so a seeded source
// reproduces a dataset exactly. Structural fields (IDs, customer
// assignment, currency) are a pure function of the row index and are
// stable across chunked generation; amounts and dates consume the random
// source.
package record

import (
	"fmt"
	"math"
)

// CustomerNames is the fixed pool of recurring customers. Assignment is
// cyclic over the row index, never random.
var CustomerNames = []string{
	"Acme Corp", "TechStart Inc", "Global Traders", "Innovate Solutions",
	"DataFlow Systems", "CloudNine Hosting", "Enterprise Holdings",
	"StartupXYZ", "MegaCorp Industries", "SmallBiz Co",
	"FutureTech Labs", "Euro Partners", "British Solutions",
	"QuickPay Corp", "Alpha Dynamics", "Beta Industries",
	"Gamma Solutions", "Delta Services", "Epsilon Tech", "Zeta Corp",
}

// PaymentMethods is the enumerated set of payment methods, cycled per
// category.
var PaymentMethods = []string{"wire_transfer", "ach", "credit_card", "check"}

// Currencies is a 6-slot weighted table: indexing by row index yields a
// reproducible ~67/17/17 USD/EUR/GBP split.
var Currencies = []string{"USD", "USD", "USD", "USD", "EUR", "GBP"}

// Invoice is one left-side row. BatchRef is nil unless the invoice was
// produced by the batch grouper.
type Invoice struct {
	InvoiceID    string
	CustomerID   string
	CustomerName string
	InvoiceDate  string
	DueDate      string
	Amount       float64
	Currency     string
	Status       string
	Description  string
	BatchRef     *string
}

// Payment is one right-side row. ReferenceNumber correlates to an
// invoice_id, a batch_ref, or a synthetic unmatched marker.
type Payment struct {
	PaymentID       string
	PayerID         string
	PayerName       string
	PaymentDate     string
	PaidAmount      float64
	Currency        string
	PaymentMethod   string
	ReferenceNumber string
	BankReference   string
	Notes           string
}

// PadID formats an identifier as PREFIX-######.
func PadID(prefix string, n int) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// Round2 rounds to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
