package record

import (
	"fmt"
	"math/rand/v2"
)

// Amounts are drawn uniformly from [100, 50100] and rounded to cents.
const (
	amountMin  = 100.0
	amountSpan = 50000.0
)

// Generator produces invoice and payment rows from an explicit random
// source. It is not safe for concurrent use; create one per run.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator backed by rng. Callers that need
// reproducible datasets must seed rng themselves.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Invoices generates count invoices numbered offset+1 .. offset+count.
// Customer, customer name and currency are cyclic functions of the global
// row index, so chunked generation yields the same assignment as a single
// pass.
func (g *Generator) Invoices(count, offset int) []Invoice {
	invoices := make([]Invoice, 0, count)
	for i := 1; i <= count; i++ {
		idx := offset + i
		invoices = append(invoices, Invoice{
			InvoiceID:    PadID("INV", idx),
			CustomerID:   PadID("CUST", (idx%len(CustomerNames))+1),
			CustomerName: CustomerNames[idx%len(CustomerNames)],
			InvoiceDate:  g.randomDate(2024),
			DueDate:      g.randomDate(2024),
			Amount:       g.randomAmount(),
			Currency:     Currencies[idx%len(Currencies)],
			Status:       "pending",
			Description:  fmt.Sprintf("Service %d", idx),
		})
	}
	return invoices
}

func (g *Generator) randomAmount() float64 {
	return Round2(amountMin + g.rng.Float64()*amountSpan)
}

// randomDate returns YYYY-MM-DD with day capped at 28 so every month is
// valid.
func (g *Generator) randomDate(year int) string {
	month := g.rng.IntN(12) + 1
	day := g.rng.IntN(28) + 1
	return fmt.Sprintf("%d-%02d-%02d", year, month, day)
}
