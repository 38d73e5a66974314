package record

import (
	"fmt"
	"sort"
)

// BatchConfig controls batch grouping. BatchOffset carries batch
// numbering across chunks so refs never collide.
type BatchConfig struct {
	MinSize     int
	MaxSize     int
	BatchOffset int
}

// DefaultBatchConfig returns the standard batch size range.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{MinSize: 10, MaxSize: 50}
}

// BatchInvoices generates count invoices numbered from offset and assigns
// contiguous runs of random length in [MinSize, MaxSize] to successive
// BATCH-###### refs. Every invoice receives a ref; runs never overlap and
// the final run may be short. Returns the invoices and the number of
// batches created.
func (g *Generator) BatchInvoices(count, offset int, cfg BatchConfig) ([]Invoice, int, error) {
	if cfg.MinSize < 1 || cfg.MaxSize < cfg.MinSize {
		return nil, 0, fmt.Errorf("batch size range [%d, %d] is invalid", cfg.MinSize, cfg.MaxSize)
	}
	invoices := g.Invoices(count, offset)

	batch := cfg.BatchOffset
	i := 0
	for i < count {
		batch++
		ref := PadID("BATCH", batch)
		size := cfg.MinSize + g.rng.IntN(cfg.MaxSize-cfg.MinSize+1)
		for j := 0; j < size && i < count; j++ {
			invoices[i].BatchRef = &ref
			i++
		}
	}
	return invoices, batch - cfg.BatchOffset, nil
}

// BatchPayments groups invoices by batch ref and emits one aggregate
// payment per batch, plus max(1, n/10) orphan payments whose refs match
// no batch. Grouping is a hash accumulation, so the input need not be
// sorted; member amounts are summed first and rounded once per batch.
// Payment numbering continues from payOffset.
func (g *Generator) BatchPayments(invoices []Invoice, payOffset int) []Payment {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	first := make(map[string]Invoice)
	for _, inv := range invoices {
		if inv.BatchRef == nil {
			continue
		}
		ref := *inv.BatchRef
		sums[ref] += inv.Amount
		counts[ref]++
		if _, ok := first[ref]; !ok {
			first[ref] = inv
		}
	}

	// Stable emission order so payment IDs are reproducible.
	refs := make([]string, 0, len(sums))
	for ref := range sums {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	payIdx := payOffset + 1
	payments := make([]Payment, 0, len(refs))
	for _, ref := range refs {
		lead := first[ref]
		payments = append(payments, Payment{
			PaymentID:       PadID("PAY", payIdx),
			PayerID:         lead.CustomerID,
			PayerName:       lead.CustomerName,
			PaymentDate:     g.randomDate(2024),
			PaidAmount:      Round2(sums[ref]),
			Currency:        lead.Currency,
			PaymentMethod:   "wire_transfer",
			ReferenceNumber: ref,
			BankReference:   PadID("BR-PAY", payIdx),
			Notes:           fmt.Sprintf("Batch payment for %s (%d invoices)", ref, counts[ref]),
		})
		payIdx++
	}

	orphanCount := len(invoices) / 10
	if orphanCount < 1 {
		orphanCount = 1
	}
	for i := 0; i < orphanCount; i++ {
		payments = append(payments, Payment{
			PaymentID:       PadID("PAY", payIdx),
			PayerID:         PadID("CUST", orphanPayerBase+i),
			PayerName:       fmt.Sprintf("Unknown Payer %d", i+1),
			PaymentDate:     g.randomDate(2024),
			PaidAmount:      g.randomAmount(),
			Currency:        "USD",
			PaymentMethod:   "wire_transfer",
			ReferenceNumber: PadID("ORPHAN-BATCH", payIdx),
			BankReference:   PadID("BR-PAY", payIdx),
			Notes:           fmt.Sprintf("Orphan batch payment %d", i+1),
		})
		payIdx++
	}

	return payments
}
