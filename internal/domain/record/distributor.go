package record

import "fmt"

// CanonicalMatchRate selects the full mixed distribution: 60% exact, 15%
// tolerance, 5% duplicate, 20% left orphans, plus 10% right orphans.
const CanonicalMatchRate = 0.75

// Relative variance applied to tolerance-category payments. The oracle's
// tolerance predicate is a fixed absolute threshold (see the pattern
// package); the two definitions are intentionally distinct.
const toleranceVariance = 0.02

// Payer IDs for right-side orphans start here, outside the cyclic
// customer range.
const orphanPayerBase = 200

// DistributionConfig controls how payments are distributed against an
// invoice chunk. PayOffset and OrphanOffset carry numbering across chunks
// and must be threaded by the caller; the generator holds no cross-call
// state.
type DistributionConfig struct {
	MatchRate    float64
	PayOffset    int
	OrphanOffset int
}

// DefaultDistribution returns the canonical distribution with zero
// offsets.
func DefaultDistribution() DistributionConfig {
	return DistributionConfig{MatchRate: CanonicalMatchRate}
}

// Payments generates payment rows for invoices according to cfg.
//
// MatchRate >= 1.0 yields one exact payment per invoice and nothing else.
// Any custom rate below 1.0 yields floor(n*rate) exact payments and
// leaves the remainder as left orphans. The canonical rate yields the
// full mixed distribution.
func (g *Generator) Payments(invoices []Invoice, cfg DistributionConfig) []Payment {
	n := len(invoices)

	exactCount := n
	toleranceCount := 0
	duplicateCount := 0
	orphanRightCount := 0

	switch {
	case cfg.MatchRate >= 1.0:
		// everything matches exactly
	case cfg.MatchRate == CanonicalMatchRate:
		exactCount = int(float64(n) * 0.60)
		toleranceCount = int(float64(n) * 0.15)
		duplicateCount = int(float64(n) * 0.05)
		orphanRightCount = int(float64(n) * 0.10)
	default:
		exactCount = int(float64(n) * cfg.MatchRate)
	}

	payments := make([]Payment, 0, exactCount+toleranceCount+duplicateCount*2+orphanRightCount)
	payIdx := cfg.PayOffset + 1

	for i := 0; i < exactCount; i++ {
		inv := invoices[i]
		payments = append(payments, Payment{
			PaymentID:       PadID("PAY", payIdx),
			PayerID:         inv.CustomerID,
			PayerName:       inv.CustomerName,
			PaymentDate:     g.randomDate(2024),
			PaidAmount:      inv.Amount,
			Currency:        inv.Currency,
			PaymentMethod:   PaymentMethods[i%len(PaymentMethods)],
			ReferenceNumber: inv.InvoiceID,
			BankReference:   PadID("BR-PAY", payIdx),
			Notes:           fmt.Sprintf("Exact match for %s", inv.InvoiceID),
		})
		payIdx++
	}

	for i := 0; i < toleranceCount; i++ {
		inv := invoices[exactCount+i]
		variance := 1 + (g.rng.Float64()*2-1)*toleranceVariance
		payments = append(payments, Payment{
			PaymentID:       PadID("PAY", payIdx),
			PayerID:         inv.CustomerID,
			PayerName:       inv.CustomerName,
			PaymentDate:     g.randomDate(2024),
			PaidAmount:      Round2(inv.Amount * variance),
			Currency:        inv.Currency,
			PaymentMethod:   PaymentMethods[i%len(PaymentMethods)],
			ReferenceNumber: inv.InvoiceID,
			BankReference:   PadID("BR-PAY", payIdx),
			Notes:           fmt.Sprintf("Tolerance match for %s", inv.InvoiceID),
		})
		payIdx++
	}

	// Duplicate keys: two half-amount payments per invoice, distinguished
	// by a -PARTn suffix on the reference.
	for i := 0; i < duplicateCount; i++ {
		inv := invoices[exactCount+toleranceCount+i]
		half := Round2(inv.Amount / 2)
		for j := 1; j <= 2; j++ {
			payments = append(payments, Payment{
				PaymentID:       PadID("PAY", payIdx),
				PayerID:         inv.CustomerID,
				PayerName:       inv.CustomerName,
				PaymentDate:     g.randomDate(2024),
				PaidAmount:      half,
				Currency:        "USD",
				PaymentMethod:   "wire_transfer",
				ReferenceNumber: fmt.Sprintf("%s-PART%d", inv.InvoiceID, j),
				BankReference:   PadID("BR-PAY", payIdx),
				Notes:           fmt.Sprintf("Split payment %d for %s", j, inv.InvoiceID),
			})
			payIdx++
		}
	}

	// Left orphans are simply the invoices beyond the categories above:
	// no payment is generated for them.

	for i := 0; i < orphanRightCount; i++ {
		seq := cfg.OrphanOffset + i + 1
		payments = append(payments, Payment{
			PaymentID:       PadID("PAY", payIdx),
			PayerID:         PadID("CUST", orphanPayerBase+cfg.OrphanOffset+i),
			PayerName:       fmt.Sprintf("Unknown Payer %d", seq),
			PaymentDate:     g.randomDate(2024),
			PaidAmount:      g.randomAmount(),
			Currency:        "USD",
			PaymentMethod:   PaymentMethods[i%len(PaymentMethods)],
			ReferenceNumber: fmt.Sprintf("UNKNOWN-%d", seq),
			BankReference:   PadID("BR-PAY", payIdx),
			Notes:           fmt.Sprintf("Orphan payment %d", seq),
		})
		payIdx++
	}

	return payments
}
