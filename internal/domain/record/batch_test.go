package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchInvoices_EveryInvoiceAssigned(t *testing.T) {
	// Arrange
	gen := NewGenerator(testRand(42))

	// Act
	invoices, batches, err := gen.BatchInvoices(500, 0, DefaultBatchConfig())
	require.NoError(t, err)

	// Assert
	require.Len(t, invoices, 500)
	assert.Positive(t, batches)
	for _, inv := range invoices {
		require.NotNil(t, inv.BatchRef, "invoice %s has no batch ref", inv.InvoiceID)
		assert.True(t, strings.HasPrefix(*inv.BatchRef, "BATCH-"))
	}
}

func TestBatchInvoices_RunsAreContiguousAndSized(t *testing.T) {
	gen := NewGenerator(testRand(42))
	cfg := DefaultBatchConfig()

	invoices, batches, err := gen.BatchInvoices(1000, 0, cfg)
	require.NoError(t, err)

	sizes := make(map[string]int)
	order := make([]string, 0, batches)
	prev := ""
	for _, inv := range invoices {
		ref := *inv.BatchRef
		if ref != prev {
			// A ref never recurs after its run ends.
			assert.NotContains(t, order, ref)
			order = append(order, ref)
			prev = ref
		}
		sizes[ref]++
	}
	require.Len(t, order, batches)

	for i, ref := range order {
		size := sizes[ref]
		if i < len(order)-1 {
			assert.GreaterOrEqual(t, size, cfg.MinSize, "batch %s", ref)
		}
		assert.LessOrEqual(t, size, cfg.MaxSize, "batch %s", ref)
	}
}

func TestBatchInvoices_OffsetContinuesNumbering(t *testing.T) {
	gen := NewGenerator(testRand(42))
	cfg := DefaultBatchConfig()
	cfg.BatchOffset = 7

	invoices, _, err := gen.BatchInvoices(100, 1000, cfg)
	require.NoError(t, err)

	assert.Equal(t, "INV-001001", invoices[0].InvoiceID)
	assert.Equal(t, "BATCH-000008", *invoices[0].BatchRef)
}

func TestBatchPayments_OnePaymentPerBatchSummingMembers(t *testing.T) {
	gen := NewGenerator(testRand(42))
	invoices, batches, err := gen.BatchInvoices(500, 0, DefaultBatchConfig())
	require.NoError(t, err)

	payments := gen.BatchPayments(invoices, 0)

	wantSums := make(map[string]float64)
	for _, inv := range invoices {
		wantSums[*inv.BatchRef] += inv.Amount
	}

	aggregates := 0
	for _, p := range payments {
		if strings.HasPrefix(p.ReferenceNumber, "ORPHAN-BATCH") {
			continue
		}
		aggregates++
		want, ok := wantSums[p.ReferenceNumber]
		require.True(t, ok, "payment %s references unknown batch", p.PaymentID)
		assert.Equal(t, Round2(want), p.PaidAmount, "batch %s", p.ReferenceNumber)
		assert.Equal(t, "wire_transfer", p.PaymentMethod)
	}
	assert.Equal(t, batches, aggregates)
}

func TestBatchPayments_EmitsOrphans(t *testing.T) {
	gen := NewGenerator(testRand(42))
	invoices, _, err := gen.BatchInvoices(500, 0, DefaultBatchConfig())
	require.NoError(t, err)

	payments := gen.BatchPayments(invoices, 0)

	orphans := 0
	for _, p := range payments {
		if strings.HasPrefix(p.ReferenceNumber, "ORPHAN-BATCH") {
			orphans++
			assert.Equal(t, "USD", p.Currency)
		}
	}
	assert.Equal(t, 50, orphans)
}

func TestBatchPayments_MinimumOneOrphan(t *testing.T) {
	gen := NewGenerator(testRand(42))
	invoices, _, err := gen.BatchInvoices(5, 0, BatchConfig{MinSize: 2, MaxSize: 3})
	require.NoError(t, err)

	payments := gen.BatchPayments(invoices, 0)

	orphans := 0
	for _, p := range payments {
		if strings.HasPrefix(p.ReferenceNumber, "ORPHAN-BATCH") {
			orphans++
		}
	}
	assert.Equal(t, 1, orphans)
}

func TestBatchPayments_StableOrderAcrossRuns(t *testing.T) {
	invA, _, errA := NewGenerator(testRand(11)).BatchInvoices(300, 0, DefaultBatchConfig())
	invB, _, errB := NewGenerator(testRand(11)).BatchInvoices(300, 0, DefaultBatchConfig())
	require.NoError(t, errA)
	require.NoError(t, errB)

	payA := NewGenerator(testRand(12)).BatchPayments(invA, 0)
	payB := NewGenerator(testRand(12)).BatchPayments(invB, 0)

	assert.Equal(t, payA, payB)
}

func TestBatchPayments_NumberingContinuesFromOffset(t *testing.T) {
	gen := NewGenerator(testRand(42))
	invoices, _, err := gen.BatchInvoices(100, 0, DefaultBatchConfig())
	require.NoError(t, err)

	payments := gen.BatchPayments(invoices, 250)

	require.NotEmpty(t, payments)
	assert.Equal(t, "PAY-000251", payments[0].PaymentID)
}

func TestBatchInvoices_RejectsInvalidSizeRange(t *testing.T) {
	gen := NewGenerator(testRand(42))

	_, _, err := gen.BatchInvoices(100, 0, BatchConfig{MinSize: 50, MaxSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch size range [50, 10]")

	_, _, err = gen.BatchInvoices(100, 0, BatchConfig{MinSize: 0, MaxSize: 10})
	assert.Error(t, err, "a zero minimum would produce empty runs")
}
