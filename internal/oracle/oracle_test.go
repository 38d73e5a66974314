package oracle

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestMemory_SplitCountsCanonicalDataset(t *testing.T) {
	// Arrange: 1000 invoices at the canonical rate produce 600 exact and
	// 150 tolerance payments whose references equal an invoice_id, 100
	// duplicate halves with -PART suffixes, 100 UNKNOWN orphans, and 250
	// invoices with no referencing payment.
	gen := record.NewGenerator(testRand(42))
	invoices := gen.Invoices(1000, 0)
	payments := gen.Payments(invoices, record.DefaultDistribution())
	m := NewMemory(invoices, payments)
	split, err := pattern.Lookup(pattern.Split)
	require.NoError(t, err)

	// Act
	res, evalErr := m.Evaluate(context.Background(), split)

	// Assert
	require.NoError(t, evalErr)
	assert.Equal(t, 1000, res.TotalLeft)
	assert.Equal(t, 950, res.TotalRight)
	assert.Equal(t, 750, res.Matched)
	assert.Equal(t, 250, res.UnmatchedLeft)
	assert.Equal(t, 200, res.UnmatchedRight)
}

func TestMemory_UnmatchedLeftComplementsMatchedForOneToOneReferences(t *testing.T) {
	gen := record.NewGenerator(testRand(7))
	invoices := gen.Invoices(400, 0)
	payments := gen.Payments(invoices, record.DefaultDistribution())
	m := NewMemory(invoices, payments)
	split, err := pattern.Lookup(pattern.Split)
	require.NoError(t, err)

	res, evalErr := m.Evaluate(context.Background(), split)

	require.NoError(t, evalErr)
	// Split references are unique per invoice, so matched pairs plus
	// unmatched invoices cover the left side exactly.
	assert.Equal(t, res.TotalLeft, res.Matched+res.UnmatchedLeft)
}

func TestMemory_BatchManyToOne(t *testing.T) {
	gen := record.NewGenerator(testRand(42))
	invoices, batches, err := gen.BatchInvoices(200, 0, record.DefaultBatchConfig())
	require.NoError(t, err)
	payments := gen.BatchPayments(invoices, 0)
	m := NewMemory(invoices, payments)
	batch, err := pattern.Lookup(pattern.Batch)
	require.NoError(t, err)

	res, evalErr := m.Evaluate(context.Background(), batch)

	require.NoError(t, evalErr)
	// Every invoice joins its one aggregate payment.
	assert.Equal(t, 200, res.Matched)
	assert.Equal(t, 0, res.UnmatchedLeft)
	// Only the deliberately unmatched orphan payments remain.
	assert.Equal(t, len(payments)-batches, res.UnmatchedRight)
}

func TestMemory_FullMatchLeavesNoOrphans(t *testing.T) {
	gen := record.NewGenerator(testRand(42))
	invoices := gen.Invoices(100, 0)
	payments := gen.Payments(invoices, record.DistributionConfig{MatchRate: 1.0})
	m := NewMemory(invoices, payments)
	split, err := pattern.Lookup(pattern.Split)
	require.NoError(t, err)

	res, evalErr := m.Evaluate(context.Background(), split)

	require.NoError(t, evalErr)
	assert.Equal(t, 100, res.Matched)
	assert.Zero(t, res.UnmatchedLeft)
	assert.Zero(t, res.UnmatchedRight)
}

func TestMemory_EvaluateIsIdempotent(t *testing.T) {
	gen := record.NewGenerator(testRand(42))
	invoices := gen.Invoices(300, 0)
	payments := gen.Payments(invoices, record.DefaultDistribution())
	m := NewMemory(invoices, payments)
	oneToOne, err := pattern.Lookup(pattern.OneToOne)
	require.NoError(t, err)

	first, err1 := m.Evaluate(context.Background(), oneToOne)
	second, err2 := m.Evaluate(context.Background(), oneToOne)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestMemory_EmptyDataset(t *testing.T) {
	m := NewMemory(nil, nil)
	split, err := pattern.Lookup(pattern.Split)
	require.NoError(t, err)

	res, evalErr := m.Evaluate(context.Background(), split)

	require.NoError(t, evalErr)
	assert.Zero(t, res.Matched)
	assert.Zero(t, res.TotalLeft)
	assert.Zero(t, res.TotalRight)
}
