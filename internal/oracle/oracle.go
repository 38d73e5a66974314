// Package oracle computes ground-truth match counts for a pattern.
//
// The verifier treats these counts as truth, so every implementation
// must evaluate the full dataset, never a sample. The SQL-backed
// implementation lives in the store package; Memory evaluates row
// slices directly and backs tests and small runs.
package oracle

import (
	"context"

	"github.com/barockok/kalla-bench/internal/domain/pattern"
	"github.com/barockok/kalla-bench/internal/domain/record"
)

// GroundTruthResult holds the independent count set for one pattern.
// Matched counts join pairs, so with many-to-many predicates it can
// exceed TotalLeft; the unmatched counts always stay within their
// totals.
type GroundTruthResult struct {
	Matched        int `json:"matched"`
	UnmatchedLeft  int `json:"unmatched_left"`
	UnmatchedRight int `json:"unmatched_right"`
	TotalLeft      int `json:"total_left"`
	TotalRight     int `json:"total_right"`
}

// Oracle evaluates the ground truth for a pattern against a persisted
// dataset.
type Oracle interface {
	Evaluate(ctx context.Context, p pattern.Pattern) (GroundTruthResult, error)
}

// Memory is an in-memory Oracle over row slices.
type Memory struct {
	Invoices []record.Invoice
	Payments []record.Payment
}

// NewMemory creates a memory oracle over the given rows.
func NewMemory(invoices []record.Invoice, payments []record.Payment) *Memory {
	return &Memory{Invoices: invoices, Payments: payments}
}

var _ Oracle = (*Memory)(nil)

// Evaluate counts matched pairs and unmatched rows by direct evaluation
// of the pattern predicate over every left/right combination. The five
// counts are computed independently, mirroring the five standalone SQL
// queries of the SQL oracle.
func (m *Memory) Evaluate(_ context.Context, p pattern.Pattern) (GroundTruthResult, error) {
	res := GroundTruthResult{
		TotalLeft:  len(m.Invoices),
		TotalRight: len(m.Payments),
	}

	rightHit := make([]bool, len(m.Payments))
	for i := range m.Invoices {
		inv := &m.Invoices[i]
		hit := false
		for j := range m.Payments {
			if p.Matches(inv, &m.Payments[j]) {
				res.Matched++
				hit = true
				rightHit[j] = true
			}
		}
		if !hit {
			res.UnmatchedLeft++
		}
	}
	for _, hit := range rightHit {
		if !hit {
			res.UnmatchedRight++
		}
	}

	return res, nil
}
