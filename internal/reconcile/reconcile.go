// Package reconcile matches extracted wallet transactions against
// independently sourced bookkeeping records on (amount, date).
package reconcile

import (
	"github.com/rs/zerolog"

	"github.com/jumahq/pesaflow/internal/domain"
)

// Engine reconciles one batch at a time. It is stateless; every run is a
// pure function of its two inputs.
type Engine struct {
	log zerolog.Logger
}

// New returns an Engine.
func New(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// Reconcile matches each source transaction against the book entries. A book
// entry is consumed by at most one transaction; entries sharing a key are
// consumed in their original order.
func (e *Engine) Reconcile(txs []domain.Transaction, entries []domain.BookEntry) domain.ReconciliationResult {
	lookup := make(map[string][]int, len(entries))
	for i := range entries {
		key := entries[i].MatchKey()
		lookup[key] = append(lookup[key], i)
	}

	result := domain.ReconciliationResult{
		MatchedPairs:    []domain.MatchedPair{},
		UnmatchedSource: []domain.Transaction{},
		UnmatchedTarget: []domain.BookEntry{},
	}
	consumed := make([]bool, len(entries))

	for i := range txs {
		key := txs[i].Amount.Abs().StringFixed(2) + "|" + txs[i].Date.Format("2006-01-02")
		idxs := lookup[key]
		if len(idxs) == 0 {
			result.UnmatchedSource = append(result.UnmatchedSource, txs[i])
			continue
		}
		entry := entries[idxs[0]]
		consumed[idxs[0]] = true
		lookup[key] = idxs[1:]

		result.MatchedPairs = append(result.MatchedPairs, domain.MatchedPair{
			TransactionID: txs[i].TransactionID,
			EntryID:       entry.EntryID,
			Amount:        entry.Amount,
			Date:          entry.Date,
		})
	}

	for i := range entries {
		if !consumed[i] {
			result.UnmatchedTarget = append(result.UnmatchedTarget, entries[i])
		}
	}

	result.MatchedCount = len(result.MatchedPairs)
	result.UnmatchedSourceCount = len(result.UnmatchedSource)
	result.UnmatchedTargetCount = len(result.UnmatchedTarget)
	if denom := len(txs) + len(entries); denom > 0 {
		result.ReconciliationRate = float64(result.MatchedCount) / float64(denom)
	}

	e.log.Debug().
		Int("source", len(txs)).
		Int("book", len(entries)).
		Int("matched", result.MatchedCount).
		Msg("reconciliation complete")

	return result
}
