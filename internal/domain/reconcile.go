package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookEntry is one independently sourced bookkeeping record, matched against
// extracted wallet transactions during reconciliation.
type BookEntry struct {
	EntryID     string          `json:"entry_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}

// Validate performs basic validation on the BookEntry.
func (e *BookEntry) Validate() error {
	if strings.TrimSpace(e.EntryID) == "" {
		return fmt.Errorf("book entry ID cannot be empty")
	}
	if e.Amount.IsZero() {
		return fmt.Errorf("book entry amount cannot be zero")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("book entry date cannot be zero")
	}
	return nil
}

// MatchKey is the lookup key reconciliation matches on.
func (e *BookEntry) MatchKey() string {
	return e.Amount.Abs().StringFixed(2) + "|" + e.Date.Format("2006-01-02")
}

// MatchedPair records one wallet transaction consumed against one book entry.
type MatchedPair struct {
	TransactionID string          `json:"transaction_id"`
	EntryID       string          `json:"entry_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
}

// ReconciliationResult is the full outcome of one reconciliation run.
//
// ReconciliationRate divides matched pairs by source_count + book_count, so a
// matched pair is counted once per side and the rate tops out at 0.5 for a
// perfect match. Kept as-is for continuity with existing reports.
type ReconciliationResult struct {
	MatchedCount         int           `json:"matched_count"`
	UnmatchedSourceCount int           `json:"unmatched_source_count"`
	UnmatchedTargetCount int           `json:"unmatched_target_count"`
	ReconciliationRate   float64       `json:"reconciliation_rate"`
	MatchedPairs         []MatchedPair `json:"matched_pairs"`
	UnmatchedSource      []Transaction `json:"unmatched_source"`
	UnmatchedTarget      []BookEntry   `json:"unmatched_target"`
}
