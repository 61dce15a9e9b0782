// Package categorize assigns business categories, VAT applicability, and a
// category confidence to validated transactions, using the keyword taxonomy
// plus an optional learned counterparty lookup.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// KeywordConfidence is assigned on a taxonomy keyword hit.
	KeywordConfidence = 0.85

	// UncategorizedConfidence is assigned when nothing matched.
	UncategorizedConfidence = 0.3

	// LearnedThreshold is the minimum stored confidence for a learned
	// association to take precedence over keyword matching.
	LearnedThreshold = 0.8
)

// Categorizer classifies transactions. With learning mode off (or no store
// wired) it is a pure function of the taxonomy.
type Categorizer struct {
	store        LearnedStore
	learningMode bool
	log          zerolog.Logger
}

// New returns a keyword-only categorizer.
func New(log zerolog.Logger) *Categorizer {
	return &Categorizer{log: log}
}

// NewWithLearning returns a categorizer that consults the learned store
// before the taxonomy and writes classifications back after each run.
func NewWithLearning(store LearnedStore, log zerolog.Logger) *Categorizer {
	return &Categorizer{store: store, learningMode: true, log: log}
}

// Categorize enriches every transaction in place with category,
// vat_applicable, and category_confidence, and returns the same slice.
// Learned-store I/O failures abort the run with an error; they are
// data-integrity concerns, not best-effort parsing noise.
func (c *Categorizer) Categorize(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	for i := range txs {
		if err := c.categorizeOne(ctx, &txs[i]); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

func (c *Categorizer) categorizeOne(ctx context.Context, tx *domain.Transaction) error {
	// Learned association takes precedence; the taxonomy is the fallback.
	if c.learningMode && c.store != nil && tx.Counterparty != "" {
		assoc, err := c.store.Get(ctx, Signature(tx.Counterparty))
		switch {
		case err == nil && assoc.Confidence >= LearnedThreshold:
			tx.Category = assoc.Category
			tx.CategoryConfidence = assoc.Confidence
			tx.VATApplicable = vatFor(assoc.Category)
			return nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return fmt.Errorf("categorize: learned store get %q: %w", tx.Counterparty, err)
		}
	}

	c.matchKeywords(tx)

	if c.learningMode && c.store != nil && tx.Counterparty != "" && tx.Category != Uncategorized {
		assoc := Association{Category: tx.Category, Confidence: tx.CategoryConfidence}
		if err := c.store.Put(ctx, Signature(tx.Counterparty), assoc); err != nil {
			return fmt.Errorf("categorize: learned store put %q: %w", tx.Counterparty, err)
		}
	}

	return nil
}

// matchKeywords walks the taxonomy in declaration order and stops at the
// first sub-category, in the transaction's domain, whose keyword appears in
// the counterparty or reference text.
func (c *Categorizer) matchKeywords(tx *domain.Transaction) {
	text := strings.ToLower(tx.Counterparty + " " + tx.Reference)
	dom := domainFor(tx.Type)

	for _, sc := range Taxonomy {
		if sc.Domain != dom {
			continue
		}
		for _, kw := range sc.Keywords {
			if strings.Contains(text, kw) {
				tx.Category = sc.Name
				tx.VATApplicable = sc.VATApplicable
				tx.CategoryConfidence = KeywordConfidence
				return
			}
		}
	}

	tx.Category = Uncategorized
	tx.VATApplicable = false
	tx.CategoryConfidence = UncategorizedConfidence
}

func domainFor(t domain.TransactionType) CategoryDomain {
	if t.IsIncome() {
		return DomainIncome
	}
	return DomainExpense
}

// Signature normalizes a counterparty into the learned-store key.
func Signature(counterparty string) string {
	return strings.ToLower(strings.TrimSpace(counterparty))
}
