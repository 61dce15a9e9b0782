// Package validate rejects malformed extraction candidates, re-applies the
// shared normalizers, and removes syntactic duplicates within a batch.
package validate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/logger"
	"github.com/jumahq/pesaflow/internal/normalize"
	"github.com/rs/zerolog"
)

const (
	// DefaultConfidence is assumed when a source omitted the score.
	DefaultConfidence = 0.8
)

// Validator holds no state between batches; it exists so callers can inject
// a logger and a clock for synthetic IDs.
type Validator struct {
	log zerolog.Logger
	now func() time.Time
}

// New returns a Validator writing drop decisions to the given logger.
func New(log zerolog.Logger) *Validator {
	return &Validator{log: log, now: time.Now}
}

// Default is a validator with the package logger, for callers that do not
// need injection.
func Default() *Validator {
	return New(logger.New())
}

// ValidateAndNormalize filters and enriches a candidate batch. Candidates
// missing an ID get a synthetic one; candidates with a non-positive amount,
// a missing date, or a type outside the enumeration are dropped, one record
// at a time, never the batch. Normalization here is idempotent over the
// extractor's own output. Within the batch, the first transaction per dedup
// key survives and the rest are discarded.
func (v *Validator) ValidateAndNormalize(candidates []domain.Transaction) []domain.Transaction {
	seen := make(map[string]bool, len(candidates))
	result := make([]domain.Transaction, 0, len(candidates))

	for i := range candidates {
		tx := candidates[i]

		if tx.TransactionID == "" {
			tx.TransactionID = v.syntheticID()
		}

		tx.Counterparty = normalize.Name(tx.Counterparty)
		tx.CounterpartyPhone = normalize.Phone(tx.CounterpartyPhone)
		tx.Time = normalize.Clock(tx.Time)
		tx.ConfidenceScore = clampConfidence(tx.ConfidenceScore)

		if err := tx.Validate(); err != nil {
			v.log.Debug().Err(err).Str("transaction_id", tx.TransactionID).Msg("dropping invalid candidate")
			continue
		}

		key := tx.DedupKey()
		if seen[key] {
			v.log.Debug().Str("transaction_id", tx.TransactionID).Str("key", key).Msg("dropping duplicate candidate")
			continue
		}
		seen[key] = true

		result = append(result, tx)
	}

	return result
}

// syntheticID builds a timestamp-plus-random identifier for candidates whose
// source carried none. These are not guaranteed globally unique; callers that
// need hard uniqueness must key on their own identifiers.
func (v *Validator) syntheticID() string {
	return fmt.Sprintf("SYN-%d-%s", v.now().UnixMilli(), uuid.NewString()[:6])
}

// clampConfidence forces the score into [0,1], substituting the default for
// an absent (zero) score.
func clampConfidence(score float64) float64 {
	switch {
	case score == 0:
		return DefaultConfidence
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}
