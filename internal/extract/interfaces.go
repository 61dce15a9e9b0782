package extract

import (
	"context"

	"github.com/jumahq/pesaflow/internal/domain"
)

// Extractor turns raw statement text into transaction candidates. It never
// fails: unmatched fragments yield no candidates, and implementations that
// call out (the AI adapter) degrade to the pattern extractor internally.
// The strategy is chosen by configuration, not inheritance.
type Extractor interface {
	Extract(ctx context.Context, rawText string) []domain.Transaction
}
