package pipeline

import (
	"context"

	"github.com/jumahq/pesaflow/internal/domain"
)

// OCRClient converts an image payload into plain statement text. The
// pipeline never parses images directly.
type OCRClient interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// TransactionSink receives the final validated, categorized batch.
// Persistence and its consistency guarantees live behind this interface;
// the pipeline issues no storage writes itself.
type TransactionSink interface {
	Store(ctx context.Context, txs []domain.Transaction) error
}
