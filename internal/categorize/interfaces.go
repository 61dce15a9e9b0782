package categorize

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a LearnedStore when no association exists for
// a counterparty signature.
var ErrNotFound = errors.New("association not found")

// Association is a learned counterparty-to-category mapping. This is a
// lookup-table refinement, not model training.
type Association struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// LearnedStore is the external read/write collaborator behind learning mode.
// It is consulted before keyword matching and written back to after a
// learning-mode run. The categorizer holds no in-process cache around it.
// Store failures are data-integrity concerns and surface to the caller.
type LearnedStore interface {
	Get(ctx context.Context, signature string) (Association, error)
	Put(ctx context.Context, signature string, assoc Association) error
}
