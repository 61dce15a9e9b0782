package books

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/jumahq/pesaflow/internal/domain"
)

// Source supplies independently kept bookkeeping records for reconciliation.
type Source interface {
	Entries(ctx context.Context) ([]domain.BookEntry, error)
}

// databaseQuerier is the slice of the Notion SDK the source needs; the tests
// substitute it with a scripted fake.
type databaseQuerier interface {
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}
