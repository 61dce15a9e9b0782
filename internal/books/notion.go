// Package books pulls bookkeeping records out of a Notion database so they
// can be reconciled against extracted wallet transactions.
package books

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/jumahq/pesaflow/internal/domain"
)

const queryPageSize = 100

// notionClient adapts the Notion SDK to the databaseQuerier seam.
type notionClient struct {
	client *notionapi.Client
}

func (n *notionClient) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: %w", err)
	}
	return resp, nil
}

// NotionSource reads book entries from one Notion database.
type NotionSource struct {
	querier    databaseQuerier
	databaseID string
	log        zerolog.Logger
}

// NewNotionSource creates a source backed by the Notion API.
func NewNotionSource(token, databaseID string, log zerolog.Logger) *NotionSource {
	return &NotionSource{
		querier:    &notionClient{client: notionapi.NewClient(notionapi.Token(token))},
		databaseID: databaseID,
		log:        log,
	}
}

// Entries fetches every page of the database and maps each onto a BookEntry.
// Pages that cannot be mapped are skipped with a warning; a half-usable
// ledger still reconciles.
func (s *NotionSource) Entries(ctx context.Context) ([]domain.BookEntry, error) {
	var (
		entries []domain.BookEntry
		cursor  notionapi.Cursor
	)

	for {
		req := &notionapi.DatabaseQueryRequest{PageSize: queryPageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.querier.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("books.Entries: %w", err)
		}

		for _, page := range resp.Results {
			entry, err := entryFromPage(page)
			if err != nil {
				s.log.Warn().Err(err).Msg("skipping unmappable book entry page")
				continue
			}
			entries = append(entries, entry)
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	s.log.Debug().Int("entries", len(entries)).Msg("fetched book entries")
	return entries, nil
}
