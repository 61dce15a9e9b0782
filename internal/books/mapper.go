package books

import (
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/jumahq/pesaflow/internal/domain"
)

// Expected property names in the bookkeeping database.
const (
	propDescription = "Description"
	propAmount      = "Amount"
	propDate        = "Date"
)

// entryFromPage maps one Notion page onto a BookEntry. The page ID doubles
// as the entry ID so unmatched entries can be traced back to the database.
func entryFromPage(page notionapi.Page) (domain.BookEntry, error) {
	entry := domain.BookEntry{EntryID: string(page.ID)}

	amount, ok := numberProperty(page.Properties[propAmount])
	if !ok {
		return domain.BookEntry{}, fmt.Errorf("entryFromPage %s: missing %q number property", page.ID, propAmount)
	}
	entry.Amount = decimal.NewFromFloat(amount)

	date, ok := dateProperty(page.Properties[propDate])
	if !ok {
		return domain.BookEntry{}, fmt.Errorf("entryFromPage %s: missing %q date property", page.ID, propDate)
	}
	entry.Date = date

	entry.Description = titleProperty(page.Properties[propDescription])

	if err := entry.Validate(); err != nil {
		return domain.BookEntry{}, fmt.Errorf("entryFromPage %s: %w", page.ID, err)
	}
	return entry, nil
}

func numberProperty(prop notionapi.Property) (float64, bool) {
	switch p := prop.(type) {
	case *notionapi.NumberProperty:
		return p.Number, true
	case notionapi.NumberProperty:
		return p.Number, true
	}
	return 0, false
}

func dateProperty(prop notionapi.Property) (time.Time, bool) {
	var obj *notionapi.DateObject
	switch p := prop.(type) {
	case *notionapi.DateProperty:
		obj = p.Date
	case notionapi.DateProperty:
		obj = p.Date
	}
	if obj == nil || obj.Start == nil {
		return time.Time{}, false
	}
	ts := time.Time(*obj.Start)
	// Keys match on calendar day only.
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
}

func titleProperty(prop notionapi.Property) string {
	var parts []notionapi.RichText
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		parts = p.Title
	case notionapi.TitleProperty:
		parts = p.Title
	}
	out := ""
	for _, rt := range parts {
		if rt.PlainText != "" {
			out += rt.PlainText
			continue
		}
		if rt.Text != nil {
			out += rt.Text.Content
		}
	}
	return out
}
