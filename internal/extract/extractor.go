package extract

import (
	"context"
	"sort"

	"github.com/jumahq/pesaflow/internal/domain"
)

// PatternExtractor is the deterministic extraction path and the fallback for
// the AI adapter. It is a pure function of its input: identical text always
// yields the identical candidate set.
type PatternExtractor struct {
	recognizers []Recognizer
}

// NewPatternExtractor returns an extractor with the fixed recognizer set.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{recognizers: defaultRecognizers()}
}

// Extract runs every recognizer over the raw text and returns candidates in
// text order. When two recognizers claim overlapping spans, the
// first-registered recognizer keeps the span. Unmatched fragments are
// omitted; extraction never fails.
func (e *PatternExtractor) Extract(_ context.Context, rawText string) []domain.Transaction {
	var (
		claimed []span
		matches []Match
	)

	for _, rec := range e.recognizers {
		for _, m := range rec.Recognize(rawText) {
			if overlapsAny(claimed, m.Start, m.End) {
				continue
			}
			claimed = append(claimed, span{m.Start, m.End})
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })

	candidates := make([]domain.Transaction, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, m.Candidate)
	}
	return candidates
}

type span struct{ start, end int }

func overlapsAny(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}
