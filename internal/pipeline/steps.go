package pipeline

import (
	"context"
	"fmt"

	"github.com/jumahq/pesaflow/internal/anomaly"
	"github.com/jumahq/pesaflow/internal/categorize"
	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/extract"
	"github.com/jumahq/pesaflow/internal/validate"
)

// PipelineStep is a single stage of statement processing.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	// Inputs.
	RawText      string
	ImagePayload []byte
	BusinessID   string
	Profile      *domain.BusinessProfile
	Sensitivity  anomaly.Sensitivity

	// Populated as steps run.
	Transactions []domain.Transaction
	Report       *domain.BatchRiskReport
}

// OCRStep converts an image payload into raw text. It is a no-op when the
// statement already arrived as text.
type OCRStep struct {
	Client OCRClient
}

func (s *OCRStep) Execute(ctx context.Context, state *PipelineState) error {
	if len(state.ImagePayload) == 0 || state.RawText != "" {
		return nil
	}
	text, err := s.Client.ExtractText(ctx, state.ImagePayload)
	if err != nil {
		return fmt.Errorf("OCRStep: %w", err)
	}
	state.RawText = text
	return nil
}

// ExtractStep turns raw statement text into candidate transactions.
// Extraction never fails; unmatched text simply yields nothing.
type ExtractStep struct {
	Extractor extract.Extractor
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Transactions = s.Extractor.Extract(ctx, state.RawText)
	return nil
}

// ValidateStep normalizes candidates, drops invalid records, and collapses
// duplicates.
type ValidateStep struct {
	Validator *validate.Validator
}

func (s *ValidateStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Transactions = s.Validator.ValidateAndNormalize(state.Transactions)
	for i := range state.Transactions {
		state.Transactions[i].BusinessID = state.BusinessID
	}
	return nil
}

// CategorizeStep assigns business categories to the validated batch.
type CategorizeStep struct {
	Categorizer *categorize.Categorizer
}

func (s *CategorizeStep) Execute(ctx context.Context, state *PipelineState) error {
	txs, err := s.Categorizer.Categorize(ctx, state.Transactions)
	if err != nil {
		return fmt.Errorf("CategorizeStep: %w", err)
	}
	state.Transactions = txs
	return nil
}

// DetectStep scores the batch for anomalies when a business profile is
// available. Without a profile the report is still produced; profile-bound
// checks simply stay quiet.
type DetectStep struct {
	Detector *anomaly.Detector
}

func (s *DetectStep) Execute(ctx context.Context, state *PipelineState) error {
	report := s.Detector.DetectBatch(state.Transactions, state.Profile, state.Sensitivity)
	state.Report = &report
	return nil
}

// SinkStep hands the finished batch to the persistence collaborator.
type SinkStep struct {
	Sink TransactionSink
}

func (s *SinkStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Sink.Store(ctx, state.Transactions); err != nil {
		return fmt.Errorf("SinkStep: %w", err)
	}
	return nil
}
