// Package pipeline chains statement processing into ordered steps:
// OCR (optional) → extraction → validation → categorization →
// anomaly scoring → persistence handoff.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jumahq/pesaflow/internal/anomaly"
	"github.com/jumahq/pesaflow/internal/categorize"
	"github.com/jumahq/pesaflow/internal/extract"
	"github.com/jumahq/pesaflow/internal/validate"
)

// Pipeline executes its steps in order against a shared state. The first
// failing step aborts the run.
type Pipeline struct {
	steps []PipelineStep
	log   zerolog.Logger
}

// New assembles a pipeline from explicit steps.
func New(log zerolog.Logger, steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// Options carries the collaborators for the standard statement pipeline.
// OCR and Sink are optional; their steps are skipped when nil.
type Options struct {
	Extractor   extract.Extractor
	Categorizer *categorize.Categorizer
	Detector    *anomaly.Detector
	OCR         OCRClient
	Sink        TransactionSink
}

// NewStatementPipeline wires the standard step order for processing one
// statement end to end.
func NewStatementPipeline(log zerolog.Logger, opts Options) *Pipeline {
	var steps []PipelineStep
	if opts.OCR != nil {
		steps = append(steps, &OCRStep{Client: opts.OCR})
	}
	steps = append(steps,
		&ExtractStep{Extractor: opts.Extractor},
		&ValidateStep{Validator: validate.New(log)},
		&CategorizeStep{Categorizer: opts.Categorizer},
		&DetectStep{Detector: opts.Detector},
	)
	if opts.Sink != nil {
		steps = append(steps, &SinkStep{Sink: opts.Sink})
	}
	return New(log, steps...)
}

// Run executes the pipeline over the given state.
func (p *Pipeline) Run(ctx context.Context, state *PipelineState) error {
	for _, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline.Run: %w", err)
		}
	}
	evt := p.log.Info().
		Str("business_id", state.BusinessID).
		Int("transactions", len(state.Transactions))
	if len(state.Transactions) > 0 {
		var confidenceSum float64
		uncategorized := 0
		for i := range state.Transactions {
			confidenceSum += state.Transactions[i].ConfidenceScore
			if state.Transactions[i].Category == categorize.Uncategorized {
				uncategorized++
			}
		}
		evt = evt.
			Float64("avg_confidence", confidenceSum/float64(len(state.Transactions))).
			Int("uncategorized", uncategorized)
	}
	evt.Msg("statement processed")
	return nil
}
