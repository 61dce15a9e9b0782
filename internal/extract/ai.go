package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// modelCaller is the seam between the adapter and the Gemini SDK, so tests
// can drive the retry and fallback paths without a live model.
type modelCaller interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type genaiCaller struct {
	client *genai.Client
	model  string
}

func (g *genaiCaller) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// AIExtractor wraps the external model call. Every failure mode — network
// error, rate limit, malformed or schema-violating output — degrades to the
// pattern extractor instead of surfacing to the caller; confidence scores,
// not errors, carry extraction uncertainty downstream.
type AIExtractor struct {
	caller      modelCaller
	fallback    *PatternExtractor
	maxAttempts int
	backoffBase time.Duration
	log         zerolog.Logger
}

// NewAIExtractor builds the adapter around a Gemini client. The model name
// defaults to DefaultModelName when empty.
func NewAIExtractor(ctx context.Context, apiKey, model string, log zerolog.Logger) (*AIExtractor, error) {
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewAIExtractor: create genai client: %w", err)
	}

	return &AIExtractor{
		caller:      &genaiCaller{client: client, model: model},
		fallback:    NewPatternExtractor(),
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		log:         log,
	}, nil
}

// Extract asks the model for candidates and falls back to pattern extraction
// on any failure. It never returns an error.
func (e *AIExtractor) Extract(ctx context.Context, rawText string) []domain.Transaction {
	candidates, err := e.extractWithModel(ctx, rawText)
	if err != nil {
		e.log.Warn().Err(err).Msg("model extraction failed, using pattern extractor")
		return e.fallback.Extract(ctx, rawText)
	}
	return candidates
}

func (e *AIExtractor) extractWithModel(ctx context.Context, rawText string) ([]domain.Transaction, error) {
	prompt := buildExtractionPrompt() + rawText

	var raw string
	for attempt := 0; ; attempt++ {
		var err error
		raw, err = e.caller.generate(ctx, prompt)
		if err == nil {
			break
		}
		if !isRateLimited(err) || attempt+1 >= e.maxAttempts {
			return nil, err
		}

		delay := e.backoffBase << attempt
		e.log.Debug().Err(err).Dur("delay", delay).Int("attempt", attempt+1).
			Msg("model rate limited, backing off")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	clean := cleanModelJSON(raw)

	var parsed []interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("extractWithModel: unmarshal model output: %w", err)
	}

	candidates, err := coerceCandidates(parsed)
	if err != nil {
		return nil, fmt.Errorf("extractWithModel: %w", err)
	}
	return candidates, nil
}

// isRateLimited recognizes quota errors worth retrying. Anything else
// short-circuits straight to the fallback.
func isRateLimited(err error) bool {
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "RESOURCEEXHAUSTED") ||
		strings.Contains(msg, "RATE LIMIT")
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost array if there is still junk around it.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
