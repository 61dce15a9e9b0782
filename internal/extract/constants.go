package extract

import "time"

const (
	// PatternConfidence is assigned to candidates produced by the pattern
	// extractor; its rigid templates miss more than the model does.
	PatternConfidence = 0.75

	// AIConfidence is assigned to candidates produced by the AI adapter.
	AIConfidence = 0.95

	// DefaultModelName is the default Gemini model used for extraction.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultMaxAttempts bounds the model calls per extraction. Only
	// rate-limit responses are retried; everything else falls back to the
	// pattern extractor immediately.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the first retry delay; it doubles per attempt.
	DefaultBackoffBase = 500 * time.Millisecond
)
