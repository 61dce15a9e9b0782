// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jumahq/pesaflow/internal/anomaly"
)

// Extractor selection values for EXTRACTOR.
const (
	ExtractorPattern = "pattern"
	ExtractorAI      = "ai"
)

// Config is the full runtime configuration for the server and CLI.
type Config struct {
	Port string

	// Extraction.
	Extractor    string // "ai" or "pattern"
	GeminiAPIKey string
	GeminiModel  string

	// Learned categorization.
	LearningMode bool
	BadgerPath   string

	// Reconciliation book source.
	NotionToken      string
	NotionDatabaseID string

	// Statement media.
	GCSBucket string

	// Anomaly scanning.
	Sensitivity anomaly.Sensitivity
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		Extractor:        getenv("EXTRACTOR", ExtractorPattern),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		LearningMode:     os.Getenv("LEARNING_MODE") == "true",
		BadgerPath:       getenv("BADGER_PATH", "./data/learned"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_BOOKS_DATABASE_ID"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		Sensitivity:      anomaly.Sensitivity(getenv("ANOMALY_SENSITIVITY", string(anomaly.SensitivityMedium))),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Extractor != ExtractorPattern && c.Extractor != ExtractorAI {
		return fmt.Errorf("config: EXTRACTOR must be %q or %q, got %q", ExtractorPattern, ExtractorAI, c.Extractor)
	}
	if c.Extractor == ExtractorAI && c.GeminiAPIKey == "" {
		return fmt.Errorf("config: EXTRACTOR=ai requires GEMINI_API_KEY")
	}
	switch c.Sensitivity {
	case anomaly.SensitivityHigh, anomaly.SensitivityMedium, anomaly.SensitivityLow:
	default:
		return fmt.Errorf("config: ANOMALY_SENSITIVITY must be high, medium, or low, got %q", c.Sensitivity)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
