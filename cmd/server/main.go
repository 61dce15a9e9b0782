package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumahq/pesaflow/internal/anomaly"
	"github.com/jumahq/pesaflow/internal/api"
	"github.com/jumahq/pesaflow/internal/books"
	"github.com/jumahq/pesaflow/internal/categorize"
	"github.com/jumahq/pesaflow/internal/config"
	"github.com/jumahq/pesaflow/internal/extract"
	"github.com/jumahq/pesaflow/internal/fetch"
	"github.com/jumahq/pesaflow/internal/jobs"
	"github.com/jumahq/pesaflow/internal/jobs/inmemory"
	"github.com/jumahq/pesaflow/internal/learned"
	"github.com/jumahq/pesaflow/internal/logger"
	"github.com/jumahq/pesaflow/internal/pipeline"
	"github.com/jumahq/pesaflow/internal/reconcile"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	extractor, err := buildExtractor(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build extractor")
	}

	categorizer, cleanup, err := buildCategorizer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build categorizer")
	}
	defer cleanup()

	detector := anomaly.New(log)
	engine := reconcile.New(log)

	var bookSource books.Source
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		bookSource = books.NewNotionSource(cfg.NotionToken, cfg.NotionDatabaseID, log)
	} else {
		log.Warn().Msg("No Notion book source configured - reconciliation requires inline book entries")
	}

	pipe := pipeline.NewStatementPipeline(log, pipeline.Options{
		Extractor:   extractor,
		Categorizer: categorizer,
		Detector:    detector,
	})

	// Job infrastructure for asynchronous statement processing.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := newJobHandler(pipe, cfg, log)
	go func() {
		log.Info().Msg("Starting statement job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	srv := api.NewServer(log, api.Deps{
		Pipeline:    pipe,
		Detector:    detector,
		Engine:      engine,
		Books:       bookSource,
		Publisher:   jobQueue,
		JobStore:    jobStore,
		Sensitivity: cfg.Sensitivity,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("extractor", cfg.Extractor).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func buildExtractor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (extract.Extractor, error) {
	if cfg.Extractor == config.ExtractorAI {
		return extract.NewAIExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	}
	return extract.NewPatternExtractor(), nil
}

func buildCategorizer(cfg *config.Config, log zerolog.Logger) (*categorize.Categorizer, func(), error) {
	if !cfg.LearningMode {
		return categorize.New(log), func() {}, nil
	}

	store, err := learned.Open(cfg.BadgerPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close learned store")
		}
	}
	return categorize.NewWithLearning(store, log), cleanup, nil
}

// newJobHandler runs queued statements through the pipeline, fetching GCS
// media first when the job references it.
func newJobHandler(pipe *pipeline.Pipeline, cfg *config.Config, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.ProcessStatementJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Str("business_id", job.BusinessID).
			Msg("Processing statement job")

		rawText := job.RawText
		if job.GCSURI != "" {
			_, object, err := fetch.SplitGCSURI(job.GCSURI)
			if err != nil {
				return err
			}
			if fetch.IsImageObject(object) {
				return fmt.Errorf("statement images require an OCR collaborator, got %s", job.GCSURI)
			}
			data, err := fetch.FetchStatement(ctx, job.GCSURI)
			if err != nil {
				return err
			}
			rawText = string(data)
		}

		state := &pipeline.PipelineState{
			RawText:     rawText,
			BusinessID:  job.BusinessID,
			Sensitivity: cfg.Sensitivity,
		}
		if err := pipe.Run(ctx, state); err != nil {
			return err
		}

		job.TransactionCount = len(state.Transactions)
		if state.Report != nil {
			job.RiskLevel = state.Report.RiskLevel
		}
		return nil
	}
}
