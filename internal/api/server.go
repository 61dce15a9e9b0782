// Package api exposes statement processing, anomaly scanning, and
// reconciliation over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jumahq/pesaflow/internal/anomaly"
	"github.com/jumahq/pesaflow/internal/books"
	"github.com/jumahq/pesaflow/internal/jobs"
	"github.com/jumahq/pesaflow/internal/pipeline"
	"github.com/jumahq/pesaflow/internal/reconcile"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	pipe        *pipeline.Pipeline
	detector    *anomaly.Detector
	engine      *reconcile.Engine
	books       books.Source
	publisher   jobs.Publisher
	jobStore    jobs.JobStore
	sensitivity anomaly.Sensitivity
	log         zerolog.Logger
}

// Deps are the collaborators the server needs. Books, Publisher, and
// JobStore are optional; their endpoints answer 503 when absent.
type Deps struct {
	Pipeline    *pipeline.Pipeline
	Detector    *anomaly.Detector
	Engine      *reconcile.Engine
	Books       books.Source
	Publisher   jobs.Publisher
	JobStore    jobs.JobStore
	Sensitivity anomaly.Sensitivity
}

// NewServer builds the server.
func NewServer(log zerolog.Logger, deps Deps) *Server {
	return &Server{
		pipe:        deps.Pipeline,
		detector:    deps.Detector,
		engine:      deps.Engine,
		books:       deps.Books,
		publisher:   deps.Publisher,
		jobStore:    deps.JobStore,
		sensitivity: deps.Sensitivity,
		log:         log,
	}
}

// Router assembles the route table with standard middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(corsMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/statements", s.handleProcessStatement)
		r.Post("/statements/jobs", s.handleEnqueueStatement)
		r.Get("/jobs/{jobID}", s.handleGetJob)
		r.Get("/jobs", s.handleListJobs)
		r.Post("/anomalies/scan", s.handleScanAnomalies)
		r.Post("/reconcile", s.handleReconcile)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
