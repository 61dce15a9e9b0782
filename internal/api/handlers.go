package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jumahq/pesaflow/internal/anomaly"
	"github.com/jumahq/pesaflow/internal/domain"
	"github.com/jumahq/pesaflow/internal/jobs"
	"github.com/jumahq/pesaflow/internal/pipeline"
)

// processStatementRequest accepts inline statement text. Media stored in
// GCS goes through the async job endpoint instead.
type processStatementRequest struct {
	BusinessID  string                  `json:"business_id"`
	RawText     string                  `json:"raw_text"`
	Profile     *domain.BusinessProfile `json:"profile,omitempty"`
	Sensitivity string                  `json:"sensitivity,omitempty"`
}

type processStatementResponse struct {
	Transactions []domain.Transaction    `json:"transactions"`
	Report       *domain.BatchRiskReport `json:"report,omitempty"`
}

func (s *Server) handleProcessStatement(w http.ResponseWriter, r *http.Request) {
	var req processStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.RawText) == "" {
		writeError(w, http.StatusBadRequest, errors.New("raw_text is required"))
		return
	}

	state := &pipeline.PipelineState{
		RawText:     req.RawText,
		BusinessID:  req.BusinessID,
		Profile:     req.Profile,
		Sensitivity: s.resolveSensitivity(req.Sensitivity),
	}
	if err := s.pipe.Run(r.Context(), state); err != nil {
		s.log.Error().Err(err).Msg("statement processing failed")
		writeError(w, http.StatusInternalServerError, errors.New("statement processing failed"))
		return
	}

	if state.Transactions == nil {
		state.Transactions = []domain.Transaction{}
	}
	writeSuccess(w, http.StatusOK, processStatementResponse{
		Transactions: state.Transactions,
		Report:       state.Report,
	})
}

type enqueueStatementRequest struct {
	BusinessID string `json:"business_id"`
	RawText    string `json:"raw_text,omitempty"`
	GCSURI     string `json:"gcs_uri,omitempty"`
}

func (s *Server) handleEnqueueStatement(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("async processing is not configured"))
		return
	}

	var req enqueueStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if (req.RawText == "") == (req.GCSURI == "") {
		writeError(w, http.StatusBadRequest, errors.New("exactly one of raw_text or gcs_uri is required"))
		return
	}

	job := &jobs.ProcessStatementJob{
		BusinessID: req.BusinessID,
		RawText:    req.RawText,
		GCSURI:     req.GCSURI,
	}
	if err := s.publisher.PublishProcessStatement(r.Context(), job); err != nil {
		s.log.Error().Err(err).Msg("enqueue statement job failed")
		writeError(w, http.StatusInternalServerError, errors.New("could not enqueue job"))
		return
	}

	writeSuccess(w, http.StatusAccepted, map[string]string{"job_id": job.JobID})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.jobStore == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("job tracking is not configured"))
		return
	}

	job, err := s.jobStore.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, errors.New("job not found"))
		return
	}
	writeSuccess(w, http.StatusOK, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobStore == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("job tracking is not configured"))
		return
	}

	filter := jobs.JobFilter{
		BusinessID: r.URL.Query().Get("business_id"),
		Status:     jobs.JobStatus(r.URL.Query().Get("status")),
	}
	list, err := s.jobStore.ListJobs(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("could not list jobs"))
		return
	}
	if list == nil {
		list = []*jobs.ProcessStatementJob{}
	}
	writeSuccess(w, http.StatusOK, list)
}

type scanRequest struct {
	Transactions []domain.Transaction    `json:"transactions"`
	Profile      *domain.BusinessProfile `json:"profile,omitempty"`
	Sensitivity  string                  `json:"sensitivity,omitempty"`
}

func (s *Server) handleScanAnomalies(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	report := s.detector.DetectBatch(req.Transactions, req.Profile, s.resolveSensitivity(req.Sensitivity))
	if report.Findings == nil {
		report.Findings = []domain.AnomalyFinding{}
	}
	writeSuccess(w, http.StatusOK, report)
}

type reconcileRequest struct {
	Transactions []domain.Transaction `json:"transactions"`
	BookEntries  []domain.BookEntry   `json:"book_entries,omitempty"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	entries := req.BookEntries
	if entries == nil {
		if s.books == nil {
			writeError(w, http.StatusBadRequest, errors.New("book_entries is required when no book source is configured"))
			return
		}
		var err error
		entries, err = s.books.Entries(r.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("fetching book entries failed")
			writeError(w, http.StatusBadGateway, errors.New("could not fetch book entries"))
			return
		}
	}

	writeSuccess(w, http.StatusOK, s.engine.Reconcile(req.Transactions, entries))
}

func (s *Server) resolveSensitivity(raw string) anomaly.Sensitivity {
	switch anomaly.Sensitivity(raw) {
	case anomaly.SensitivityHigh, anomaly.SensitivityMedium, anomaly.SensitivityLow:
		return anomaly.Sensitivity(raw)
	}
	return s.sensitivity
}
