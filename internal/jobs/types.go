// Package jobs defines the asynchronous statement-processing job model and
// the queue abstractions behind the ingestion API.
package jobs

import (
	"context"
	"time"

	"github.com/jumahq/pesaflow/internal/domain"
)

// JobType identifies what a job does.
type JobType string

const (
	// JobTypeProcessStatement runs one statement through the full pipeline.
	JobTypeProcessStatement JobType = "process_statement"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ProcessStatementJob carries one statement through asynchronous processing.
// Exactly one of RawText or GCSURI is set: inline text is processed as-is,
// a GCS URI is fetched (and OCR'd when it is a photo) first.
type ProcessStatementJob struct {
	JobID      string `json:"job_id"`
	BusinessID string `json:"business_id"`
	RawText    string `json:"raw_text,omitempty"`
	GCSURI     string `json:"gcs_uri,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`

	// Populated when the job completes.
	TransactionCount int              `json:"transaction_count"`
	RiskLevel        domain.RiskLevel `json:"risk_level,omitempty"`
}

// Publisher enqueues statement jobs. The in-memory queue serves
// single-instance deployments; a broker-backed one can replace it without
// touching callers.
type Publisher interface {
	PublishProcessStatement(ctx context.Context, job *ProcessStatementJob) error
	Close() error
}

// JobHandler processes one job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job *ProcessStatementJob) error

// Consumer pulls jobs off the queue and runs them through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobStore tracks job state so the API can answer status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ProcessStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ProcessStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ProcessStatementJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	BusinessID string
	Status     JobStatus
	Limit      int
	Offset     int
}
