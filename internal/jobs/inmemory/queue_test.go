package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumahq/pesaflow/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.ProcessStatementJob {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	var handled int32
	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, job *jobs.ProcessStatementJob) error {
		atomic.AddInt32(&handled, 1)
		job.TransactionCount = 3
		return nil
	}))

	job := &jobs.ProcessStatementJob{BusinessID: "biz-1", RawText: "some statement"}
	require.NoError(t, q.PublishProcessStatement(context.Background(), job))
	require.NotEmpty(t, job.JobID)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, int32(1), atomic.LoadInt32(&handled))
	assert.Equal(t, 3, done.TransactionCount)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
}

func TestQueue_RetriesThenFails(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	require.NoError(t, q.Start(context.Background(), func(ctx context.Context, job *jobs.ProcessStatementJob) error {
		return errors.New("statement fetch failed")
	}))

	job := &jobs.ProcessStatementJob{BusinessID: "biz-1", GCSURI: "gs://statements/bad.txt", MaxRetries: 1}
	require.NoError(t, q.PublishProcessStatement(context.Background(), job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, 1, failed.RetryCount)
	assert.Contains(t, failed.Error, "statement fetch failed")
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	q := NewQueue(1, NewStore())
	require.NoError(t, q.Close())

	err := q.PublishProcessStatement(context.Background(), &jobs.ProcessStatementJob{})
	assert.ErrorContains(t, err, "closed")
}

func TestStore_ListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveJob(ctx, &jobs.ProcessStatementJob{JobID: "j1", BusinessID: "biz-1", Status: jobs.JobStatusPending}))
	require.NoError(t, store.SaveJob(ctx, &jobs.ProcessStatementJob{JobID: "j2", BusinessID: "biz-2", Status: jobs.JobStatusCompleted}))
	require.NoError(t, store.SaveJob(ctx, &jobs.ProcessStatementJob{JobID: "j3", BusinessID: "biz-1", Status: jobs.JobStatusCompleted}))

	byBiz, err := store.ListJobs(ctx, jobs.JobFilter{BusinessID: "biz-1"})
	require.NoError(t, err)
	assert.Len(t, byBiz, 2)

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_GetJobReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveJob(ctx, &jobs.ProcessStatementJob{JobID: "j1", Status: jobs.JobStatusPending}))

	got, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	got.Status = jobs.JobStatusFailed

	again, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, again.Status)
}
