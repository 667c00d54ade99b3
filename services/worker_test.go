package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCache struct{ calls int }

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newTestWorker(store *fakeRecordStore) (*Worker, *ImportJobs, *memJobStore, *memBlobs, *countingCache) {
	jobs, blobs := newMemJobStore(), newMemBlobs()
	ij := NewImportJobs(newMemQueue(), jobs, blobs)
	cache := &countingCache{}
	return NewWorker(ij, NewPipeline(store, nil, nil), cache), ij, jobs, blobs, cache
}

func TestWorker_ProcessJobDone(t *testing.T) {
	store := &fakeRecordStore{}
	w, ij, jobs, blobs, cache := newTestWorker(store)

	id, err := ij.Enqueue(context.Background(), []byte("name,price,stock,category\nA,1,1,C\n"))
	require.NoError(t, err)
	<-ij.queue.(*memQueue).ids

	require.NoError(t, w.ProcessJob(context.Background(), id))

	job, err := ij.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobDone, job.Status)
	require.NotNil(t, job.Report)
	assert.Equal(t, 1, job.Report.TotalInserted)
	assert.Empty(t, job.Error)
	assert.Empty(t, blobs.data, "payload removed")
	assert.Equal(t, 1, cache.calls)
	assert.Equal(t, []models.ImportJobStatus{models.JobPending, models.JobProcessing, models.JobDone}, jobs.history)
}

func TestWorker_ProcessJobFailedReport(t *testing.T) {
	store := &fakeRecordStore{err: errors.New("write conflict")}
	w, ij, _, _, cache := newTestWorker(store)

	id, err := ij.Enqueue(context.Background(), []byte("name,price,stock,category\nA,1,1,C\n"))
	require.NoError(t, err)

	require.NoError(t, w.ProcessJob(context.Background(), id))
	job, _ := ij.Status(context.Background(), id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Contains(t, job.Error, "write conflict")
	assert.Zero(t, cache.calls)
}

func TestWorker_ProcessJobMissingPayload(t *testing.T) {
	w, ij, _, blobs, _ := newTestWorker(&fakeRecordStore{})

	id, err := ij.Enqueue(context.Background(), []byte("name\n"))
	require.NoError(t, err)
	blobs.data = map[string][]byte{}

	assert.Error(t, w.ProcessJob(context.Background(), id))
	job, _ := ij.Status(context.Background(), id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.NotEmpty(t, job.Error)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	store := &fakeRecordStore{}
	w, ij, _, _, _ := newTestWorker(store)

	id, err := ij.Enqueue(context.Background(), []byte("name,price,stock,category\nA,1,1,C\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		job, err := ij.Status(context.Background(), id)
		return err == nil && job.Status == models.JobDone
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
