package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yashrajoria/catalog-import-service/models"
	"github.com/yashrajoria/catalog-import-service/repository"
	"github.com/yashrajoria/catalog-import-service/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJobStore struct {
	mu      sync.Mutex
	jobs    map[string]models.ImportJob
	history []models.ImportJobStatus
	saveErr error
}

func newMemJobStore() *memJobStore { return &memJobStore{jobs: map[string]models.ImportJob{}} }

func (s *memJobStore) Save(_ context.Context, job *models.ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.jobs[job.ID] = *job
	s.history = append(s.history, job.Status)
	return nil
}

func (s *memJobStore) Get(_ context.Context, id string) (*models.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &job, nil
}

func (s *memJobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

type memQueue struct {
	ids     chan string
	pushErr error
}

func newMemQueue() *memQueue { return &memQueue{ids: make(chan string, 16)} }

func (q *memQueue) Push(_ context.Context, id string) error {
	if q.pushErr != nil {
		return q.pushErr
	}
	q.ids <- id
	return nil
}

func (q *memQueue) Pop(ctx context.Context) (string, error) {
	select {
	case id := <-q.ids:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = data
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func TestImportJobs_Enqueue(t *testing.T) {
	queue, jobs, blobs := newMemQueue(), newMemJobStore(), newMemBlobs()
	ij := NewImportJobs(queue, jobs, blobs)

	id, err := ij.Enqueue(context.Background(), []byte("name\nA\n"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job, err := ij.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.Status)
	assert.Equal(t, id+".csv", job.PayloadKey)
	assert.Equal(t, []byte("name\nA\n"), blobs.data[job.PayloadKey])
	assert.Equal(t, id, <-queue.ids)
}

func TestImportJobs_EnqueueRollsBack(t *testing.T) {
	queue, jobs, blobs := newMemQueue(), newMemJobStore(), newMemBlobs()
	queue.pushErr = errors.New("redis down")
	ij := NewImportJobs(queue, jobs, blobs)

	_, err := ij.Enqueue(context.Background(), []byte("name\nA\n"))
	require.Error(t, err)
	assert.Empty(t, blobs.data)
	assert.Empty(t, jobs.jobs)

	jobs.saveErr = errors.New("redis down")
	queue.pushErr = nil
	_, err = ij.Enqueue(context.Background(), []byte("name\nA\n"))
	require.Error(t, err)
	assert.Empty(t, blobs.data)
}

func TestImportJobs_StatusNotFound(t *testing.T) {
	ij := NewImportJobs(newMemQueue(), newMemJobStore(), newMemBlobs())
	_, err := ij.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
