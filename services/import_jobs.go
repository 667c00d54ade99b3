package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"
	"github.com/yashrajoria/catalog-import-service/repository"
	"github.com/yashrajoria/catalog-import-service/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImportJobs queues uploads for the background worker and reports their status.
type ImportJobs struct {
	queue repository.JobQueue
	jobs  repository.JobStore
	blobs storage.BlobStore
	now   func() time.Time
}

func NewImportJobs(queue repository.JobQueue, jobs repository.JobStore, blobs storage.BlobStore) *ImportJobs {
	return &ImportJobs{queue: queue, jobs: jobs, blobs: blobs, now: time.Now}
}

// Enqueue persists the payload, records a pending job and queues it. Partial state
// is rolled back when a later step fails.
func (j *ImportJobs) Enqueue(ctx context.Context, data []byte) (string, error) {
	jobID := uuid.New().String()
	payloadKey := jobID + ".csv"

	if err := j.blobs.Put(ctx, payloadKey, data); err != nil {
		return "", err
	}

	now := j.now().UTC()
	job := &models.ImportJob{
		ID:         jobID,
		Status:     models.JobPending,
		PayloadKey: payloadKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := j.jobs.Save(ctx, job); err != nil {
		j.discardPayload(ctx, payloadKey)
		return "", err
	}

	if err := j.queue.Push(ctx, jobID); err != nil {
		j.discardPayload(ctx, payloadKey)
		if delErr := j.jobs.Delete(ctx, jobID); delErr != nil {
			zap.L().Warn("Failed to remove job metadata", zap.String("job_id", jobID), zap.Error(delErr))
		}
		return "", err
	}

	zap.L().Info("Bulk import job queued", zap.String("job_id", jobID), zap.Int("bytes", len(data)))
	return jobID, nil
}

func (j *ImportJobs) Status(ctx context.Context, jobID string) (*models.ImportJob, error) {
	return j.jobs.Get(ctx, jobID)
}

func (j *ImportJobs) update(ctx context.Context, job *models.ImportJob, status models.ImportJobStatus) error {
	job.Status = status
	job.UpdatedAt = j.now().UTC()
	if err := j.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

func (j *ImportJobs) discardPayload(ctx context.Context, key string) {
	if err := j.blobs.Delete(ctx, key); err != nil {
		zap.L().Warn("Failed to remove bulk import payload", zap.String("key", key), zap.Error(err))
	}
}
