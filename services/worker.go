package services

import (
	"context"
	"errors"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"go.uber.org/zap"
)

// CacheInvalidator drops cached product listings.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Worker consumes queued import jobs one at a time.
type Worker struct {
	jobs     *ImportJobs
	pipeline *Pipeline
	cache    CacheInvalidator
	backoff  time.Duration
}

// NewWorker builds a worker. cache may be nil.
func NewWorker(jobs *ImportJobs, pipeline *Pipeline, cache CacheInvalidator) *Worker {
	return &Worker{jobs: jobs, pipeline: pipeline, cache: cache, backoff: 500 * time.Millisecond}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	zap.L().Info("bulk import worker started")
	for {
		jobID, err := w.jobs.queue.Pop(ctx)
		if ctx.Err() != nil {
			zap.L().Info("bulk import worker stopping")
			return
		}
		if err != nil {
			zap.L().Error("failed to pop bulk import job", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}
		if err := w.ProcessJob(ctx, jobID); err != nil {
			zap.L().Error("bulk import job failed", zap.String("job", jobID), zap.Error(err))
		}
	}
}

// ProcessJob runs one queued job and stores its report. The payload is removed
// once the job reaches a final state.
func (w *Worker) ProcessJob(ctx context.Context, jobID string) error {
	job, err := w.jobs.Status(ctx, jobID)
	if err != nil {
		return err
	}
	if err := w.jobs.update(ctx, job, models.JobProcessing); err != nil {
		return err
	}

	data, err := w.jobs.blobs.Get(ctx, job.PayloadKey)
	if err != nil {
		job.Error = err.Error()
		return errors.Join(err, w.jobs.update(ctx, job, models.JobFailed))
	}

	report := w.pipeline.Ingest(ctx, data)
	job.Report = report
	status := models.JobDone
	if report.HasErrors() {
		status = models.JobFailed
		job.Error = report.Errors[0].Detail
	}
	if err := w.jobs.update(ctx, job, status); err != nil {
		return err
	}
	w.jobs.discardPayload(ctx, job.PayloadKey)

	if report.TotalInserted > 0 && w.cache != nil {
		if err := w.cache.Invalidate(ctx); err != nil {
			zap.L().Error("CRITICAL: Failed to invalidate cache after bulk import", zap.Error(err))
		}
	}
	zap.L().Info("bulk import job finished", zap.String("job", jobID), zap.String("status", string(status)))
	return nil
}
