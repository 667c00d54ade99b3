package repository

import (
	"context"
	"errors"

	"github.com/yashrajoria/catalog-import-service/models"
)

// ErrNotFound is returned when the requested product or job does not exist.
var ErrNotFound = errors.New("record not found")

// ProductRepo defines the storage operations used by the service.
// This interface uses plain Go types so the Mongo and DynamoDB adapters are interchangeable.
type ProductRepo interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Find(ctx context.Context, limit, skip int) ([]*models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	// InsertMany writes all products and returns how many the backend accepted.
	InsertMany(ctx context.Context, products []models.Product) (int, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// JobStore keeps async bulk import job metadata.
type JobStore interface {
	Save(ctx context.Context, job *models.ImportJob) error
	Get(ctx context.Context, id string) (*models.ImportJob, error)
	Delete(ctx context.Context, id string) error
}

// JobQueue hands job IDs from the upload handler to the worker.
type JobQueue interface {
	Push(ctx context.Context, jobID string) error
	// Pop blocks until a job ID is available or ctx is done.
	Pop(ctx context.Context) (string, error)
}
