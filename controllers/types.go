package controllers

import (
	"context"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"
	"github.com/yashrajoria/catalog-import-service/services"
)

const (
	DefaultCacheTTL = 10 * time.Minute
	// DefaultMaxUploadMB caps the size of a bulk import upload.
	DefaultMaxUploadMB = 50
)

// ProductServiceAPI defines the single-record product operations used by the handlers.
type ProductServiceAPI interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, params services.ListProductsParams) ([]*models.Product, int64, error)
	CreateProduct(ctx context.Context, req services.ProductCreateRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req services.ProductUpdateRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Importer runs the bulk import pipeline over an uploaded buffer.
type Importer interface {
	Ingest(ctx context.Context, buf []byte) *models.IngestionReport
	Validate(ctx context.Context, buf []byte) *models.IngestionReport
}

// ImportJobsAPI queues uploads for background processing.
type ImportJobsAPI interface {
	Enqueue(ctx context.Context, data []byte) (string, error)
	Status(ctx context.Context, jobID string) (*models.ImportJob, error)
}
