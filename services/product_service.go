package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"
	"github.com/yashrajoria/catalog-import-service/repository"

	"github.com/google/uuid"
)

// ErrNoUpdates is returned when an update request carries no fields.
var ErrNoUpdates = errors.New("no fields to update")

// ProductService implements single-record product operations.
type ProductService struct {
	repo      repository.ProductRepo
	validator *repository.DocumentValidator
}

func NewProductService(repo repository.ProductRepo, dv *repository.DocumentValidator) *ProductService {
	if dv == nil {
		dv = repository.NewDocumentValidator()
	}
	return &ProductService{repo: repo, validator: dv}
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, params ListProductsParams) ([]*models.Product, int64, error) {
	skip := (params.Page - 1) * params.PerPage
	products, err := s.repo.Find(ctx, params.PerPage, skip)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	return products, total, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req ProductCreateRequest) (*models.Product, error) {
	now := time.Now().UTC()
	p := &models.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if err := s.validator.Check(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies the non-nil fields of req. The merged document is validated
// before anything is written.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req ProductUpdateRequest) (*models.Product, error) {
	updates := map[string]interface{}{}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *existing
	if req.Name != nil {
		merged.Name = *req.Name
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		merged.Description = *req.Description
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		merged.Price = *req.Price
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		merged.Stock = *req.Stock
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		merged.Category = *req.Category
		updates["category"] = *req.Category
	}
	if len(updates) == 0 {
		return nil, ErrNoUpdates
	}
	if err := s.validator.Check(&merged); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, updates)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
