package repository

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/google/uuid"
)

// RecordStore adapts a ProductRepo to the ingestion pipeline. It types and
// validates every record and rejects the whole batch on the first invalid one,
// before anything is written.
type RecordStore struct {
	repo      ProductRepo
	validator *DocumentValidator
	now       func() time.Time
}

func NewRecordStore(repo ProductRepo, dv *DocumentValidator) *RecordStore {
	if dv == nil {
		dv = NewDocumentValidator()
	}
	return &RecordStore{repo: repo, validator: dv, now: time.Now}
}

func (s *RecordStore) InsertMany(ctx context.Context, records []models.ValidatedRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	now := s.now().UTC()
	products := make([]models.Product, 0, len(records))
	for i, rec := range records {
		p, err := s.toProduct(rec, now)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Index = i
				ve.Line = rec.Line
			}
			return 0, err
		}
		products = append(products, p)
	}
	return s.repo.InsertMany(ctx, products)
}

func (s *RecordStore) toProduct(rec models.ValidatedRecord, now time.Time) (models.Product, error) {
	price, err := strconv.ParseFloat(rec.Price, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return models.Product{}, &ValidationError{Field: "price", Reason: "must be a number"}
	}
	stock := 0
	if rec.Stock != "" {
		stock, err = strconv.Atoi(rec.Stock)
		if err != nil {
			return models.Product{}, &ValidationError{Field: "stock", Reason: "must be a whole number"}
		}
	}
	p := models.Product{
		ID:          uuid.New().String(),
		Name:        rec.Name,
		Description: rec.Attributes["description"],
		Price:       price,
		Stock:       stock,
		Category:    rec.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validator.Check(&p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}
