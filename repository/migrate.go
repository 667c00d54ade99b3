package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CopyProducts pages through src and bulk-writes every product into dst. Missing
// ids and timestamps are filled in. It returns the number of products written.
func CopyProducts(ctx context.Context, src, dst ProductRepo, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	copied := 0
	for skip := 0; ; skip += batchSize {
		page, err := src.Find(ctx, batchSize, skip)
		if err != nil {
			return copied, fmt.Errorf("read page at %d: %w", skip, err)
		}
		if len(page) == 0 {
			return copied, nil
		}

		batch := make([]models.Product, 0, len(page))
		for _, p := range page {
			cp := *p
			if cp.ID == "" {
				cp.ID = uuid.New().String()
			}
			if cp.CreatedAt.IsZero() {
				cp.CreatedAt = time.Now().UTC()
			}
			if cp.UpdatedAt.IsZero() {
				cp.UpdatedAt = cp.CreatedAt
			}
			batch = append(batch, cp)
		}

		n, err := dst.InsertMany(ctx, batch)
		copied += n
		if err != nil {
			return copied, fmt.Errorf("write page at %d: %w", skip, err)
		}
		zap.L().Info("Migrated products", zap.Int("total", copied))

		if len(page) < batchSize {
			return copied, nil
		}
	}
}
