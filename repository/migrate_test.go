package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagedRepo struct {
	ProductRepo
	items   []*models.Product
	findErr error
}

func (p *pagedRepo) Find(_ context.Context, limit, skip int) ([]*models.Product, error) {
	if p.findErr != nil {
		return nil, p.findErr
	}
	if skip >= len(p.items) {
		return nil, nil
	}
	return p.items[skip:min(skip+limit, len(p.items))], nil
}

func TestCopyProducts(t *testing.T) {
	src := &pagedRepo{}
	for i := range 7 {
		id := fmt.Sprintf("p-%d", i)
		if i == 3 {
			id = ""
		}
		src.items = append(src.items, &models.Product{ID: id, Name: "P", Category: "C"})
	}
	dst := &fakeProductRepo{}

	n, err := CopyProducts(context.Background(), src, dst, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 3, dst.calls)
	require.Len(t, dst.inserted, 7)
	assert.NotEmpty(t, dst.inserted[3].ID)
	assert.False(t, dst.inserted[0].CreatedAt.IsZero())
	assert.Equal(t, dst.inserted[0].CreatedAt, dst.inserted[0].UpdatedAt)
}

func TestCopyProducts_Errors(t *testing.T) {
	_, err := CopyProducts(context.Background(), &pagedRepo{findErr: errors.New("cursor")}, &fakeProductRepo{}, 10)
	assert.ErrorContains(t, err, "cursor")

	src := &pagedRepo{items: []*models.Product{{ID: "a", Name: "P", Category: "C"}}}
	_, err = CopyProducts(context.Background(), src, &fakeProductRepo{err: errors.New("throttled")}, 10)
	assert.ErrorContains(t, err, "throttled")
}
