package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	ProductRepo
	inserted []models.Product
	calls    int
	err      error
}

func (f *fakeProductRepo) InsertMany(_ context.Context, products []models.Product) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, products...)
	return len(products), nil
}

func record(line int, name, price, stock, category string) models.ValidatedRecord {
	return models.ValidatedRecord{Line: line, Name: name, Price: price, Stock: stock, Category: category, Attributes: map[string]string{}}
}

func TestRecordStore_InsertMany(t *testing.T) {
	repo := &fakeProductRepo{}
	store := NewRecordStore(repo, nil)

	rec := record(2, "Widget", "9.99", "", "Tools")
	rec.Attributes["description"] = "A widget"
	n, err := store.InsertMany(context.Background(), []models.ValidatedRecord{rec, record(3, "Bolt", "0", "7", "Hardware")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, repo.inserted, 2)

	p := repo.inserted[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 9.99, p.Price)
	assert.Zero(t, p.Stock, "empty stock is stored as 0")
	assert.Equal(t, "A widget", p.Description)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, 7, repo.inserted[1].Stock)
	assert.NotEqual(t, repo.inserted[0].ID, repo.inserted[1].ID)
}

func TestRecordStore_RejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name  string
		bad   models.ValidatedRecord
		field string
	}{
		{"non-numeric price", record(5, "X", "abc", "1", "C"), "price"},
		{"NaN price", record(5, "X", "NaN", "1", "C"), "price"},
		{"fractional stock", record(5, "X", "1", "1.5", "C"), "stock"},
		{"negative price", record(5, "X", "-1", "1", "C"), "price"},
		{"negative stock", record(5, "X", "1", "-3", "C"), "stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeProductRepo{}
			store := NewRecordStore(repo, nil)

			n, err := store.InsertMany(context.Background(), []models.ValidatedRecord{record(2, "Good", "1", "1", "C"), tt.bad})
			require.Error(t, err)
			assert.Zero(t, n)
			assert.Zero(t, repo.calls, "nothing is written")

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, 1, ve.Index)
			assert.Equal(t, 5, ve.Line)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRecordStore_PropagatesRepoError(t *testing.T) {
	repo := &fakeProductRepo{err: errors.New("timeout")}
	_, err := NewRecordStore(repo, nil).InsertMany(context.Background(), []models.ValidatedRecord{record(2, "A", "1", "1", "C")})
	assert.EqualError(t, err, "timeout")
}

func TestRecordStore_EmptyBatch(t *testing.T) {
	repo := &fakeProductRepo{}
	n, err := NewRecordStore(repo, nil).InsertMany(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, repo.calls)
}

func TestDocumentValidator_Check(t *testing.T) {
	dv := NewDocumentValidator()

	assert.NoError(t, dv.Check(&models.Product{Name: "A", Category: "C"}))

	err := dv.Check(&models.Product{Name: "A", Price: 1})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "category", ve.Field)
	assert.Equal(t, "is required", ve.Reason)
	assert.Equal(t, -1, ve.Index)
}
