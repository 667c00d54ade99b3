package services

import "github.com/yashrajoria/catalog-import-service/models"

const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldStock    = "stock"
	FieldCategory = "category"
)

// IsValid reports whether a row carries the fields a product needs. name, price
// and category must be non-empty; stock only has to be present. Numeric checks are
// left to the record store.
func IsValid(row models.RawRow) bool {
	for _, key := range []string{FieldName, FieldPrice, FieldCategory} {
		if v, ok := row.Get(key); !ok || v == "" {
			return false
		}
	}
	_, ok := row.Get(FieldStock)
	return ok
}

// ToValidatedRecord copies a row that passed IsValid into a record. Columns other
// than the four product fields are kept in Attributes.
func ToValidatedRecord(row models.RawRow) models.ValidatedRecord {
	rec := models.ValidatedRecord{Line: row.Line, Attributes: make(map[string]string)}
	rec.Name, _ = row.Get(FieldName)
	rec.Price, _ = row.Get(FieldPrice)
	rec.Stock, _ = row.Get(FieldStock)
	rec.Category, _ = row.Get(FieldCategory)
	for _, key := range row.Keys() {
		switch key {
		case FieldName, FieldPrice, FieldStock, FieldCategory:
			continue
		}
		rec.Attributes[key], _ = row.Get(key)
	}
	return rec
}
