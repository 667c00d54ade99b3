package models

import "time"

// Product is the persisted catalog document. Validation tags are enforced by the
// record store before any write.
type Product struct {
	ID          string    `json:"_id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64   `json:"price" bson:"price" validate:"gte=0"`
	Stock       int       `json:"stock" bson:"stock" validate:"gte=0"`
	Category    string    `json:"category" bson:"category" validate:"required"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
