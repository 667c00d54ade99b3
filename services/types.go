package services

// ProductCreateRequest is the request payload for creating a product
type ProductCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	Stock       *int     `json:"stock"`
	Category    string   `json:"category" binding:"required"`
}

// ProductUpdateRequest carries a partial update; nil fields are left unchanged.
type ProductUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
}

// ListProductsParams contains pagination parameters for listing products
type ListProductsParams struct {
	Page    int
	PerPage int
}
