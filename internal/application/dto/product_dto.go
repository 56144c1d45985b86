package dto

// ProductRequest body para PUT /api/products/:id.
type ProductRequest struct {
	Description string `json:"description" validate:"required,max=200"`
}

// ProductResponse fila del catálogo.
type ProductResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// ProductListResponse listado paginado del catálogo.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ImportResponse resultado de POST /api/products/import.
type ImportResponse struct {
	Imported int `json:"imported"`
}
