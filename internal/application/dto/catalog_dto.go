package dto

// CategoryRequest entrada para crear o actualizar una categoría.
type CategoryRequest struct {
	Description string `json:"description" validate:"required,min=1,max=100"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Color       string `json:"color,omitempty"`
}

// BrandRequest entrada para crear o actualizar una marca.
type BrandRequest struct {
	Description string `json:"description" validate:"required,min=1,max=100"`
}

// BrandResponse salida de una marca.
type BrandResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}
