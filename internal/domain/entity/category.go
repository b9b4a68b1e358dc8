package entity

// Category representa una categoría de productos (tabla categorias).
type Category struct {
	ID          int64
	CompanyID   int64
	Description string
	Color       string // color de presentación, ej. "#3b82f6"
}

// Brand representa una marca (tabla marca).
type Brand struct {
	ID          int64
	CompanyID   int64
	Description string
}
