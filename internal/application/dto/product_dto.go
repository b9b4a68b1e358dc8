package dto

import "github.com/shopspring/decimal"

// CreateProductRequest entrada para crear un producto. Stock es el stock inicial.
type CreateProductRequest struct {
	Description   string          `json:"description" validate:"required,min=1,max=200"`
	BrandID       int64           `json:"brand_id" validate:"required,gt=0"`
	CategoryID    int64           `json:"category_id" validate:"required,gt=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStock      int             `json:"min_stock" validate:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gte=0"`
	SalePrice     decimal.Decimal `json:"sale_price" validate:"gte=0"`
	Barcode       string          `json:"barcode" validate:"omitempty,max=50"`
	InternalCode  string          `json:"internal_code" validate:"omitempty,max=50"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: se maneja vía kardex).
type UpdateProductRequest struct {
	Description   *string          `json:"description" validate:"omitempty,min=1,max=200"`
	BrandID       *int64           `json:"brand_id" validate:"omitempty,gt=0"`
	CategoryID    *int64           `json:"category_id" validate:"omitempty,gt=0"`
	MinStock      *int             `json:"min_stock" validate:"omitempty,gte=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"omitempty,gte=0"`
	SalePrice     *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0"`
	Barcode       *string          `json:"barcode" validate:"omitempty,max=50"`
	InternalCode  *string          `json:"internal_code" validate:"omitempty,max=50"`
}

// ProductResponse salida de un producto. Brand/Category solo vienen en listados.
type ProductResponse struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	Description   string          `json:"description"`
	BrandID       int64           `json:"brand_id"`
	Brand         string          `json:"brand,omitempty"`
	CategoryID    int64           `json:"category_id"`
	Category      string          `json:"category,omitempty"`
	CategoryColor string          `json:"category_color,omitempty"`
	Stock         int             `json:"stock"`
	MinStock      int             `json:"min_stock"`
	StockStatus   string          `json:"stock_status"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Barcode       string          `json:"barcode,omitempty"`
	InternalCode  string          `json:"internal_code,omitempty"`
}
