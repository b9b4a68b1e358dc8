package entity

import "github.com/shopspring/decimal"

// Product representa un producto del catálogo (tabla productos).
// Stock solo cambia a través del kardex; nunca es negativo.
type Product struct {
	ID            int64
	CompanyID     int64
	BrandID       int64
	CategoryID    int64
	Description   string
	Stock         int
	MinStock      int
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Barcode       string
	InternalCode  string
}

// ProductListing es la fila desnormalizada de mostrarproductos / buscarproductos:
// el producto junto con los nombres de marca y categoría y el color de la categoría.
type ProductListing struct {
	Product
	Brand         string
	Category      string
	CategoryColor string
}
