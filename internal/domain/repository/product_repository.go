package repository

import (
	"context"

	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// Update modifica los datos de catálogo; no toca stock.
	Update(ctx context.Context, p *entity.Product) error
	UpdateStock(ctx context.Context, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
	// List y Search devuelven las filas desnormalizadas de mostrarproductos / buscarproductos.
	List(ctx context.Context, companyID int64) ([]*entity.ProductListing, error)
	Search(ctx context.Context, companyID int64, query string) ([]*entity.ProductListing, error)
}
