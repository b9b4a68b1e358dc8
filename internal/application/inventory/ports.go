package inventory

import (
	"context"

	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// El movimiento de kardex y el nuevo stock del producto se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		kardexRepo repository.KardexRepository,
		productRepo repository.ProductRepository,
	) error) error
}
