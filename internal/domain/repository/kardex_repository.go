package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

// MovementFilter filtros de búsqueda del kardex. Los campos cero no filtran.
type MovementFilter struct {
	From      *time.Time // inclusivo, por día
	To        *time.Time // inclusivo, por día
	Type      entity.MovementType
	ProductID int64
	UserID    int64
	Limit     int
	Offset    int
}

// KardexRepository define el puerto de persistencia para movimientos de kardex.
// Las lecturas de listado solo devuelven movimientos activos.
type KardexRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// GetForUpdate bloquea la fila del movimiento hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	SetStatus(ctx context.Context, id int64, status entity.MovementStatus) error
	// ListExtended devuelve las filas de mostrarkardexempresa.
	ListExtended(ctx context.Context, companyID int64) ([]*entity.MovementListing, error)
	Search(ctx context.Context, companyID int64, f MovementFilter) ([]*entity.MovementListing, error)
	// ListActiveSince devuelve los movimientos activos con fecha >= since.
	ListActiveSince(ctx context.Context, companyID int64, since time.Time) ([]*entity.Movement, error)
	CountByUser(ctx context.Context, companyID int64) (map[int64]int, error)
}
