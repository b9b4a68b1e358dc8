package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryTotals agregados del catálogo de una empresa.
type InventoryTotals struct {
	Products   int
	LowStock   int             // stock <= stock_minimo
	Critical   int             // stock = 0 o stock < stock_minimo/2
	TotalValue decimal.Decimal // Σ stock × precioventa
	TotalCost  decimal.Decimal // Σ stock × preciocompra
}

// CategoryValue valor de inventario agrupado por categoría.
type CategoryValue struct {
	Name     string
	Products int
	Value    decimal.Decimal
}

// DailyMovement unidades movidas por día y dirección.
type DailyMovement struct {
	Day     time.Time
	Entries int
	Exits   int
}

// AnalyticsRepository define las consultas de lectura del dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	GetInventoryTotals(ctx context.Context, companyID int64) (*InventoryTotals, error)

	// GetTopCategories devuelve las `limit` categorías con mayor valor de venta.
	GetTopCategories(ctx context.Context, companyID int64, limit int) ([]CategoryValue, error)

	// GetDailyMovements devuelve un bucket por día con movimientos activos en [from, to].
	// Los días sin movimientos no aparecen.
	GetDailyMovements(ctx context.Context, companyID int64, from, to time.Time) ([]DailyMovement, error)
}
