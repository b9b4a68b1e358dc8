package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetInventoryTotals cuenta productos, bajo mínimo y críticos, y valoriza el stock.
// El criterio de crítico coincide con inventory.Classify.
func (r *AnalyticsRepo) GetInventoryTotals(ctx context.Context, companyID int64) (*repository.InventoryTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                                          AS products,
	    COUNT(*) FILTER (WHERE stock <= stock_minimo)                     AS low_stock,
	    COUNT(*) FILTER (WHERE stock <= 0 OR 2 * stock < stock_minimo)    AS critical,
	    COALESCE(SUM(stock * precioventa), 0)                             AS total_value,
	    COALESCE(SUM(stock * preciocompra), 0)                            AS total_cost
	FROM productos
	WHERE id_empresa = $1`

	var t repository.InventoryTotals
	if err := r.q.QueryRow(ctx, query, companyID).Scan(
		&t.Products, &t.LowStock, &t.Critical, &t.TotalValue, &t.TotalCost,
	); err != nil {
		return nil, fmt.Errorf("analytics.GetInventoryTotals: %w", err)
	}
	return &t, nil
}

// GetTopCategories agrupa el valor de venta del stock por categoría.
func (r *AnalyticsRepo) GetTopCategories(ctx context.Context, companyID int64, limit int) ([]repository.CategoryValue, error) {
	const query = `
	SELECT
	    COALESCE(c.descripcion, 'Sin categoría')       AS name,
	    COUNT(p.id)                                    AS products,
	    COALESCE(SUM(p.stock * p.precioventa), 0)      AS value
	FROM productos p
	LEFT JOIN categorias c ON c.id = p.id_categoria
	WHERE p.id_empresa = $1
	GROUP BY c.descripcion
	ORDER BY value DESC
	LIMIT $2`

	rows, err := r.q.Query(ctx, query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopCategories: %w", err)
	}
	defer rows.Close()

	var results []repository.CategoryValue
	for rows.Next() {
		var row repository.CategoryValue
		if err := rows.Scan(&row.Name, &row.Products, &row.Value); err != nil {
			return nil, fmt.Errorf("analytics.GetTopCategories scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetDailyMovements suma entradas y salidas activas por día en el rango [from, to].
func (r *AnalyticsRepo) GetDailyMovements(ctx context.Context, companyID int64, from, to time.Time) ([]repository.DailyMovement, error) {
	const query = `
	SELECT
	    fecha                                                        AS day,
	    COALESCE(SUM(cantidad) FILTER (WHERE tipo = 'entrada'), 0)   AS entries,
	    COALESCE(SUM(cantidad) FILTER (WHERE tipo = 'salida'), 0)    AS exits
	FROM kardex
	WHERE id_empresa = $1
	  AND estado = 1
	  AND fecha BETWEEN $2::date AND $3::date
	GROUP BY fecha
	ORDER BY fecha`

	rows, err := r.q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetDailyMovements: %w", err)
	}
	defer rows.Close()

	var results []repository.DailyMovement
	for rows.Next() {
		var row repository.DailyMovement
		if err := rows.Scan(&row.Day, &row.Entries, &row.Exits); err != nil {
			return nil, fmt.Errorf("analytics.GetDailyMovements scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
