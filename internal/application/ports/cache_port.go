package ports

import (
	"context"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
)

// StatsCache cachea las estadísticas de kardex por empresa y ventana de días.
// Invalidate descarta todas las ventanas de la empresa.
type StatsCache interface {
	Get(ctx context.Context, companyID int64, days int) (*dto.KardexStats, bool)
	Set(ctx context.Context, companyID int64, days int, stats *dto.KardexStats)
	Invalidate(ctx context.Context, companyID int64)
}
