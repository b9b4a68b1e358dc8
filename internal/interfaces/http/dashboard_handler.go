package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/kardex-admin/internal/application/analytics"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// DashboardHandler maneja el endpoint del dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetSummary devuelve los indicadores del inventario y de los movimientos del día.
// GET /api/dashboard
//
// Respuesta: DashboardSummaryDTO (total_products, low_stock_products, critical_products,
// total_value, today_exits, exits_trend, top_categories, chart[7], recent_movements[5]).
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(summary)
}
