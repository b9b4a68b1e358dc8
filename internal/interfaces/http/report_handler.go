package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// ReportHandler genera y exporta reportes (admin+).
type ReportHandler struct {
	svc *report.Service
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service, log *logger.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: log}
}

// Generate godoc
// @Summary      Generar reporte
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "stock | low-stock | kardex | inventory-value"
// @Param        search          query  string  false  "Texto"
// @Param        category_id     query  int     false  "Categoría"
// @Param        brand_id        query  int     false  "Marca"
// @Param        low_stock_only  query  bool    false  "Solo bajo mínimo"
// @Param        start_date      query  string  false  "YYYY-MM-DD"
// @Param        end_date        query  string  false  "YYYY-MM-DD"
// @Param        movement_type   query  string  false  "all | entrada | salida"
// @Param        product_id      query  int     false  "Producto"
// @Success      200  {object}  report.StockReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/{kind} [get]
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	kind, f, ok, err := h.parse(c)
	if !ok {
		return err
	}
	r, err := h.svc.Generate(c.UserContext(), GetCompanyID(c), kind, f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(r)
}

// Export godoc
// @Summary      Exportar reporte como archivo
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        kind    path   string  true   "stock | low-stock | kardex | inventory-value"
// @Param        format  query  string  false  "pdf | csv | xlsx"  default(pdf)
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/{kind}/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind, f, ok, err := h.parse(c)
	if !ok {
		return err
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	file, err := h.svc.Export(c.UserContext(), GetCompanyID(c), kind, f, format)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Data)
}

func (h *ReportHandler) parse(c *fiber.Ctx) (report.Kind, report.Filters, bool, error) {
	var f report.Filters
	kind, err := report.ParseKind(c.Params("kind"))
	if err != nil {
		return "", f, false, writeError(c, h.log, err)
	}
	if err := c.QueryParser(&f); err != nil {
		return "", f, false, badQuery(c)
	}
	return kind, f, true, nil
}
