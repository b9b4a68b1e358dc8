// Package pdf renderiza los reportes de inventario en PDF A4 con Maroto v2.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + título   │  Fecha de generación           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: una caja por indicador                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: columnas según el tipo de reporte                    │
//	│  DESGLOSE POR CATEGORÍA (solo inventario valorado)           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/inventory"
	"github.com/jhoicas/kardex-admin/pkg/format"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 31, Green: 41, Blue: 55}
	colorGray     = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorLight    = &props.Color{Red: 249, Green: 250, Blue: 251}
	colorWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorCritical = &props.Color{Red: 185, Green: 28, Blue: 28}
	colorLow      = &props.Color{Red: 180, Green: 83, Blue: 9}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.Renderer = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa report.Renderer usando Maroto v2.
type MarotoReportGenerator struct {
	formatter *format.Formatter
}

// NewMarotoReportGenerator construye el generador para el locale dado.
func NewMarotoReportGenerator(locale string) *MarotoReportGenerator {
	return &MarotoReportGenerator{formatter: format.New(locale)}
}

func (g *MarotoReportGenerator) Format() report.Format { return report.FormatPDF }
func (g *MarotoReportGenerator) ContentType() string   { return "application/pdf" }

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) Render(_ context.Context, r report.Report, company *entity.Company) ([]byte, error) {
	if r == nil {
		return nil, report.ErrUnsupportedReport
	}
	if company == nil {
		company = &entity.Company{}
	}
	meta := r.Meta()
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(meta.Title, true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(meta, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	switch v := r.(type) {
	case *report.StockReport:
		g.stockSections(m, v, company.Symbol())
	case *report.KardexReport:
		g.kardexSections(m, v)
	case *report.InventoryValueReport:
		g.valueSections(m, v, company.Symbol())
	default:
		return nil, report.ErrUnsupportedReport
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa y título (izq), fecha de generación (der).
func headerRow(meta report.Header, company *entity.Company) core.Row {
	name := nonEmpty(company.Name, "Inventario")
	return row.New(18).Add(
		col.New(8).Add(
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(meta.Title, props.Text{
				Size: 11, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(format.DateTime(meta.GeneratedAt), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

type stat struct {
	label string
	value string
}

// summaryRow: una caja por indicador sobre fondo claro. Admite 2, 3, 4 o 6 indicadores.
func summaryRow(stats ...stat) core.Row {
	width := 12 / len(stats)
	cols := make([]core.Col, 0, len(stats))
	for _, s := range stats {
		cols = append(cols, col.New(width).Add(
			text.New(s.value, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 2}),
			text.New(s.label, props.Text{Size: 7, Align: align.Center, Top: 9, Color: colorGray}),
		))
	}
	return row.New(16).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorLight})
}

type column struct {
	label string
	size  int
	align align.Type
}

// tableHeaderRow: cabecera con fondo primario y texto blanco.
func tableHeaderRow(cols []column) core.Row {
	out := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		out = append(out, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(out...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableRow: una fila de datos; color opcional para la última columna (estado).
func tableRow(cols []column, values []string, statusColor *props.Color) core.Row {
	out := make([]core.Col, 0, len(cols))
	for i, c := range cols {
		p := props.Text{Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1}
		if statusColor != nil && i == len(cols)-1 {
			p.Color = statusColor
			p.Style = fontstyle.Bold
		}
		out = append(out, col.New(c.size).Add(text.New(values[i], p)))
	}
	return row.New(7).Add(out...)
}

func emptyRow(msg string) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 9, Align: align.Center, Color: colorGray, Top: 3}),
	))
}

func sectionTitle(title string) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 3}),
	))
}

var stockColumns = []column{
	{"Código", 1, align.Left},
	{"Producto", 3, align.Left},
	{"Categoría", 2, align.Left},
	{"Stock", 1, align.Right},
	{"Mínimo", 1, align.Right},
	{"P. Venta", 2, align.Right},
	{"Estado", 2, align.Center},
}

func (g *MarotoReportGenerator) stockSections(m core.Maroto, r *report.StockReport, symbol string) {
	s := r.Summary
	if r.Type == report.KindLowStock {
		m.AddRows(summaryRow(
			stat{"Productos con stock bajo", g.formatter.Number(int64(s.TotalProducts))},
			stat{"Críticos", g.formatter.Number(int64(s.CriticalProducts))},
			stat{"Sin stock", g.formatter.Number(int64(s.OutOfStockProducts))},
			stat{"Valor en riesgo", g.formatter.Currency(s.TotalValue, symbol)},
		))
	} else {
		m.AddRows(summaryRow(
			stat{"Productos", g.formatter.Number(int64(s.TotalProducts))},
			stat{"Valor total", g.formatter.Currency(s.TotalValue, symbol)},
			stat{"Stock bajo", g.formatter.Number(int64(s.LowStockProducts))},
			stat{"Stock promedio", g.formatter.Decimal(s.AverageStock)},
		))
	}
	m.AddRows(line.NewRow(3))
	m.AddRows(tableHeaderRow(stockColumns))
	if len(r.Rows) == 0 {
		m.AddRows(emptyRow("No hay productos para los filtros seleccionados"))
		return
	}
	for _, p := range r.Rows {
		m.AddRows(tableRow(stockColumns, []string{
			nonEmpty(p.Code, "-"),
			format.Truncate(p.Description, 40),
			format.Truncate(nonEmpty(p.Category, "-"), 22),
			g.formatter.Number(int64(p.Stock)),
			g.formatter.Number(int64(p.MinStock)),
			g.formatter.Currency(p.SalePrice, symbol),
			string(p.Status),
		}, statusColor(p.Status)))
	}
}

var kardexColumns = []column{
	{"Fecha", 2, align.Left},
	{"Producto", 3, align.Left},
	{"Tipo", 2, align.Center},
	{"Cantidad", 1, align.Right},
	{"Usuario", 2, align.Left},
	{"Detalle", 2, align.Left},
}

func (g *MarotoReportGenerator) kardexSections(m core.Maroto, r *report.KardexReport) {
	s := r.Summary
	m.AddRows(summaryRow(
		stat{"Movimientos", g.formatter.Number(int64(s.TotalMovements))},
		stat{"Unidades ingresadas", g.formatter.Number(int64(s.TotalEntries))},
		stat{"Unidades egresadas", g.formatter.Number(int64(s.TotalExits))},
		stat{"Período", periodLabel(s.Period)},
	))
	m.AddRows(line.NewRow(3))
	m.AddRows(tableHeaderRow(kardexColumns))
	if len(r.Rows) == 0 {
		m.AddRows(emptyRow("No hay movimientos para los filtros seleccionados"))
		return
	}
	for _, mv := range r.Rows {
		m.AddRows(tableRow(kardexColumns, []string{
			format.Date(mv.Date),
			format.Truncate(mv.Product, 34),
			strings.ToUpper(mv.Type),
			g.formatter.Number(int64(mv.Quantity)),
			format.Truncate(nonEmpty(mv.User, "-"), 22),
			format.Truncate(mv.Detail, 22),
		}, nil))
	}
}

var valueColumns = []column{
	{"Producto", 3, align.Left},
	{"Categoría", 2, align.Left},
	{"Stock", 1, align.Right},
	{"Valor compra", 2, align.Right},
	{"Valor venta", 2, align.Right},
	{"Utilidad", 2, align.Right},
}

var breakdownColumns = []column{
	{"Categoría", 4, align.Left},
	{"Productos", 2, align.Right},
	{"Costo", 3, align.Right},
	{"Valor", 3, align.Right},
}

func (g *MarotoReportGenerator) valueSections(m core.Maroto, r *report.InventoryValueReport, symbol string) {
	s := r.Summary
	m.AddRows(summaryRow(
		stat{"Productos", g.formatter.Number(int64(s.TotalProducts))},
		stat{"Valor al costo", g.formatter.Currency(s.TotalValueCost, symbol)},
		stat{"Valor de venta", g.formatter.Currency(s.TotalValueSale, symbol)},
		stat{"Utilidad potencial", g.formatter.Currency(s.TotalPotentialProfit, symbol)},
	))
	m.AddRows(line.NewRow(3))
	m.AddRows(tableHeaderRow(valueColumns))
	if len(r.Rows) == 0 {
		m.AddRows(emptyRow("No hay productos para los filtros seleccionados"))
		return
	}
	for _, p := range r.Rows {
		m.AddRows(tableRow(valueColumns, []string{
			format.Truncate(p.Description, 34),
			format.Truncate(nonEmpty(p.Category, "-"), 22),
			g.formatter.Number(int64(p.Stock)),
			g.formatter.Currency(p.PurchaseValue, symbol),
			g.formatter.Currency(p.SaleValue, symbol),
			g.formatter.Currency(p.PotentialProfit, symbol),
		}, nil))
	}

	m.AddRows(sectionTitle("Desglose por categoría"))
	m.AddRows(tableHeaderRow(breakdownColumns))
	for _, c := range r.CategoryBreakdown {
		m.AddRows(tableRow(breakdownColumns, []string{
			c.Name,
			g.formatter.Number(int64(c.Count)),
			g.formatter.Currency(c.TotalCost, symbol),
			g.formatter.Currency(c.TotalValue, symbol),
		}, nil))
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(s inventory.Status) *props.Color {
	switch s {
	case inventory.StatusCritical:
		return colorCritical
	case inventory.StatusLow:
		return colorLow
	default:
		return colorPrimary
	}
}

func periodLabel(p report.Period) string {
	switch {
	case p.Start == "" && p.End == "":
		return "Todo"
	case p.End == "":
		return "Desde " + p.Start
	case p.Start == "":
		return "Hasta " + p.End
	default:
		return p.Start + " a " + p.End
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
