// Package xlsx exporta reportes como planilla Excel con excelize: una hoja con la tabla del
// reporte y una hoja "Resumen" con los indicadores.
package xlsx

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/pkg/format"
)

const summarySheet = "Resumen"

var _ report.Renderer = (*ReportWriter)(nil)

// ReportWriter implementa report.Renderer.
type ReportWriter struct{}

// NewReportWriter construye el exportador XLSX.
func NewReportWriter() *ReportWriter { return &ReportWriter{} }

func (w *ReportWriter) Format() report.Format { return report.FormatXLSX }
func (w *ReportWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render arma el libro y devuelve sus bytes.
func (w *ReportWriter) Render(_ context.Context, r report.Report, company *entity.Company) ([]byte, error) {
	table, err := report.TableOf(r)
	if err != nil {
		return nil, err
	}
	summary, err := summaryRows(r, company.Symbol())
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", table.Sheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	if err := writeRow(f, table.Sheet, 1, toCells(table.Headers)); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(table.Headers), 1)
	if err := f.SetCellStyle(table.Sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}
	for i, row := range table.Rows {
		if err := writeRow(f, table.Sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja resumen: %w", err)
	}
	meta := r.Meta()
	if err := writeRow(f, summarySheet, 1, []any{meta.Title, format.DateTime(meta.GeneratedAt)}); err != nil {
		return nil, err
	}
	for i, kv := range summary {
		if err := writeRow(f, summarySheet, i+3, kv); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, rowNo int, cells []any) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
		if err != nil {
			return fmt.Errorf("xlsx: celda: %w", err)
		}
		if d, ok := v.(decimal.Decimal); ok {
			v = d.InexactFloat64()
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx: valor %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// summaryRows pares etiqueta/valor del resumen de cada variante.
func summaryRows(r report.Report, symbol string) ([][]any, error) {
	switch v := r.(type) {
	case *report.StockReport:
		s := v.Summary
		return [][]any{
			{"Productos", s.TotalProducts},
			{"Valor total (" + symbol + ")", s.TotalValue},
			{"Stock bajo", s.LowStockProducts},
			{"Críticos", s.CriticalProducts},
			{"Sin stock", s.OutOfStockProducts},
			{"Stock promedio", s.AverageStock},
		}, nil
	case *report.KardexReport:
		s := v.Summary
		return [][]any{
			{"Movimientos", s.TotalMovements},
			{"Unidades ingresadas", s.TotalEntries},
			{"Unidades egresadas", s.TotalExits},
			{"Desde", s.Period.Start},
			{"Hasta", s.Period.End},
		}, nil
	case *report.InventoryValueReport:
		s := v.Summary
		rows := [][]any{
			{"Productos", s.TotalProducts},
			{"Valor al costo (" + symbol + ")", s.TotalValueCost},
			{"Valor de venta (" + symbol + ")", s.TotalValueSale},
			{"Utilidad potencial (" + symbol + ")", s.TotalPotentialProfit},
			{"Valor promedio (" + symbol + ")", s.AverageValue},
			{},
			{"Categoría", "Productos", "Costo", "Valor"},
		}
		for _, c := range v.CategoryBreakdown {
			rows = append(rows, []any{c.Name, c.Count, c.TotalCost, c.TotalValue})
		}
		return rows, nil
	default:
		return nil, report.ErrUnsupportedReport
	}
}
