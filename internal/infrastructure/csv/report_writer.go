// Package csv exporta reportes como texto separado por comas con encabezados en español.
package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

var _ report.Renderer = (*ReportWriter)(nil)

// ReportWriter implementa report.Renderer. Los números se escriben sin separador de miles y con
// punto decimal para que las planillas los interpreten como valores.
type ReportWriter struct{}

// NewReportWriter construye el exportador CSV.
func NewReportWriter() *ReportWriter { return &ReportWriter{} }

func (w *ReportWriter) Format() report.Format { return report.FormatCSV }
func (w *ReportWriter) ContentType() string   { return "text/csv; charset=utf-8" }

// Render escribe la tabla del reporte. Sin filas, el resultado es solo la línea de encabezados.
func (w *ReportWriter) Render(_ context.Context, r report.Report, _ *entity.Company) ([]byte, error) {
	table, err := report.TableOf(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := stdcsv.NewWriter(&buf)
	if err := cw.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("csv: encabezados: %w", err)
	}
	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		for i, cell := range row {
			record[i] = cellString(cell)
		}
		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("csv: fila: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv: flush: %w", err)
	}
	return buf.Bytes(), nil
}

func cellString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case decimal.Decimal:
		return c.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
