package report

import (
	"strings"

	"github.com/jhoicas/kardex-admin/pkg/format"
)

// Table contenido tabular de un reporte para los formatos planos (CSV, XLSX). Las celdas son
// string, int o decimal.Decimal.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

var (
	stockHeaders = []string{"Código", "Producto", "Categoría", "Marca", "Stock Actual", "Stock Mínimo",
		"Precio Compra", "Precio Venta", "Valor Total", "Estado Stock"}
	kardexHeaders = []string{"Fecha", "Producto", "Tipo", "Cantidad", "Usuario", "Detalle"}
	valueHeaders  = []string{"Producto", "Categoría", "Stock", "Precio Compra", "Precio Venta",
		"Valor Compra Total", "Valor Venta Total", "Utilidad Potencial"}
)

// TableOf devuelve la tabla de un reporte. Un reporte sin filas produce solo encabezados.
func TableOf(r Report) (*Table, error) {
	switch v := r.(type) {
	case *StockReport:
		if v == nil {
			return nil, ErrUnsupportedReport
		}
		t := &Table{Sheet: sheetName(v.Type), Headers: stockHeaders, Rows: make([][]any, 0, len(v.Rows))}
		for _, p := range v.Rows {
			t.Rows = append(t.Rows, []any{p.Code, p.Description, p.Category, p.Brand, p.Stock, p.MinStock,
				p.PurchasePrice, p.SalePrice, p.TotalValue, string(p.Status)})
		}
		return t, nil
	case *KardexReport:
		if v == nil {
			return nil, ErrUnsupportedReport
		}
		t := &Table{Sheet: sheetName(v.Type), Headers: kardexHeaders, Rows: make([][]any, 0, len(v.Rows))}
		for _, m := range v.Rows {
			t.Rows = append(t.Rows, []any{format.Day(m.Date), m.Product, strings.ToUpper(m.Type), m.Quantity,
				m.User, m.Detail})
		}
		return t, nil
	case *InventoryValueReport:
		if v == nil {
			return nil, ErrUnsupportedReport
		}
		t := &Table{Sheet: sheetName(v.Type), Headers: valueHeaders, Rows: make([][]any, 0, len(v.Rows))}
		for _, p := range v.Rows {
			t.Rows = append(t.Rows, []any{p.Description, p.Category, p.Stock, p.PurchasePrice, p.SalePrice,
				p.PurchaseValue, p.SaleValue, p.PotentialProfit})
		}
		return t, nil
	default:
		return nil, ErrUnsupportedReport
	}
}

func sheetName(k Kind) string {
	switch k {
	case KindLowStock:
		return "Stock bajo"
	case KindKardex:
		return "Kardex"
	case KindInventoryValue:
		return "Inventario valorado"
	default:
		return "Stock"
	}
}
