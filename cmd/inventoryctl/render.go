package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/client"
	"github.com/jhoicas/kardex-admin/pkg/format"
)

func table(e *env, header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func row(w *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func renderProducts(e *env, items []dto.ProductResponse) {
	if len(items) == 0 {
		fmt.Fprintln(e.out, "No hay productos")
		return
	}
	w := table(e, "ID", "DESCRIPCIÓN", "CATEGORÍA", "MARCA", "STOCK", "MÍNIMO", "ESTADO", "PRECIO")
	for _, p := range items {
		row(w,
			fmt.Sprint(p.ID),
			format.Truncate(p.Description, 40),
			p.Category,
			p.Brand,
			e.fmt.Number(int64(p.Stock)),
			e.fmt.Number(int64(p.MinStock)),
			p.StockStatus,
			e.fmt.Currency(p.SalePrice, "$"),
		)
	}
	_ = w.Flush()
}

func renderMovements(e *env, items []dto.MovementResponse) {
	if len(items) == 0 {
		fmt.Fprintln(e.out, "No hay movimientos")
		return
	}
	w := table(e, "ID", "FECHA", "PRODUCTO", "TIPO", "CANTIDAD", "USUARIO", "DETALLE")
	for _, m := range items {
		row(w,
			fmt.Sprint(m.ID),
			format.Date(m.Date),
			format.Truncate(m.Product, 30),
			m.Type,
			e.fmt.Number(int64(m.Quantity)),
			m.User,
			format.Truncate(m.Detail, 40),
		)
	}
	_ = w.Flush()
}

func renderKardexStats(e *env, s *dto.KardexStats) {
	fmt.Fprintf(e.out, "Últimos %d días (desde %s)\n", s.Days, s.Since)
	fmt.Fprintf(e.out, "Entradas: %s  Salidas: %s  Movimientos: %s\n\n",
		e.fmt.Number(int64(s.TotalEntries)), e.fmt.Number(int64(s.TotalExits)), e.fmt.Number(int64(s.MovementCount)))
	w := table(e, "DÍA", "ENTRADAS", "SALIDAS")
	for _, d := range s.MovementsByDay {
		row(w, d.Date, e.fmt.Number(int64(d.Entries)), e.fmt.Number(int64(d.Exits)))
	}
	_ = w.Flush()
}

// reportColumns columnas de la tabla por variante, en el orden de las claves JSON de las filas.
var reportColumns = map[report.Kind][]string{
	report.KindStock:          {"code", "description", "category", "brand", "stock", "min_stock", "status", "total_value"},
	report.KindLowStock:       {"code", "description", "category", "brand", "stock", "min_stock", "status", "total_value"},
	report.KindKardex:         {"date", "product", "type", "quantity", "user", "detail"},
	report.KindInventoryValue: {"code", "description", "category", "stock", "purchase_value", "sale_value", "potential_profit"},
}

func renderReport(e *env, doc *client.ReportDocument) {
	fmt.Fprintln(e.out, doc.Title)
	fmt.Fprintf(e.out, "Generado: %s\n\n", format.DateTime(doc.GeneratedAt))

	keys := make([]string, 0, len(doc.Summary))
	for k := range doc.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(e.out, "%s: %s\n", k, cell(e, doc.Summary[k]))
	}
	fmt.Fprintln(e.out)

	if len(doc.Rows) == 0 {
		fmt.Fprintln(e.out, "Sin datos para los filtros indicados")
		return
	}
	cols := reportColumns[doc.Type]
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	w := table(e, header...)
	for _, r := range doc.Rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = cell(e, r[c])
		}
		row(w, vals...)
	}
	_ = w.Flush()
}

// cell formatea un valor JSON genérico. Los decimales llegan como string.
func cell(e *env, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == float64(int64(x)) {
			return e.fmt.Number(int64(x))
		}
		return e.fmt.Decimal(decimal.NewFromFloat(x))
	case string:
		if d, err := decimal.NewFromString(x); err == nil && strings.Contains(x, ".") {
			return e.fmt.Decimal(d)
		}
		return format.Truncate(x, 40)
	case map[string]any:
		return fmt.Sprintf("%v - %v", x["start"], x["end"])
	default:
		return fmt.Sprint(x)
	}
}

func renderUsers(e *env, items []dto.UserResponse) {
	if len(items) == 0 {
		fmt.Fprintln(e.out, "No hay usuarios")
		return
	}
	w := table(e, "ID", "NOMBRE", "EMAIL", "ROL", "ESTADO", "REGISTRO", "MOVIMIENTOS")
	for _, u := range items {
		row(w,
			fmt.Sprint(u.ID),
			u.Name,
			u.Email,
			u.Role,
			u.Status,
			format.Date(u.RegisteredAt),
			e.fmt.Number(int64(u.MovementCount)),
		)
	}
	_ = w.Flush()
}

func renderUserStats(e *env, s *dto.UserStatsResponse) {
	w := table(e, "MÉTRICA", "VALOR")
	row(w, "Total", e.fmt.Number(int64(s.Total)))
	row(w, "Activos", e.fmt.Number(int64(s.Active)))
	row(w, "Inactivos", e.fmt.Number(int64(s.Inactive)))
	row(w, "Superadmins", e.fmt.Number(int64(s.SuperAdmins)))
	row(w, "Admins", e.fmt.Number(int64(s.Admins)))
	row(w, "Empleados", e.fmt.Number(int64(s.Employees)))
	row(w, "Registrados este mes", e.fmt.Number(int64(s.RegisteredThisMonth)))
	_ = w.Flush()
}

func renderDashboard(e *env, d *dto.DashboardSummaryDTO) {
	fmt.Fprintln(e.out, d.DateLabel)
	w := table(e, "MÉTRICA", "VALOR")
	row(w, "Productos", e.fmt.Number(int64(d.TotalProducts)))
	row(w, "Stock bajo", e.fmt.Number(int64(d.LowStockProducts)))
	row(w, "Stock crítico", e.fmt.Number(int64(d.CriticalProducts)))
	row(w, "Valor de venta", e.fmt.Currency(d.TotalValue, "$"))
	row(w, "Costo", e.fmt.Currency(d.TotalCost, "$"))
	row(w, "Entradas hoy", e.fmt.Number(int64(d.TodayEntries)))
	row(w, "Salidas hoy", e.fmt.Number(int64(d.TodayExits)))
	row(w, "Tendencia salidas", e.fmt.Percent(d.ExitsTrend))
	_ = w.Flush()

	if len(d.TopCategories) > 0 {
		fmt.Fprintln(e.out)
		w = table(e, "CATEGORÍA", "PRODUCTOS", "VALOR", "%")
		for _, c := range d.TopCategories {
			row(w, c.Name, e.fmt.Number(int64(c.Count)), e.fmt.Currency(c.Value, "$"), e.fmt.Percent(c.Percentage))
		}
		_ = w.Flush()
	}
	if len(d.RecentMovements) > 0 {
		fmt.Fprintln(e.out, "\nÚltimos movimientos")
		renderMovements(e, d.RecentMovements)
	}
}
