package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/inventory"
	"github.com/jhoicas/kardex-admin/pkg/format"
)

// Los builders son puros y totales: filtros vacíos devuelven todo el conjunto y ninguna
// combinación de filtros falla.

// BuildStock arma el reporte de stock actual.
func BuildStock(products []*entity.ProductListing, f Filters, now time.Time) *StockReport {
	rows := productRows(products, f)
	return &StockReport{
		Header:  newHeader(KindStock, f, now),
		Summary: stockSummary(rows),
		Rows:    rows,
	}
}

// BuildLowStock arma el reporte de stock bajo: solo filas con stock <= mínimo, primero las
// agotadas y luego por stock/mínimo ascendente.
func BuildLowStock(products []*entity.ProductListing, f Filters, now time.Time) *StockReport {
	f.LowStockOnly = true
	rows := productRows(products, f)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		aOut, bOut := a.Stock <= 0, b.Stock <= 0
		if aOut != bOut {
			return aOut
		}
		if aOut {
			return false
		}
		// stock/min ascendente sin división: ambos mínimos son > 0 si el stock es > 0 y <= mínimo.
		return a.Stock*b.MinStock < b.Stock*a.MinStock
	})
	return &StockReport{
		Header:  newHeader(KindLowStock, f, now),
		Summary: stockSummary(rows),
		Rows:    rows,
	}
}

// BuildKardex arma el reporte de movimientos con las estadísticas adjuntas.
func BuildKardex(movements []*entity.MovementListing, f Filters, stats *dto.KardexStats, now time.Time) *KardexReport {
	movType := strings.ToLower(strings.TrimSpace(f.MovementType))
	if movType == "all" {
		movType = ""
	}
	start, end := strings.TrimSpace(f.StartDate), strings.TrimSpace(f.EndDate)

	rows := make([]MovementRow, 0, len(movements))
	summary := KardexSummary{Period: Period{Start: f.StartDate, End: f.EndDate}}
	for _, m := range movements {
		if m == nil || !m.Active() {
			continue
		}
		day := format.Day(m.Date)
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		if movType != "" && string(m.Type) != movType {
			continue
		}
		if f.ProductID != 0 && m.ProductID != f.ProductID {
			continue
		}
		rows = append(rows, MovementRow{
			ID:        m.ID,
			Date:      m.Date,
			ProductID: m.ProductID,
			Product:   m.Product,
			Type:      string(m.Type),
			Quantity:  m.Quantity,
			User:      m.UserName,
			Detail:    m.Detail,
		})
		switch m.Type {
		case entity.MovementIn:
			summary.TotalEntries += m.Quantity
		case entity.MovementOut:
			summary.TotalExits += m.Quantity
		}
	}
	summary.TotalMovements = len(rows)

	return &KardexReport{
		Header:  newHeader(KindKardex, f, now),
		Summary: summary,
		Rows:    rows,
		Stats:   stats,
	}
}

// BuildInventoryValue arma el inventario valorado con el desglose por categoría ordenado por nombre.
func BuildInventoryValue(products []*entity.ProductListing, f Filters, now time.Time) *InventoryValueReport {
	base := productRows(products, f)
	rows := make([]ValueRow, 0, len(base))
	groups := make(map[string]*CategoryBreakdown)
	summary := InventoryValueSummary{
		TotalValueCost: decimal.Zero,
		TotalValueSale: decimal.Zero,
	}

	for _, p := range base {
		stock := decimal.NewFromInt(int64(p.Stock))
		row := ValueRow{
			ProductRow:    p,
			PurchaseValue: stock.Mul(p.PurchasePrice),
			SaleValue:     stock.Mul(p.SalePrice),
		}
		row.PotentialProfit = row.SaleValue.Sub(row.PurchaseValue)
		rows = append(rows, row)

		summary.TotalValueCost = summary.TotalValueCost.Add(row.PurchaseValue)
		summary.TotalValueSale = summary.TotalValueSale.Add(row.SaleValue)

		name := p.Category
		if name == "" {
			name = "Sin categoría"
		}
		g, ok := groups[name]
		if !ok {
			g = &CategoryBreakdown{Name: name, TotalValue: decimal.Zero, TotalCost: decimal.Zero}
			groups[name] = g
		}
		g.Products = append(g.Products, row)
		g.TotalValue = g.TotalValue.Add(row.SaleValue)
		g.TotalCost = g.TotalCost.Add(row.PurchaseValue)
		g.Count++
	}

	summary.TotalProducts = len(rows)
	summary.TotalPotentialProfit = summary.TotalValueSale.Sub(summary.TotalValueCost)
	summary.AverageValue = decimal.Zero
	if len(rows) > 0 {
		summary.AverageValue = summary.TotalValueSale.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	breakdown := make([]CategoryBreakdown, 0, len(names))
	for _, name := range names {
		breakdown = append(breakdown, *groups[name])
	}

	return &InventoryValueReport{
		Header:            newHeader(KindInventoryValue, f, now),
		Summary:           summary,
		Rows:              rows,
		CategoryBreakdown: breakdown,
	}
}

// productRows aplica los filtros de producto (categoría, marca, búsqueda, solo stock bajo).
func productRows(products []*entity.ProductListing, f Filters) []ProductRow {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if f.BrandID != 0 && p.BrandID != f.BrandID {
			continue
		}
		if f.LowStockOnly && !inventory.IsLow(p.Stock, p.MinStock) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		rows = append(rows, ProductRow{
			ID:            p.ID,
			Code:          p.InternalCode,
			Description:   p.Description,
			CategoryID:    p.CategoryID,
			Category:      p.Category,
			BrandID:       p.BrandID,
			Brand:         p.Brand,
			Stock:         p.Stock,
			MinStock:      p.MinStock,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
			TotalValue:    decimal.NewFromInt(int64(p.Stock)).Mul(p.SalePrice),
			Status:        inventory.Classify(p.Stock, p.MinStock),
		})
	}
	return rows
}

func stockSummary(rows []ProductRow) StockSummary {
	s := StockSummary{TotalProducts: len(rows), TotalValue: decimal.Zero, AverageStock: decimal.Zero}
	var totalStock int64
	for _, r := range rows {
		s.TotalValue = s.TotalValue.Add(r.TotalValue)
		totalStock += int64(r.Stock)
		if inventory.IsLow(r.Stock, r.MinStock) {
			s.LowStockProducts++
		}
		if r.Status == inventory.StatusCritical {
			s.CriticalProducts++
		}
		if r.Stock <= 0 {
			s.OutOfStockProducts++
		}
	}
	if len(rows) > 0 {
		s.AverageStock = decimal.NewFromInt(totalStock).Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	}
	return s
}
