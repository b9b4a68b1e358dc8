package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/inventory"
)

var reportNow = time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC)

func listing(id int64, desc, category string, stock, min int, buy, sell string) *entity.ProductListing {
	return &entity.ProductListing{
		Product: entity.Product{
			ID:            id,
			CompanyID:     1,
			CategoryID:    id % 2,
			BrandID:       10 + id%3,
			Description:   desc,
			Stock:         stock,
			MinStock:      min,
			PurchasePrice: decimal.RequireFromString(buy),
			SalePrice:     decimal.RequireFromString(sell),
			InternalCode:  "P-" + desc[:1],
		},
		Category: category,
		Brand:    "Acme",
	}
}

func catalog() []*entity.ProductListing {
	return []*entity.ProductListing{
		listing(1, "Martillo", "Herramientas", 10, 5, "100", "150"),
		listing(2, "Clavos", "Ferretería", 0, 20, "1", "2.5"),
		listing(3, "Serrucho", "Herramientas", 2, 5, "80", "120"),
		listing(4, "Tornillos", "Ferretería", 9, 10, "0.5", "1"),
		listing(5, "Pinza", "", 4, 4, "30", "45"),
	}
}

func TestBuildStock_SinFiltrosDevuelveTodo(t *testing.T) {
	r := BuildStock(catalog(), Filters{}, reportNow)

	assert.Equal(t, KindStock, r.Kind())
	assert.Equal(t, "Reporte de Stock Actual", r.Title)
	assert.Len(t, r.Rows, 5)
	assert.Equal(t, 5, r.Summary.TotalProducts)
	// 10×150 + 0 + 2×120 + 9×1 + 4×45
	assert.True(t, decimal.NewFromInt(1929).Equal(r.Summary.TotalValue), r.Summary.TotalValue.String())
	assert.Equal(t, 4, r.Summary.LowStockProducts)
	assert.Equal(t, 2, r.Summary.CriticalProducts)
	assert.Equal(t, 1, r.Summary.OutOfStockProducts)
	assert.Equal(t, "5", r.Summary.AverageStock.String())
}

func TestBuildStock_FiltroBusquedaYCategoria(t *testing.T) {
	r := BuildStock(catalog(), Filters{Search: "HERRA"}, reportNow)
	require.Len(t, r.Rows, 2)

	r = BuildStock(catalog(), Filters{CategoryID: 1, LowStockOnly: true}, reportNow)
	require.Len(t, r.Rows, 2)
	for _, row := range r.Rows {
		assert.LessOrEqual(t, row.Stock, row.MinStock)
	}
}

func TestBuildStock_SinCoincidencias(t *testing.T) {
	r := BuildStock(catalog(), Filters{Search: "no existe"}, reportNow)
	assert.Empty(t, r.Rows)
	assert.Zero(t, r.Summary.TotalProducts)
	assert.True(t, r.Summary.AverageStock.IsZero())
}

func TestBuildLowStock_OrdenYClasificacion(t *testing.T) {
	r := BuildLowStock(catalog(), Filters{}, reportNow)

	assert.Equal(t, KindLowStock, r.Kind())
	require.Len(t, r.Rows, 4)
	for _, row := range r.Rows {
		assert.LessOrEqual(t, row.Stock, row.MinStock)
	}
	// agotado primero; luego 2/5=0.4, 4/4=1 queda último y 9/10=0.9 antes
	assert.Equal(t, "Clavos", r.Rows[0].Description)
	assert.Equal(t, "Serrucho", r.Rows[1].Description)
	assert.Equal(t, "Tornillos", r.Rows[2].Description)
	assert.Equal(t, "Pinza", r.Rows[3].Description)

	assert.Equal(t, inventory.StatusCritical, r.Rows[0].Status)
	assert.Equal(t, inventory.StatusCritical, r.Rows[1].Status)
	assert.Equal(t, inventory.StatusLow, r.Rows[2].Status)
	assert.Equal(t, 2, r.Summary.CriticalProducts)
	assert.Equal(t, 1, r.Summary.OutOfStockProducts)
}

func TestBuildLowStock_EscenarioDeSalidas(t *testing.T) {
	p := listing(7, "Llave", "Herramientas", 7, 5, "10", "20")
	r := BuildLowStock([]*entity.ProductListing{p}, Filters{}, reportNow)
	assert.Empty(t, r.Rows, "stock 7 con mínimo 5 no es stock bajo")

	p.Stock = 2
	r = BuildLowStock([]*entity.ProductListing{p}, Filters{}, reportNow)
	require.Len(t, r.Rows, 1)
	assert.Equal(t, inventory.StatusCritical, r.Rows[0].Status, "2 < 5/2")
}

func TestBuildInventoryValue_UtilidadYDesglose(t *testing.T) {
	r := BuildInventoryValue(catalog(), Filters{}, reportNow)

	require.Len(t, r.Rows, 5)
	for _, row := range r.Rows {
		assert.True(t, row.PotentialProfit.Equal(row.SaleValue.Sub(row.PurchaseValue)))
	}

	sum := decimal.Zero
	names := make([]string, 0, len(r.CategoryBreakdown))
	count := 0
	for _, c := range r.CategoryBreakdown {
		sum = sum.Add(c.TotalValue)
		names = append(names, c.Name)
		count += c.Count
	}
	assert.True(t, sum.Equal(r.Summary.TotalValueSale))
	assert.Equal(t, []string{"Ferretería", "Herramientas", "Sin categoría"}, names)
	assert.Equal(t, 5, count)

	assert.True(t, r.Summary.TotalPotentialProfit.Equal(r.Summary.TotalValueSale.Sub(r.Summary.TotalValueCost)))
	// compra: 1000 + 0 + 160 + 4.5 + 120
	assert.Equal(t, "1284.5", r.Summary.TotalValueCost.String())
}

func TestBuildInventoryValue_Vacio(t *testing.T) {
	r := BuildInventoryValue(nil, Filters{}, reportNow)
	assert.Empty(t, r.Rows)
	assert.Empty(t, r.CategoryBreakdown)
	assert.True(t, r.Summary.AverageValue.IsZero())
}

func movementListing(id int64, day int, t entity.MovementType, qty int, productID int64) *entity.MovementListing {
	return &entity.MovementListing{
		Movement: entity.Movement{
			ID:        id,
			CompanyID: 1,
			ProductID: productID,
			Type:      t,
			Quantity:  qty,
			Date:      time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC),
			Status:    entity.MovementActive,
		},
		Product:  "Martillo",
		UserName: "Ana",
	}
}

func TestBuildKardex_Filtros(t *testing.T) {
	movs := []*entity.MovementListing{
		movementListing(1, 1, entity.MovementIn, 10, 1),
		movementListing(2, 5, entity.MovementOut, 3, 1),
		movementListing(3, 10, entity.MovementOut, 4, 2),
		movementListing(4, 15, entity.MovementIn, 6, 2),
	}

	all := BuildKardex(movs, Filters{MovementType: "all"}, nil, reportNow)
	assert.Equal(t, 4, all.Summary.TotalMovements)
	assert.Equal(t, 16, all.Summary.TotalEntries)
	assert.Equal(t, 7, all.Summary.TotalExits)

	ranged := BuildKardex(movs, Filters{StartDate: "2024-06-05", EndDate: "2024-06-10"}, nil, reportNow)
	assert.Equal(t, 2, ranged.Summary.TotalMovements)
	assert.Equal(t, Period{Start: "2024-06-05", End: "2024-06-10"}, ranged.Summary.Period)

	outs := BuildKardex(movs, Filters{MovementType: "salida", ProductID: 2}, nil, reportNow)
	require.Len(t, outs.Rows, 1)
	assert.Equal(t, int64(3), outs.Rows[0].ID)
	assert.Equal(t, 4, outs.Summary.TotalExits)
	assert.Zero(t, outs.Summary.TotalEntries)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("stock-bajo")
	require.NoError(t, err)
	assert.Equal(t, KindLowStock, k)

	k, err = ParseKind("inventory-value")
	require.NoError(t, err)
	assert.Equal(t, KindInventoryValue, k)

	_, err = ParseKind("ventas")
	assert.ErrorIs(t, err, ErrUnsupportedReport)
}

func TestTableOf_ReporteVacioSoloEncabezados(t *testing.T) {
	table, err := TableOf(BuildStock(nil, Filters{}, reportNow))
	require.NoError(t, err)
	assert.Equal(t, stockHeaders, table.Headers)
	assert.Empty(t, table.Rows)

	_, err = TableOf(nil)
	assert.ErrorIs(t, err, ErrUnsupportedReport)
}

func TestTableOf_Kardex(t *testing.T) {
	r := BuildKardex([]*entity.MovementListing{movementListing(1, 3, entity.MovementOut, 2, 1)}, Filters{}, nil, reportNow)
	table, err := TableOf(r)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []any{"2024-06-03", "Martillo", "SALIDA", 2, "Ana", ""}, table.Rows[0])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "low-stock-report-2024-06-20.csv", FileName(KindLowStock, FormatCSV, reportNow))
}
