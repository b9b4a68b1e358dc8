package xlsx

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

var now = time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC)

func TestRender_InventarioValorado(t *testing.T) {
	products := []*entity.ProductListing{{
		Product: entity.Product{
			ID: 1, Description: "Martillo", Stock: 3,
			PurchasePrice: decimal.NewFromInt(100), SalePrice: decimal.NewFromInt(150),
		},
		Category: "Herramientas",
	}}
	data, err := NewReportWriter().Render(context.Background(),
		report.BuildInventoryValue(products, report.Filters{}, now), &entity.Company{Name: "Central"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Inventario valorado", summarySheet}, f.GetSheetList())

	header, err := f.GetCellValue("Inventario valorado", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Producto", header)

	profit, err := f.GetCellValue("Inventario valorado", "H2")
	require.NoError(t, err)
	assert.Equal(t, "150", profit)

	label, err := f.GetCellValue(summarySheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Productos", label)
}

func TestRender_ReporteVacio(t *testing.T) {
	data, err := NewReportWriter().Render(context.Background(), report.BuildStock(nil, report.Filters{}, now), &entity.Company{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Estado Stock", rows[0][9])
}

func TestRender_ReporteNil(t *testing.T) {
	_, err := NewReportWriter().Render(context.Background(), nil, &entity.Company{})
	assert.ErrorIs(t, err, report.ErrUnsupportedReport)
}
