package csv

import (
	"context"
	stdcsv "encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

var now = time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC)

func TestRender_ReporteVacioSoloEncabezados(t *testing.T) {
	data, err := NewReportWriter().Render(context.Background(), report.BuildStock(nil, report.Filters{}, now), nil)
	require.NoError(t, err)

	records, err := stdcsv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Código", records[0][0])
	assert.Equal(t, "Estado Stock", records[0][9])
}

func TestRender_StockConEstado(t *testing.T) {
	products := []*entity.ProductListing{{
		Product: entity.Product{
			ID: 1, Description: "Clavos, 2\"", Stock: 0, MinStock: 10, InternalCode: "C-1",
			PurchasePrice: decimal.RequireFromString("1.5"), SalePrice: decimal.RequireFromString("2.25"),
		},
		Category: "Ferretería",
		Brand:    "Acme",
	}}
	data, err := NewReportWriter().Render(context.Background(), report.BuildLowStock(products, report.Filters{}, now), nil)
	require.NoError(t, err)

	records, err := stdcsv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"C-1", "Clavos, 2\"", "Ferretería", "Acme", "0", "10", "1.5", "2.25", "0", "CRÍTICO"}, records[1])
}

func TestRender_InventarioValorado(t *testing.T) {
	products := []*entity.ProductListing{{
		Product: entity.Product{
			ID: 1, Description: "Martillo", Stock: 3,
			PurchasePrice: decimal.NewFromInt(100), SalePrice: decimal.NewFromInt(150),
		},
		Category: "Herramientas",
	}}
	data, err := NewReportWriter().Render(context.Background(), report.BuildInventoryValue(products, report.Filters{}, now), nil)
	require.NoError(t, err)

	records, err := stdcsv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Utilidad Potencial", records[0][7])
	assert.Equal(t, []string{"Martillo", "Herramientas", "3", "100", "150", "300", "450", "150"}, records[1])
}

func TestRender_ReporteNil(t *testing.T) {
	_, err := NewReportWriter().Render(context.Background(), nil, nil)
	assert.ErrorIs(t, err, report.ErrUnsupportedReport)
}
