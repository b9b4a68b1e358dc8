// Package report arma los reportes de stock, stock bajo, kardex e inventario valorado a partir
// de los datos ya leídos, y delega el renderizado (PDF, CSV, XLSX) a adaptadores.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/inventory"
)

// Kind tipo de reporte.
type Kind string

const (
	KindStock          Kind = "stock"
	KindLowStock       Kind = "low-stock"
	KindKardex         Kind = "kardex"
	KindInventoryValue Kind = "inventory-value"
)

// ErrUnsupportedReport variante de reporte o formato que no se sabe renderizar.
var ErrUnsupportedReport = fmt.Errorf("%w: tipo de reporte no soportado", domain.ErrInvalidInput)

// ParseKind acepta los nombres canónicos y los alias en español del panel.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stock", "stock-actual":
		return KindStock, nil
	case "low-stock", "stock-bajo":
		return KindLowStock, nil
	case "kardex", "kardex-general", "movimientos-periodo":
		return KindKardex, nil
	case "inventory-value", "inventario-valorado":
		return KindInventoryValue, nil
	default:
		return "", ErrUnsupportedReport
	}
}

// Title título visible del reporte.
func (k Kind) Title() string {
	switch k {
	case KindStock:
		return "Reporte de Stock Actual"
	case KindLowStock:
		return "Reporte de Stock Bajo"
	case KindKardex:
		return "Reporte de Kardex"
	case KindInventoryValue:
		return "Reporte de Inventario Valorado"
	default:
		return "Reporte"
	}
}

// Filters filtros de los reportes. Los campos vacíos no filtran; cada builder usa los que le aplican.
type Filters struct {
	Search       string `json:"search,omitempty" query:"search"`
	CategoryID   int64  `json:"category_id,omitempty" query:"category_id"`
	BrandID      int64  `json:"brand_id,omitempty" query:"brand_id"`
	LowStockOnly bool   `json:"low_stock_only,omitempty" query:"low_stock_only"`
	StartDate    string `json:"start_date,omitempty" query:"start_date"` // YYYY-MM-DD, inclusivo
	EndDate      string `json:"end_date,omitempty" query:"end_date"`     // YYYY-MM-DD, inclusivo
	MovementType string `json:"movement_type,omitempty" query:"movement_type"`
	ProductID    int64  `json:"product_id,omitempty" query:"product_id"`
}

// Report es la unión cerrada de reportes: *StockReport, *KardexReport, *InventoryValueReport.
// Los renderizadores hacen type switch sobre las tres variantes.
type Report interface {
	Kind() Kind
	Meta() Header
	sealed()
}

// Header datos comunes a todas las variantes.
type Header struct {
	Type        Kind      `json:"type"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Filters     Filters   `json:"filters"`
}

func newHeader(k Kind, f Filters, now time.Time) Header {
	return Header{Type: k, Title: k.Title(), GeneratedAt: now, Filters: f}
}

// ProductRow fila de producto de los reportes de stock.
type ProductRow struct {
	ID            int64            `json:"id"`
	Code          string           `json:"code"`
	Description   string           `json:"description"`
	CategoryID    int64            `json:"category_id"`
	Category      string           `json:"category"`
	BrandID       int64            `json:"brand_id"`
	Brand         string           `json:"brand"`
	Stock         int              `json:"stock"`
	MinStock      int              `json:"min_stock"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	TotalValue    decimal.Decimal  `json:"total_value"` // stock × precio de venta
	Status        inventory.Status `json:"status"`
}

// StockSummary resumen de los reportes de stock y stock bajo.
type StockSummary struct {
	TotalProducts      int             `json:"total_products"`
	TotalValue         decimal.Decimal `json:"total_value"`
	LowStockProducts   int             `json:"low_stock_products"`
	CriticalProducts   int             `json:"critical_products"`
	OutOfStockProducts int             `json:"out_of_stock_products"`
	AverageStock       decimal.Decimal `json:"average_stock"`
}

// StockReport variante para KindStock y KindLowStock.
type StockReport struct {
	Header
	Summary StockSummary `json:"summary"`
	Rows    []ProductRow `json:"data"`
}

func (r *StockReport) Kind() Kind   { return r.Type }
func (r *StockReport) Meta() Header { return r.Header }
func (*StockReport) sealed()        {}

// MovementRow fila de movimiento del reporte de kardex.
type MovementRow struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	ProductID int64     `json:"product_id"`
	Product   string    `json:"product"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	User      string    `json:"user"`
	Detail    string    `json:"detail"`
}

// Period rango de fechas pedido, tal cual llegó en los filtros.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// KardexSummary resumen del reporte de kardex.
type KardexSummary struct {
	TotalMovements int    `json:"total_movements"`
	TotalEntries   int    `json:"total_entries"`
	TotalExits     int    `json:"total_exits"`
	Period         Period `json:"period"`
}

// KardexReport variante para KindKardex. Stats son las estadísticas de los últimos 30 días.
type KardexReport struct {
	Header
	Summary KardexSummary    `json:"summary"`
	Rows    []MovementRow    `json:"data"`
	Stats   *dto.KardexStats `json:"stats,omitempty"`
}

func (r *KardexReport) Kind() Kind   { return r.Type }
func (r *KardexReport) Meta() Header { return r.Header }
func (*KardexReport) sealed()        {}

// ValueRow fila del inventario valorado.
type ValueRow struct {
	ProductRow
	PurchaseValue   decimal.Decimal `json:"purchase_value"`   // stock × precio de compra
	SaleValue       decimal.Decimal `json:"sale_value"`       // stock × precio de venta
	PotentialProfit decimal.Decimal `json:"potential_profit"` // SaleValue − PurchaseValue
}

// CategoryBreakdown agregado por categoría del inventario valorado.
type CategoryBreakdown struct {
	Name       string          `json:"name"`
	Products   []ValueRow      `json:"products"`
	TotalValue decimal.Decimal `json:"total_value"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Count      int             `json:"count"`
}

// InventoryValueSummary resumen del inventario valorado.
type InventoryValueSummary struct {
	TotalProducts        int             `json:"total_products"`
	TotalValueCost       decimal.Decimal `json:"total_value_cost"`
	TotalValueSale       decimal.Decimal `json:"total_value_sale"`
	TotalPotentialProfit decimal.Decimal `json:"total_potential_profit"`
	AverageValue         decimal.Decimal `json:"average_value"`
}

// InventoryValueReport variante para KindInventoryValue.
type InventoryValueReport struct {
	Header
	Summary           InventoryValueSummary `json:"summary"`
	Rows              []ValueRow            `json:"data"`
	CategoryBreakdown []CategoryBreakdown   `json:"category_breakdown"`
}

func (r *InventoryValueReport) Kind() Kind   { return r.Type }
func (r *InventoryValueReport) Meta() Header { return r.Header }
func (*InventoryValueReport) sealed()        {}
