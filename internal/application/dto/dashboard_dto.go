package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	TotalProducts    int             `json:"total_products"`
	LowStockProducts int             `json:"low_stock_products"`
	CriticalProducts int             `json:"critical_products"`
	TotalValue       decimal.Decimal `json:"total_value"`
	TotalCost        decimal.Decimal `json:"total_cost"`

	// Unidades del día actual y variación de salidas contra ayer (%).
	TodayEntries int     `json:"today_entries"`
	TodayExits   int     `json:"today_exits"`
	ExitsTrend   float64 `json:"exits_trend"`

	TopCategories   []CategoryStatDTO  `json:"top_categories"`
	RecentMovements []MovementResponse `json:"recent_movements"`
	Chart           []DayMovements     `json:"chart"` // últimos 7 días, uno por día

	DateLabel string `json:"date_label"` // ej: "Junio 2024"
}

// CategoryStatDTO participación de una categoría en el valor del inventario.
type CategoryStatDTO struct {
	Name       string          `json:"name"`
	Count      int             `json:"count"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}
