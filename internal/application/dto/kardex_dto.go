package dto

import "time"

// CreateMovementRequest body para POST /api/kardex.
type CreateMovementRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required,oneof=entrada salida"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Detail    string `json:"detail" validate:"max=500"`
}

// MovementResponse salida de un movimiento de kardex.
type MovementResponse struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	Product      string    `json:"product,omitempty"`
	UserID       int64     `json:"user_id,omitempty"`
	User         string    `json:"user,omitempty"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Detail       string    `json:"detail,omitempty"`
	Date         time.Time `json:"date"`
	Status       string    `json:"status"`
	CurrentStock *int      `json:"current_stock,omitempty"`
}

// MovementSearchQuery filtros de GET /api/kardex/search (fechas YYYY-MM-DD).
type MovementSearchQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Type      string `query:"type" validate:"omitempty,oneof=all entrada salida"`
	ProductID int64  `query:"product_id" validate:"gte=0"`
	UserID    int64  `query:"user_id" validate:"gte=0"`
	Limit     int    `query:"limit"`
	Offset    int    `query:"offset"`
}

// DayQuantity cantidad acumulada en un día.
type DayQuantity struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Quantity int    `json:"quantity"`
}

// DayMovements entradas y salidas acumuladas en un día.
type DayMovements struct {
	Date    string `json:"date"`
	Entries int    `json:"entries"`
	Exits   int    `json:"exits"`
}

// KardexStats estadísticas de movimientos activos en los últimos Days días.
type KardexStats struct {
	Days           int            `json:"days"`
	Since          string         `json:"since"` // primer día incluido (YYYY-MM-DD)
	TotalEntries   int            `json:"total_entries"`
	TotalExits     int            `json:"total_exits"`
	MovementCount  int            `json:"movement_count"`
	EntriesByDay   []DayQuantity  `json:"entries_by_day"`
	ExitsByDay     []DayQuantity  `json:"exits_by_day"`
	MovementsByDay []DayMovements `json:"movements_by_day"`
}
