package ports

import (
	"context"
	"time"
)

// Tipos de evento de kardex.
const (
	EventMovementCreated = "kardex.movement.created"
	EventMovementDeleted = "kardex.movement.deleted"
)

// MovementEvent notificación publicada después de confirmar un cambio de stock.
type MovementEvent struct {
	Type       string    `json:"type"`
	CompanyID  int64     `json:"company_id"`
	MovementID int64     `json:"movement_id"`
	ProductID  int64     `json:"product_id"`
	UserID     int64     `json:"user_id"`
	Direction  string    `json:"direction"` // entrada | salida aplicada al stock
	Quantity   int       `json:"quantity"`
	StockAfter int       `json:"stock_after"`
	LowStock   bool      `json:"low_stock"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos de dominio hacia otros sistemas. Un fallo de publicación
// nunca revierte la operación que lo originó.
type EventPublisher interface {
	Publish(ctx context.Context, ev MovementEvent) error
}
