// Package inventory contiene las reglas de stock del dominio: clasificación contra el mínimo
// y aplicación de movimientos de kardex.
package inventory

import (
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

// Status clasificación del stock de un producto.
type Status string

const (
	StatusOK       Status = "OK"
	StatusLow      Status = "BAJO"
	StatusCritical Status = "CRÍTICO"
)

// Classify aplica la misma regla en listados, reportes y exportaciones:
// CRÍTICO si no hay stock o si stock < minimo/2; BAJO si stock <= minimo; OK en otro caso.
// La comparación con la mitad se hace como 2*stock < minimo para no perder el .5.
func Classify(stock, minimum int) Status {
	switch {
	case stock <= 0 || 2*stock < minimum:
		return StatusCritical
	case stock <= minimum:
		return StatusLow
	default:
		return StatusOK
	}
}

// IsLow informa si el producto está en o por debajo del mínimo.
func IsLow(stock, minimum int) bool {
	return stock <= minimum
}

// Apply devuelve el stock resultante de aplicar un movimiento.
// Falla con *domain.InsufficientStockError si el resultado sería negativo.
func Apply(stock int, t entity.MovementType, quantity int) (int, error) {
	if quantity <= 0 {
		return stock, domain.Invalid("la cantidad debe ser mayor a 0")
	}
	switch t {
	case entity.MovementIn:
		return stock + quantity, nil
	case entity.MovementOut:
		if quantity > stock {
			return stock, &domain.InsufficientStockError{Available: stock, Requested: quantity}
		}
		return stock - quantity, nil
	default:
		return stock, domain.Invalid("tipo de movimiento inválido: " + string(t))
	}
}
