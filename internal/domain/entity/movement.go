package entity

import "time"

// MovementType dirección de un movimiento de kardex.
type MovementType string

const (
	MovementIn  MovementType = "entrada"
	MovementOut MovementType = "salida"
)

// Valid informa si el tipo es entrada o salida.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// Inverse devuelve la dirección opuesta (se usa al anular un movimiento).
func (t MovementType) Inverse() MovementType {
	if t == MovementIn {
		return MovementOut
	}
	return MovementIn
}

// MovementStatus estado lógico de un movimiento (columna kardex.estado).
type MovementStatus int

const (
	MovementDeleted MovementStatus = 0
	MovementActive  MovementStatus = 1
)

func (s MovementStatus) String() string {
	if s == MovementActive {
		return "activo"
	}
	return "anulado"
}

// Movement representa una fila del kardex.
type Movement struct {
	ID        int64
	CompanyID int64
	ProductID int64
	UserID    int64
	Type      MovementType
	Quantity  int // siempre positiva; la dirección la da Type
	Detail    string
	Date      time.Time // granularidad de día
	Status    MovementStatus
}

// Active informa si el movimiento no fue anulado.
func (m *Movement) Active() bool { return m.Status == MovementActive }

// MovementListing es la fila desnormalizada de mostrarkardexempresa y de la búsqueda de kardex.
type MovementListing struct {
	Movement
	Product      string // descripción del producto
	UserName     string
	CurrentStock int // stock actual del producto
}
