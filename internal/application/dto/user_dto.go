package dto

import "time"

// CreateUserRequest alta directa de un usuario por un superadmin.
// Si Password viene vacío se genera una contraseña temporal y se envía por correo.
type CreateUserRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=superadmin admin empleado"`
	DocType   string `json:"doc_type" validate:"omitempty,max=20"`
	DocNumber string `json:"doc_number" validate:"omitempty,max=30"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Address   string `json:"address" validate:"omitempty,max=200"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

// UpdateUserRequest actualización parcial de un usuario. El correo no se modifica: es el
// identificador de la credencial.
type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=200"`
	Role      *string `json:"role" validate:"omitempty,oneof=superadmin admin empleado"`
	DocType   *string `json:"doc_type" validate:"omitempty,max=20"`
	DocNumber *string `json:"doc_number" validate:"omitempty,max=30"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address" validate:"omitempty,max=200"`
}

// InviteUserRequest invitación por correo con contraseña temporal.
type InviteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2,max=200"`
	Role  string `json:"role" validate:"required,oneof=admin empleado"`
}

// UserListQuery filtros de GET /api/users (fechas YYYY-MM-DD).
type UserListQuery struct {
	Search         string `query:"search"`
	Role           string `query:"role" validate:"omitempty,oneof=superadmin admin empleado"`
	Status         string `query:"status" validate:"omitempty,oneof=activo inactivo eliminado"`
	RegisteredFrom string `query:"registered_from"`
	RegisteredTo   string `query:"registered_to"`
}

// UserResponse salida de un usuario (sin credenciales).
type UserResponse struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	DocType       string    `json:"doc_type,omitempty"`
	DocNumber     string    `json:"doc_number,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Status        string    `json:"status"`
	Active        bool      `json:"active"`
	RegisteredAt  time.Time `json:"registered_at"`
	MovementCount int       `json:"movement_count"`
}

// UserStatsResponse conteos de usuarios de la empresa.
type UserStatsResponse struct {
	Total               int `json:"total"`
	Active              int `json:"active"`
	Inactive            int `json:"inactive"`
	SuperAdmins         int `json:"superadmins"`
	Admins              int `json:"admins"`
	Employees           int `json:"employees"`
	RegisteredThisMonth int `json:"registered_this_month"`
}

// UserActivityResponse entrada de auditoría.
type UserActivityResponse struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
