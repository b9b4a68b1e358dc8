package entity

import "time"

// Roles válidos para User (columna tipouser).
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleEmployee   = "empleado"
)

// Estados de User (columna estado).
const (
	UserActive   = "activo"
	UserInactive = "inactivo"
	UserDeleted  = "eliminado"
)

// ValidRole informa si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleEmployee
}

// User representa un usuario del panel (tabla usuarios). Pertenece a una Company.
type User struct {
	ID           int64
	CompanyID    int64
	AuthID       string // idauth: referencia a la credencial
	Name         string
	Email        string
	Role         string
	DocType      string
	DocNumber    string
	Phone        string // E.164 cuando se pudo normalizar
	Address      string
	Status       string
	RegisteredAt time.Time
}

// IsActive informa si el usuario puede iniciar sesión.
func (u *User) IsActive() bool { return u.Status == UserActive }

// Credential credencial email/contraseña (tabla credenciales). Solo guarda el hash bcrypt.
type Credential struct {
	AuthID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserActivity registro de auditoría de acciones sobre usuarios (tabla actividades_usuarios).
type UserActivity struct {
	ID        int64
	UserID    int64
	Action    string
	Detail    string
	IP        string
	CreatedAt time.Time
}

// Acciones registradas en UserActivity.
const (
	ActivityLogin          = "INICIO_SESION"
	ActivityInvitationSent = "INVITACION_ENVIADA"
	ActivityStatusChanged  = "CAMBIO_ESTADO"
	ActivityDeleted        = "USUARIO_ELIMINADO"
	ActivityPasswordReset  = "RESET_PASSWORD"
)
