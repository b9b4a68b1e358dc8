package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-admin/internal/domain/entity"
)

// UserFilter filtros de búsqueda de usuarios. Los campos cero no filtran.
type UserFilter struct {
	Search         string // nombres o correo, sin distinguir mayúsculas
	Role           string
	Status         string
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
}

// UserStats conteos agregados de usuarios de una empresa.
type UserStats struct {
	Total               int
	Active              int
	Inactive            int
	SuperAdmins         int
	Admins              int
	Employees           int
	RegisteredThisMonth int
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByAuthID(ctx context.Context, authID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	SetStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, companyID int64, f UserFilter) ([]*entity.User, error)
	Stats(ctx context.Context, companyID int64, monthStart time.Time) (*UserStats, error)
}

// CredentialRepository persiste las credenciales email/contraseña.
type CredentialRepository interface {
	Create(ctx context.Context, c *entity.Credential) error
	GetByEmail(ctx context.Context, email string) (*entity.Credential, error)
	GetByAuthID(ctx context.Context, authID string) (*entity.Credential, error)
	UpdatePassword(ctx context.Context, authID, hash string) error
}

// ActivityRepository persiste la auditoría de acciones sobre usuarios.
type ActivityRepository interface {
	Create(ctx context.Context, a *entity.UserActivity) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.UserActivity, error)
}
