package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (tabla usuarios).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, id_empresa, COALESCE(idauth::text, ''), nombres, correo, tipouser,
	COALESCE(tipodoc, ''), COALESCE(nro_doc, ''), COALESCE(telefono, ''), COALESCE(direccion, ''),
	estado, fecharegistro`

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.CompanyID, &u.AuthID, &u.Name, &u.Email, &u.Role,
		&u.DocType, &u.DocNumber, &u.Phone, &u.Address, &u.Status, &u.RegisteredAt)
}

// Create persiste un nuevo usuario y completa u.ID.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO usuarios (id_empresa, idauth, nombres, correo, tipouser, tipodoc, nro_doc, telefono,
			direccion, estado, fecharegistro)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		u.CompanyID, nullIfEmpty(u.AuthID), u.Name, strings.ToLower(u.Email), u.Role,
		nullIfEmpty(u.DocType), nullIfEmpty(u.DocNumber), nullIfEmpty(u.Phone), nullIfEmpty(u.Address),
		u.Status, u.RegisteredAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id)
}

// GetByAuthID obtiene el perfil asociado a una credencial.
func (r *UserRepo) GetByAuthID(ctx context.Context, authID string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM usuarios WHERE idauth::text = $1`, authID)
}

// GetByEmail obtiene un usuario por correo (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM usuarios WHERE lower(correo) = lower($1)`, email)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := scanUser(r.q.QueryRow(ctx, query, arg), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Update actualiza los datos de perfil y rol. El estado se cambia con SetStatus.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE usuarios SET nombres = $2, correo = $3, tipouser = $4, tipodoc = $5, nro_doc = $6,
			telefono = $7, direccion = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		u.ID, u.Name, strings.ToLower(u.Email), u.Role, nullIfEmpty(u.DocType), nullIfEmpty(u.DocNumber),
		nullIfEmpty(u.Phone), nullIfEmpty(u.Address),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetStatus cambia el estado (activo, inactivo, eliminado).
func (r *UserRepo) SetStatus(ctx context.Context, id int64, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE usuarios SET estado = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List devuelve los usuarios de la empresa aplicando los filtros, más recientes primero.
func (r *UserRepo) List(ctx context.Context, companyID int64, f repository.UserFilter) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id_empresa = $1`
	args := []any{companyID}
	pos := 2
	if !f.IncludeDeleted && f.Status != entity.UserDeleted {
		query += fmt.Sprintf(" AND estado <> $%d", pos)
		args = append(args, entity.UserDeleted)
		pos++
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		query += fmt.Sprintf(" AND (nombres ILIKE $%d OR correo ILIKE $%d)", pos, pos)
		args = append(args, likePattern(s))
		pos++
	}
	if f.Role != "" {
		query += fmt.Sprintf(" AND tipouser = $%d", pos)
		args = append(args, f.Role)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND estado = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND fecharegistro >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND fecharegistro <= $%d", pos)
		args = append(args, *f.To)
	}
	query += " ORDER BY fecharegistro DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// Stats cuenta los usuarios no eliminados de la empresa por estado y rol.
func (r *UserRepo) Stats(ctx context.Context, companyID int64, monthStart time.Time) (*repository.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE estado = 'activo'),
			COUNT(*) FILTER (WHERE estado = 'inactivo'),
			COUNT(*) FILTER (WHERE tipouser = 'superadmin'),
			COUNT(*) FILTER (WHERE tipouser = 'admin'),
			COUNT(*) FILTER (WHERE tipouser = 'empleado'),
			COUNT(*) FILTER (WHERE fecharegistro >= $2)
		FROM usuarios
		WHERE id_empresa = $1 AND estado <> 'eliminado'`
	var s repository.UserStats
	err := r.q.QueryRow(ctx, query, companyID, monthStart).Scan(
		&s.Total, &s.Active, &s.Inactive, &s.SuperAdmins, &s.Admins, &s.Employees, &s.RegisteredThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &s, nil
}
