package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo persiste credenciales en la tabla credenciales (ver migrations/).
type CredentialRepo struct {
	q Querier
}

// NewCredentialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCredentialRepository(q Querier) *CredentialRepo {
	return &CredentialRepo{q: q}
}

func (r *CredentialRepo) Create(ctx context.Context, c *entity.Credential) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO credenciales (idauth, correo, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		c.AuthID, strings.ToLower(c.Email), c.PasswordHash, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	return r.get(ctx,
		`SELECT idauth::text, correo, password_hash, created_at FROM credenciales WHERE correo = lower($1)`, email)
}

func (r *CredentialRepo) GetByAuthID(ctx context.Context, authID string) (*entity.Credential, error) {
	return r.get(ctx,
		`SELECT idauth::text, correo, password_hash, created_at FROM credenciales WHERE idauth::text = $1`, authID)
}

func (r *CredentialRepo) get(ctx context.Context, query, arg string) (*entity.Credential, error) {
	var c entity.Credential
	err := r.q.QueryRow(ctx, query, arg).Scan(&c.AuthID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}

func (r *CredentialRepo) UpdatePassword(ctx context.Context, authID, hash string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE credenciales SET password_hash = $2 WHERE idauth::text = $1`, authID, hash)
	if err != nil {
		return fmt.Errorf("update credential password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
