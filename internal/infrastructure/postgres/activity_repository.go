package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo persiste la auditoría de usuarios (tabla actividades_usuarios).
type ActivityRepo struct {
	q Querier
}

// NewActivityRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityRepository(q Querier) *ActivityRepo {
	return &ActivityRepo{q: q}
}

func (r *ActivityRepo) Create(ctx context.Context, a *entity.UserActivity) error {
	err := r.q.QueryRow(ctx,
		`INSERT INTO actividades_usuarios (usuario_id, accion, detalles, fecha, ip)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.UserID, a.Action, a.Detail, a.CreatedAt, nullIfEmpty(a.IP),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert user activity: %w", err)
	}
	return nil
}

func (r *ActivityRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.UserActivity, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, usuario_id, accion, COALESCE(detalles, ''), COALESCE(ip, ''), fecha
		 FROM actividades_usuarios WHERE usuario_id = $1 ORDER BY fecha DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user activities: %w", err)
	}
	defer rows.Close()
	var list []*entity.UserActivity
	for rows.Next() {
		var a entity.UserActivity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Detail, &a.IP, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user activity: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
