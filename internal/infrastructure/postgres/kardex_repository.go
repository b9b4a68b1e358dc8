package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo implementación sobre PostgreSQL de la tabla kardex (usable con pool o tx).
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const movementColumns = `id, id_empresa, id_producto, id_usuario, tipo, cantidad, COALESCE(detalle, ''), fecha, estado`

func scanMovement(row pgx.Row, m *entity.Movement) error {
	var tipo string
	var estado int
	if err := row.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.UserID, &tipo, &m.Quantity,
		&m.Detail, &m.Date, &estado); err != nil {
		return err
	}
	m.Type = entity.MovementType(tipo)
	m.Status = entity.MovementStatus(estado)
	return nil
}

// Create persiste un movimiento y completa m.ID.
func (r *KardexRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO kardex (id_empresa, id_producto, id_usuario, tipo, cantidad, detalle, fecha, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.CompanyID, m.ProductID, m.UserID, string(m.Type), m.Quantity,
		nullIfEmpty(m.Detail), m.Date, int(m.Status),
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert kardex movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (activo o anulado).
func (r *KardexRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM kardex WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento bloqueando su fila hasta el fin de la transacción.
func (r *KardexRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM kardex WHERE id = $1 FOR UPDATE`, id)
}

func (r *KardexRepo) get(ctx context.Context, query string, id int64) (*entity.Movement, error) {
	var m entity.Movement
	if err := scanMovement(r.q.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kardex movement: %w", err)
	}
	return &m, nil
}

// SetStatus cambia el estado lógico del movimiento (anulación).
func (r *KardexRepo) SetStatus(ctx context.Context, id int64, status entity.MovementStatus) error {
	cmd, err := r.q.Exec(ctx, `UPDATE kardex SET estado = $2 WHERE id = $1`, id, int(status))
	if err != nil {
		return fmt.Errorf("update kardex status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListExtended devuelve los movimientos activos de mostrarkardexempresa, más recientes primero.
func (r *KardexRepo) ListExtended(ctx context.Context, companyID int64) ([]*entity.MovementListing, error) {
	query := `
		SELECT id, id_producto, COALESCE(descripcion, ''), fecha, cantidad, tipo, COALESCE(detalle, ''),
			COALESCE(nombres, ''), COALESCE(stock, 0), estado
		FROM mostrarkardexempresa($1)
		WHERE estado = 1
		ORDER BY fecha DESC, id DESC`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list kardex: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementListing
	for rows.Next() {
		var m entity.MovementListing
		var tipo string
		var estado int
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Product, &m.Date, &m.Quantity, &tipo, &m.Detail,
			&m.UserName, &m.CurrentStock, &estado); err != nil {
			return nil, fmt.Errorf("scan kardex: %w", err)
		}
		m.CompanyID = companyID
		m.Type = entity.MovementType(tipo)
		m.Status = entity.MovementStatus(estado)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Search filtra los movimientos activos de la empresa por rango de fechas, tipo, producto y usuario.
func (r *KardexRepo) Search(ctx context.Context, companyID int64, f repository.MovementFilter) ([]*entity.MovementListing, error) {
	query := `
		SELECT k.id, k.id_empresa, k.id_producto, k.id_usuario, k.tipo, k.cantidad, COALESCE(k.detalle, ''),
			k.fecha, k.estado, p.descripcion, COALESCE(u.nombres, ''), p.stock
		FROM kardex k
		JOIN productos p ON p.id = k.id_producto
		LEFT JOIN usuarios u ON u.id = k.id_usuario
		WHERE k.id_empresa = $1 AND k.estado = 1`
	args := []any{companyID}
	pos := 2
	if f.From != nil {
		query += fmt.Sprintf(" AND k.fecha >= $%d::date", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND k.fecha <= $%d::date", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND k.tipo = $%d", pos)
		args = append(args, string(f.Type))
		pos++
	}
	if f.ProductID > 0 {
		query += fmt.Sprintf(" AND k.id_producto = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.UserID > 0 {
		query += fmt.Sprintf(" AND k.id_usuario = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	query += " ORDER BY k.fecha DESC, k.id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search kardex: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementListing
	for rows.Next() {
		var m entity.MovementListing
		var tipo string
		var estado int
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.UserID, &tipo, &m.Quantity, &m.Detail,
			&m.Date, &estado, &m.Product, &m.UserName, &m.CurrentStock); err != nil {
			return nil, fmt.Errorf("scan kardex: %w", err)
		}
		m.Type = entity.MovementType(tipo)
		m.Status = entity.MovementStatus(estado)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListActiveSince devuelve los movimientos activos con fecha >= since (por día).
func (r *KardexRepo) ListActiveSince(ctx context.Context, companyID int64, since time.Time) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM kardex
		 WHERE id_empresa = $1 AND estado = 1 AND fecha >= $2::date
		 ORDER BY fecha`, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("list kardex since: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := scanMovement(rows, &m); err != nil {
			return nil, fmt.Errorf("scan kardex: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountByUser cuenta los movimientos activos registrados por cada usuario de la empresa.
func (r *KardexRepo) CountByUser(ctx context.Context, companyID int64) (map[int64]int, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id_usuario, COUNT(*) FROM kardex WHERE id_empresa = $1 AND estado = 1 GROUP BY id_usuario`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("count kardex by user: %w", err)
	}
	defer rows.Close()
	counts := make(map[int64]int)
	for rows.Next() {
		var userID int64
		var n int
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, fmt.Errorf("scan kardex count: %w", err)
		}
		counts[userID] = n
	}
	return counts, rows.Err()
}
