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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, id_empresa, idmarca, id_categoria, descripcion, stock, stock_minimo,
	preciocompra, precioventa, COALESCE(codigobarras, ''), COALESCE(codigointerno, '')`

func scanProduct(row pgx.Row, p *entity.Product) error {
	return row.Scan(&p.ID, &p.CompanyID, &p.BrandID, &p.CategoryID, &p.Description, &p.Stock, &p.MinStock,
		&p.PurchasePrice, &p.SalePrice, &p.Barcode, &p.InternalCode)
}

// Create persiste un nuevo producto y completa p.ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO productos (id_empresa, idmarca, id_categoria, descripcion, stock, stock_minimo,
			preciocompra, precioventa, codigobarras, codigointerno)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.CompanyID, p.BrandID, p.CategoryID, p.Description, p.Stock, p.MinStock,
		p.PurchasePrice, p.SalePrice, nullIfEmpty(p.Barcode), nullIfEmpty(p.InternalCode),
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM productos WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM productos WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query string, id int64) (*entity.Product, error) {
	var p entity.Product
	if err := scanProduct(r.q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update actualiza los datos de catálogo. El stock no se toca: solo cambia vía kardex.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE productos SET idmarca = $2, id_categoria = $3, descripcion = $4, stock_minimo = $5,
			preciocompra = $6, precioventa = $7, codigobarras = $8, codigointerno = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.BrandID, p.CategoryID, p.Description, p.MinStock,
		p.PurchasePrice, p.SalePrice, nullIfEmpty(p.Barcode), nullIfEmpty(p.InternalCode),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock escribe el stock calculado por el kardex. Debe llamarse dentro de la misma
// transacción que leyó la fila con GetForUpdate.
func (r *ProductRepo) UpdateStock(ctx context.Context, id int64, stock int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE productos SET stock = $2 WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto por ID. Falla con ErrInUse si tiene movimientos de kardex.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const listingColumns = `id, id_empresa, idmarca, id_categoria, descripcion, stock, stock_minimo,
	preciocompra, precioventa, COALESCE(codigobarras, ''), COALESCE(codigointerno, ''),
	COALESCE(marca, ''), COALESCE(categoria, ''), COALESCE(color, '')`

// List devuelve el listado de mostrarproductos ordenado por descripción.
func (r *ProductRepo) List(ctx context.Context, companyID int64) ([]*entity.ProductListing, error) {
	return r.listing(ctx,
		`SELECT `+listingColumns+` FROM mostrarproductos($1) ORDER BY descripcion`, companyID)
}

// Search devuelve el listado de buscarproductos. Una búsqueda vacía equivale a List.
func (r *ProductRepo) Search(ctx context.Context, companyID int64, query string) ([]*entity.ProductListing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx, companyID)
	}
	return r.listing(ctx,
		`SELECT `+listingColumns+` FROM buscarproductos($1, $2) ORDER BY descripcion`, companyID, query)
}

func (r *ProductRepo) listing(ctx context.Context, query string, args ...any) ([]*entity.ProductListing, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductListing
	for rows.Next() {
		var p entity.ProductListing
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.BrandID, &p.CategoryID, &p.Description, &p.Stock, &p.MinStock,
			&p.PurchasePrice, &p.SalePrice, &p.Barcode, &p.InternalCode,
			&p.Brand, &p.Category, &p.CategoryColor); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
