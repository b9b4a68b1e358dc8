package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/kardex-admin/internal/application/auth"
	"github.com/jhoicas/kardex-admin/internal/application/inventory"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and auth.AccountTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ auth.AccountTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con los repos de kardex y productos atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	kardexRepo repository.KardexRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewKardexRepository(tx), NewProductRepository(tx))
	})
}

// RunAccounts inicia una transacción con los repos de credenciales y usuarios (registro e invitaciones):
// la credencial y la fila de usuarios se crean juntas o ninguna.
func (r *TxRunner) RunAccounts(ctx context.Context, fn func(
	credRepo repository.CredentialRepository,
	userRepo repository.UserRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewCredentialRepository(tx), NewUserRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
