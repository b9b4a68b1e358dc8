package auth

import (
	"context"

	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

// AccountTxRunner ejecuta fn en una transacción que abarca credencial y usuario: o se crean
// ambos o ninguno.
type AccountTxRunner interface {
	RunAccounts(ctx context.Context, fn func(credRepo repository.CredentialRepository, userRepo repository.UserRepository) error) error
}
