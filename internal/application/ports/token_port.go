package ports

import (
	"context"
	"time"
)

// TokenStore guarda el estado efímero de autenticación: tokens revocados al cerrar sesión y
// tokens de recuperación de contraseña de un solo uso.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	SaveResetToken(ctx context.Context, token, authID string, ttl time.Duration) error
	// ConsumeResetToken devuelve el authID y borra el token. "" si no existe o expiró.
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}
