package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex-admin/internal/application/ports"
)

var _ ports.TokenStore = (*TokenStore)(nil)

// TokenStore implementa ports.TokenStore. Las claves expiran solas con el TTL del token.
type TokenStore struct {
	rdb *goredis.Client
}

// NewTokenStore construye el store.
func NewTokenStore(rdb *goredis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func revokedKey(jti string) string { return "auth:revoked:" + jti }
func resetKey(token string) string { return "auth:reset:" + token }

// Revoke marca el jti como revocado hasta que el token habría expirado.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (s *TokenStore) SaveResetToken(ctx context.Context, token, authID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, resetKey(token), authID, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken lee y borra el token en una sola operación (GETDEL): un token sirve una vez.
func (s *TokenStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	authID, err := s.rdb.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return authID, nil
}
