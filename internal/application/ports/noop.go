package ports

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
)

// NopStatsCache no cachea nada (sin Redis configurado).
type NopStatsCache struct{}

func (NopStatsCache) Get(context.Context, int64, int) (*dto.KardexStats, bool) { return nil, false }
func (NopStatsCache) Set(context.Context, int64, int, *dto.KardexStats) {}
func (NopStatsCache) Invalidate(context.Context, int64) {}

// NopPublisher descarta los eventos (sin AMQP configurado).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, MovementEvent) error { return nil }

// MemoryTokenStore TokenStore en memoria para desarrollo y tests (sin Redis).
// No comparte estado entre réplicas.
type MemoryTokenStore struct {
	now     func() time.Time
	revoked map[string]time.Time
	resets  map[string]resetEntry
	mu      sync.Mutex
}

type resetEntry struct {
	authID  string
	expires time.Time
}

// NewMemoryTokenStore construye el store en memoria.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		now:     time.Now,
		revoked: make(map[string]time.Time),
		resets:  make(map[string]resetEntry),
	}
}

func (s *MemoryTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = s.now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

func (s *MemoryTokenStore) SaveResetToken(_ context.Context, token, authID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[token] = resetEntry{authID: authID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) ConsumeResetToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.resets[token]
	if !ok {
		return "", nil
	}
	delete(s.resets, token)
	if s.now().After(e.expires) {
		return "", nil
	}
	return e.authID, nil
}
