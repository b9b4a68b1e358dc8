package http

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("fecha"), fiber.StatusBadRequest, "INVALID_INPUT"},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("get: %w", domain.ErrNotFound), fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
		{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{&domain.InsufficientStockError{Available: 2, Requested: 5}, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrInUse, fiber.StatusConflict, "IN_USE"},
		{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
		{errors.New("pool cerrado"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, code := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestLoginLimiter_AgotaYLimpia(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "cada IP tiene su propio cupo")

	now = now.Add(20 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "recupera un intento cada 20s")

	now = now.Add(time.Hour)
	l.Cleanup(10 * time.Minute)
	assert.Equal(t, 0, l.Len())
}
