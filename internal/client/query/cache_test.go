package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyNotifier struct {
	ok   []string
	errs []string
}

func (s *spyNotifier) Success(msg string) { s.ok = append(s.ok, msg) }
func (s *spyNotifier) Error(msg string)   { s.errs = append(s.errs, msg) }

func counter(n *int, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*n++
		return value, nil
	}
}

func TestFetch_SirveFrescoYRefrescaVencido(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	c := New(nil).WithClock(func() time.Time { return now })
	calls := 0

	v, err := Fetch(context.Background(), c, "products/1/7", 5*time.Minute, counter(&calls, "a"))
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	now = now.Add(4 * time.Minute)
	v, err = Fetch(context.Background(), c, "products/1/7", 5*time.Minute, counter(&calls, "b"))
	require.NoError(t, err)
	assert.Equal(t, "a", v, "dentro de la ventana se usa la caché")
	assert.Equal(t, 1, calls)

	now = now.Add(2 * time.Minute)
	v, err = Fetch(context.Background(), c, "products/1/7", 5*time.Minute, counter(&calls, "b"))
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, calls)
}

func TestFetch_ErrorNoSeCachea(t *testing.T) {
	c := New(nil)
	boom := errors.New("red caída")

	_, err := Fetch(context.Background(), c, "brands/1", time.Minute, func(context.Context) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestFetch_InvalidadoDuranteLaLecturaNoSeGuarda(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	v, err := Fetch(ctx, c, "kardex/1/7/movements", time.Minute, func(context.Context) (string, error) {
		c.Invalidate("kardex")
		return "viejo", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "viejo", v, "quien pidió recibe el resultado igual")
	assert.Equal(t, 0, c.Len())

	calls := 0
	v, err = Fetch(ctx, c, "kardex/1/7/movements", time.Minute, counter(&calls, "nuevo"))
	require.NoError(t, err)
	assert.Equal(t, "nuevo", v)
	assert.Equal(t, 1, calls)

	_, err = Fetch(ctx, c, "products/1/7", time.Minute, func(context.Context) (string, error) {
		c.Invalidate("users")
		return "p", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len(), "otro prefijo no afecta la escritura")
}

func TestInvalidate_PorPrefijo(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	calls := 0
	for _, k := range []string{"products/1/7", "products/1/7/search/martillo", "productsx/1", "kardex/1/7"} {
		_, err := Fetch(ctx, c, k, time.Minute, counter(&calls, k))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Invalidate("products"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Invalidate("kardex", "reports"))
}

func TestMutate_ExitoInvalidaYNotifica(t *testing.T) {
	spy := &spyNotifier{}
	c := New(spy)
	ctx := context.Background()
	calls := 0
	_, _ = Fetch(ctx, c, Key("kardex", 1, 7), time.Minute, counter(&calls, "k"))
	_, _ = Fetch(ctx, c, Key("products", 1, 7), time.Minute, counter(&calls, "p"))
	_, _ = Fetch(ctx, c, Key("users", 1, 7), time.Minute, counter(&calls, "u"))

	m := Mutation{Name: "movement.create", Invalidates: []string{"kardex", "products", "reports"}, Success: "Movimiento registrado"}
	var pendingDuring bool
	v, err := Mutate(ctx, c, m, func(context.Context) (int, error) {
		pendingDuring = c.Pending("movement.create")
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, pendingDuring)
	assert.False(t, c.Pending("movement.create"))
	assert.Equal(t, 1, c.Len(), "solo queda users")
	assert.Equal(t, []string{"Movimiento registrado"}, spy.ok)
}

func TestMutate_ErrorNotificaYConservaCache(t *testing.T) {
	spy := &spyNotifier{}
	c := New(spy)
	ctx := context.Background()
	calls := 0
	_, _ = Fetch(ctx, c, Key("products", 1, 7), time.Minute, counter(&calls, "p"))

	_, err := Mutate(ctx, c, Mutation{Name: "product.delete", Invalidates: []string{"products"}, Success: "ok"},
		func(context.Context) (struct{}, error) {
			return struct{}{}, errors.New("el recurso está en uso")
		})
	require.Error(t, err)
	assert.Equal(t, []string{"el recurso está en uso"}, spy.errs)
	assert.Empty(t, spy.ok)
	assert.Equal(t, 1, c.Len())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "La operación tardó demasiado, intente nuevamente", Message(context.DeadlineExceeded))
	assert.Equal(t, "primera", Message(errors.New("primera\nsegunda")))
}
