// Package query cachea las lecturas de la API con una ventana de frescura por clave y
// ejecuta mutaciones que invalidan las claves de las entidades afectadas.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultSize cantidad máxima de claves en memoria.
	DefaultSize = 256
	// retention vida máxima de una entrada aunque nadie la invalide.
	retention = 30 * time.Minute
)

// Notifier muestra el resultado de una mutación al usuario (equivalente a un toast).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier descarta las notificaciones.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

type entry struct {
	value     any
	fetchedAt time.Time
	ttl       time.Duration
}

// Cache resultados por clave. Las claves son jerárquicas: "products/3/11", "kardex/3/11/stats/30".
type Cache struct {
	lru    *expirable.LRU[string, entry]
	notify Notifier
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]int
	// gen avanza con cada Invalidate; invalidated guarda la última generación de cada prefijo.
	gen         uint64
	invalidated map[string]uint64
}

// New construye la caché. notify nil descarta las notificaciones.
func New(notify Notifier) *Cache {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Cache{
		lru:         expirable.NewLRU[string, entry](DefaultSize, nil, retention),
		notify:      notify,
		now:         time.Now,
		pending:     make(map[string]int),
		invalidated: make(map[string]uint64),
	}
}

// WithClock reemplaza el reloj usado para la frescura (tests).
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Key arma una clave uniendo las partes con "/".
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "/")
}

// Fetch devuelve el valor cacheado si sigue fresco; si no, llama a fn y guarda el resultado.
// Los errores de fn se devuelven sin reintentar y no tocan la entrada anterior. Si la clave se
// invalida mientras fn está en curso, el resultado se devuelve pero no se guarda.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if e, ok := c.lru.Get(key); ok && c.now().Sub(e.fetchedAt) < e.ttl {
		if v, ok := e.value.(T); ok {
			return v, nil
		}
	}
	started := c.generation()
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	if !c.invalidatedSince(key, started) {
		c.lru.Add(key, entry{value: v, fetchedAt: c.now(), ttl: ttl})
	}
	c.mu.Unlock()
	return v, nil
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// invalidatedSince informa si la clave o alguno de sus prefijos se invalidó después de gen.
// Requiere c.mu.
func (c *Cache) invalidatedSince(key string, gen uint64) bool {
	prefix := key
	for {
		if c.invalidated[prefix] > gen {
			return true
		}
		i := strings.LastIndexByte(prefix, '/')
		if i < 0 {
			return false
		}
		prefix = prefix[:i]
	}
}

// Invalidate descarta las claves iguales a cada prefijo o que cuelgan de él. Devuelve cuántas borró.
func (c *Cache) Invalidate(prefixes ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, p := range prefixes {
		c.invalidated[p] = c.gen
	}

	removed := 0
	for _, key := range c.lru.Keys() {
		for _, p := range prefixes {
			if key == p || strings.HasPrefix(key, p+"/") {
				if c.lru.Remove(key) {
					removed++
				}
				break
			}
		}
	}
	return removed
}

// Notify devuelve el notificador configurado.
func (c *Cache) Notify() Notifier { return c.notify }

// Len cantidad de claves cacheadas.
func (c *Cache) Len() int { return c.lru.Len() }

// Mutation describe una escritura: las entidades que invalida y el mensaje de éxito.
type Mutation struct {
	Name        string
	Invalidates []string
	Success     string
}

// Mutate ejecuta fn marcando la mutación como pendiente. Si termina bien invalida los prefijos
// declarados y notifica el éxito; si falla notifica el mensaje del error. No reintenta.
func Mutate[T any](ctx context.Context, c *Cache, m Mutation, fn func(context.Context) (T, error)) (T, error) {
	c.begin(m.Name)
	defer c.end(m.Name)

	v, err := fn(ctx)
	if err != nil {
		c.notify.Error(Message(err))
		var zero T
		return zero, err
	}
	c.Invalidate(m.Invalidates...)
	if m.Success != "" {
		c.notify.Success(m.Success)
	}
	return v, nil
}

// Pending informa si hay una mutación con ese nombre en curso.
func (c *Cache) Pending(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[name] > 0
}

func (c *Cache) begin(name string) {
	c.mu.Lock()
	c.pending[name]++
	c.mu.Unlock()
}

func (c *Cache) end(name string) {
	c.mu.Lock()
	if c.pending[name]--; c.pending[name] <= 0 {
		delete(c.pending, name)
	}
	c.mu.Unlock()
}

// Message texto de una línea para mostrar un error al usuario.
func Message(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "La operación tardó demasiado, intente nuevamente"
	case errors.Is(err, context.Canceled):
		return "Operación cancelada"
	}
	msg := strings.TrimSpace(err.Error())
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if msg == "" {
		return "Error inesperado"
	}
	return msg
}
