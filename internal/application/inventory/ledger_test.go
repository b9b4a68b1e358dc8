package inventory

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica de commit/rollback
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products        map[int64]*entity.Product
	movements       map[int64]*entity.Movement
	nextMovementID  int64
	failUpdateStock bool
	activeSinceHits int
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{
		products:  make(map[int64]*entity.Product),
		movements: make(map[int64]*entity.Movement),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) clone() *memStore {
	c := *s
	c.products = make(map[int64]*entity.Product, len(s.products))
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	c.movements = make(map[int64]*entity.Movement, len(s.movements))
	for k, v := range s.movements {
		m := *v
		c.movements[k] = &m
	}
	return &c
}

type memTxRunner struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (r *memTxRunner) Run(ctx context.Context, fn func(repository.KardexRepository, repository.ProductRepository) error) error {
	work := r.store.clone()
	if err := fn(&fakeKardexRepo{s: work}, &fakeProductRepo{s: work}); err != nil {
		r.rollbacks++
		return err
	}
	*r.store = *work
	r.commits++
	return nil
}

type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error { return nil }
func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetForUpdate(ctx, id)
}
func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error { return nil }
func (r *fakeProductRepo) UpdateStock(ctx context.Context, id int64, stock int) error {
	if r.s.failUpdateStock {
		return errors.New("conexión perdida")
	}
	r.s.products[id].Stock = stock
	return nil
}
func (r *fakeProductRepo) Delete(ctx context.Context, id int64) error { return nil }
func (r *fakeProductRepo) List(ctx context.Context, companyID int64) ([]*entity.ProductListing, error) {
	return nil, nil
}
func (r *fakeProductRepo) Search(ctx context.Context, companyID int64, q string) ([]*entity.ProductListing, error) {
	return nil, nil
}

type fakeKardexRepo struct{ s *memStore }

func (r *fakeKardexRepo) Create(ctx context.Context, m *entity.Movement) error {
	r.s.nextMovementID++
	m.ID = r.s.nextMovementID
	cp := *m
	r.s.movements[m.ID] = &cp
	return nil
}
func (r *fakeKardexRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetForUpdate(ctx, id)
}
func (r *fakeKardexRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}
func (r *fakeKardexRepo) SetStatus(ctx context.Context, id int64, status entity.MovementStatus) error {
	r.s.movements[id].Status = status
	return nil
}
func (r *fakeKardexRepo) ListExtended(ctx context.Context, companyID int64) ([]*entity.MovementListing, error) {
	return r.Search(ctx, companyID, repository.MovementFilter{})
}
func (r *fakeKardexRepo) Search(ctx context.Context, companyID int64, f repository.MovementFilter) ([]*entity.MovementListing, error) {
	var out []*entity.MovementListing
	for _, m := range r.s.movements {
		if m.CompanyID != companyID || !m.Active() {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		p := r.s.products[m.ProductID]
		out = append(out, &entity.MovementListing{Movement: *m, Product: p.Description, CurrentStock: p.Stock})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r *fakeKardexRepo) ListActiveSince(ctx context.Context, companyID int64, since time.Time) ([]*entity.Movement, error) {
	r.s.activeSinceHits++
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.CompanyID == companyID && m.Active() && !m.Date.Before(since) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}
func (r *fakeKardexRepo) CountByUser(ctx context.Context, companyID int64) (map[int64]int, error) {
	return nil, nil
}

type spyCache struct {
	stored      map[int]*dto.KardexStats
	invalidated []int64
}

func (c *spyCache) Get(_ context.Context, _ int64, days int) (*dto.KardexStats, bool) {
	s, ok := c.stored[days]
	return s, ok
}
func (c *spyCache) Set(_ context.Context, _ int64, days int, s *dto.KardexStats) {
	if c.stored == nil {
		c.stored = make(map[int]*dto.KardexStats)
	}
	c.stored[days] = s
}
func (c *spyCache) Invalidate(_ context.Context, companyID int64) {
	c.invalidated = append(c.invalidated, companyID)
	c.stored = nil
}

type spyPublisher struct {
	events []ports.MovementEvent
	err    error
}

func (p *spyPublisher) Publish(_ context.Context, ev ports.MovementEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

const testCompany = int64(1)

var fixedNow = time.Date(2024, time.June, 20, 15, 30, 0, 0, time.UTC)

type ledgerFixture struct {
	store  *memStore
	tx     *memTxRunner
	cache  *spyCache
	events *spyPublisher
	svc    *LedgerService
}

func newFixture(products ...*entity.Product) *ledgerFixture {
	store := newMemStore(products...)
	tx := &memTxRunner{store: store}
	cache := &spyCache{}
	events := &spyPublisher{}
	svc := NewLedgerService(tx, &fakeKardexRepo{s: store}, cache, events, nil).
		WithClock(func() time.Time { return fixedNow })
	return &ledgerFixture{store: store, tx: tx, cache: cache, events: events, svc: svc}
}

func product(id int64, stock, min int) *entity.Product {
	return &entity.Product{ID: id, CompanyID: testCompany, Description: "Tornillo 3/8", Stock: stock, MinStock: min}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_EntradaSumaStock(t *testing.T) {
	f := newFixture(product(1, 10, 5))

	res, err := f.svc.CreateMovement(context.Background(), testCompany, 9,
		dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 5, Detail: " compra "})
	require.NoError(t, err)

	assert.Equal(t, 15, f.store.products[1].Stock)
	require.NotNil(t, res.CurrentStock)
	assert.Equal(t, 15, *res.CurrentStock)
	assert.Equal(t, "activo", res.Status)
	assert.Equal(t, "compra", res.Detail)
	assert.Equal(t, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), res.Date)
	assert.Len(t, f.store.movements, 1)
	assert.Equal(t, []int64{testCompany}, f.cache.invalidated)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, ports.EventMovementCreated, f.events.events[0].Type)
	assert.False(t, f.events.events[0].LowStock)
}

func TestCreateMovement_SalidasHastaAgotar(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	ctx := context.Background()

	_, err := f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, f.store.products[1].Stock)

	_, err = f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.products[1].Stock)
	assert.True(t, f.events.events[1].LowStock)

	_, err = f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, "Stock insuficiente. Stock actual: 2", err.Error())

	assert.Equal(t, 2, f.store.products[1].Stock, "una salida rechazada no modifica el stock")
	assert.Len(t, f.store.movements, 2)
	assert.Equal(t, 1, f.tx.rollbacks)
}

func TestCreateMovement_Validaciones(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	cases := []struct {
		name string
		in   dto.CreateMovementRequest
	}{
		{"cantidad cero", dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 0}},
		{"cantidad negativa", dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: -2}},
		{"tipo desconocido", dto.CreateMovementRequest{ProductID: 1, Type: "ajuste", Quantity: 1}},
		{"sin producto", dto.CreateMovementRequest{Type: "entrada", Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateMovement(context.Background(), testCompany, 9, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 10, f.store.products[1].Stock)
	assert.Empty(t, f.store.movements)
}

func TestCreateMovement_ProductoDeOtraEmpresa(t *testing.T) {
	p := product(1, 10, 3)
	p.CompanyID = 99
	f := newFixture(p)

	_, err := f.svc.CreateMovement(context.Background(), testCompany, 9,
		dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateMovement_ProductoInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateMovement(context.Background(), testCompany, 9,
		dto.CreateMovementRequest{ProductID: 42, Type: "entrada", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateMovement_FalloAlActualizarStockRevierte(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	f.store.failUpdateStock = true

	_, err := f.svc.CreateMovement(context.Background(), testCompany, 9,
		dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 4})
	require.Error(t, err)

	assert.Empty(t, f.store.movements, "el movimiento no debe quedar sin su cambio de stock")
	assert.Equal(t, 10, f.store.products[1].Stock)
	assert.Empty(t, f.events.events)
	assert.Empty(t, f.cache.invalidated)
}

func TestCreateMovement_FalloDePublicacionNoRevierte(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	f.events.err = errors.New("broker caído")

	_, err := f.svc.CreateMovement(context.Background(), testCompany, 9,
		dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 14, f.store.products[1].Stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteMovement_RevierteEntrada(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	ctx := context.Background()

	created, err := f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 15, f.store.products[1].Stock)

	res, err := f.svc.DeleteMovement(ctx, testCompany, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.store.products[1].Stock)
	assert.Equal(t, "anulado", res.Status)
	assert.Equal(t, entity.MovementDeleted, f.store.movements[created.ID].Status)
	assert.Equal(t, ports.EventMovementDeleted, f.events.events[1].Type)
	assert.Equal(t, "salida", f.events.events[1].Direction)

	_, err = f.svc.DeleteMovement(ctx, testCompany, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "anular dos veces no vuelve a tocar el stock")
	assert.Equal(t, 10, f.store.products[1].Stock)
}

func TestDeleteMovement_RevierteSalida(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	ctx := context.Background()

	created, err := f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 4})
	require.NoError(t, err)

	_, err = f.svc.DeleteMovement(ctx, testCompany, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.store.products[1].Stock)
}

func TestDeleteMovement_EntradaYaConsumida(t *testing.T) {
	f := newFixture(product(1, 0, 3))
	ctx := context.Background()

	in, err := f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 5})
	require.NoError(t, err)
	_, err = f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 5})
	require.NoError(t, err)

	_, err = f.svc.DeleteMovement(ctx, testCompany, in.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.store.products[1].Stock)
	assert.Equal(t, entity.MovementActive, f.store.movements[in.ID].Status)
}

func TestDeleteMovement_NoEncontrado(t *testing.T) {
	f := newFixture(product(1, 0, 3))
	_, err := f.svc.DeleteMovement(context.Background(), testCompany, 77)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Listados y estadísticas
// ──────────────────────────────────────────────────────────────────────────────

func TestSearchMovements_FiltraPorTipo(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	ctx := context.Background()
	_, _ = f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 5})
	_, _ = f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 2})

	all, err := f.svc.SearchMovements(ctx, testCompany, dto.MovementSearchQuery{Type: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	out, err := f.svc.SearchMovements(ctx, testCompany, dto.MovementSearchQuery{Type: "salida"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Quantity)
	assert.Equal(t, 13, *out[0].CurrentStock)
}

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter(dto.MovementSearchQuery{StartDate: "2024-01-01", EndDate: "2024-01-31", Type: "ENTRADA"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementIn, f.Type)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)

	_, err = buildFilter(dto.MovementSearchQuery{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = buildFilter(dto.MovementSearchQuery{StartDate: "01/02/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummarizeMovements(t *testing.T) {
	since := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC) }
	movs := []*entity.Movement{
		{Type: entity.MovementIn, Quantity: 10, Date: day(5), Status: entity.MovementActive},
		{Type: entity.MovementOut, Quantity: 3, Date: day(2), Status: entity.MovementActive},
		{Type: entity.MovementIn, Quantity: 4, Date: day(2), Status: entity.MovementActive},
		{Type: entity.MovementOut, Quantity: 100, Date: day(3), Status: entity.MovementDeleted},
		{Type: entity.MovementIn, Quantity: 50, Date: time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC), Status: entity.MovementActive},
	}

	stats := SummarizeMovements(movs, since, 30)

	assert.Equal(t, "2024-06-01", stats.Since)
	assert.Equal(t, 14, stats.TotalEntries)
	assert.Equal(t, 3, stats.TotalExits)
	assert.Equal(t, 3, stats.MovementCount)
	assert.Equal(t, []dto.DayQuantity{{Date: "2024-06-02", Quantity: 4}, {Date: "2024-06-05", Quantity: 10}}, stats.EntriesByDay)
	assert.Equal(t, []dto.DayQuantity{{Date: "2024-06-02", Quantity: 3}}, stats.ExitsByDay)
	assert.Equal(t, []dto.DayMovements{
		{Date: "2024-06-02", Entries: 4, Exits: 3},
		{Date: "2024-06-05", Entries: 10},
	}, stats.MovementsByDay)
}

func TestSummarizeMovements_SinMovimientos(t *testing.T) {
	stats := SummarizeMovements(nil, fixedNow, 7)
	assert.Zero(t, stats.MovementCount)
	assert.NotNil(t, stats.EntriesByDay)
	assert.Empty(t, stats.MovementsByDay)
}

func TestGetKardexStats_UsaCacheHastaElProximoMovimiento(t *testing.T) {
	f := newFixture(product(1, 10, 3))
	ctx := context.Background()
	_, err := f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "entrada", Quantity: 5})
	require.NoError(t, err)

	first, err := f.svc.GetKardexStats(ctx, testCompany, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultStatsDays, first.Days)
	assert.Equal(t, 5, first.TotalEntries)

	_, err = f.svc.GetKardexStats(ctx, testCompany, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.activeSinceHits)

	_, err = f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 2})
	require.NoError(t, err)
	second, err := f.svc.GetKardexStats(ctx, testCompany, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.activeSinceHits)
	assert.Equal(t, 2, second.TotalExits)
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 30, clampDays(0))
	assert.Equal(t, 30, clampDays(-4))
	assert.Equal(t, 7, clampDays(7))
	assert.Equal(t, 365, clampDays(1000))
}

func TestCreateMovement_FechaEnZonaLocal(t *testing.T) {
	bsas := time.FixedZone("UTC-3", -3*60*60)
	f := newFixture(product(1, 10, 3))
	f.svc.WithClock(func() time.Time { return time.Date(2024, time.June, 20, 22, 0, 0, 0, bsas) })
	ctx := context.Background()

	res, err := f.svc.CreateMovement(ctx, testCompany, 9, dto.CreateMovementRequest{ProductID: 1, Type: "salida", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), res.Date)

	stats, err := f.svc.GetKardexStats(ctx, testCompany, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-19", stats.Since)
	assert.Equal(t, 3, stats.TotalExits)
}
