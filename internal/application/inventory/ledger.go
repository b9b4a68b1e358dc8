package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	stockrules "github.com/jhoicas/kardex-admin/internal/domain/inventory"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
	"github.com/jhoicas/kardex-admin/pkg/format"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// LedgerService registra y anula movimientos de kardex. Cada operación bloquea la fila del
// producto (SELECT FOR UPDATE), recalcula el stock y confirma movimiento y stock en una sola tx.
type LedgerService struct {
	txRunner   TxRunner
	kardexRepo repository.KardexRepository
	cache      ports.StatsCache
	events     ports.EventPublisher
	log        *logger.Logger
	now        func() time.Time
}

// NewLedgerService construye el servicio. cache y events pueden ser nil.
func NewLedgerService(
	txRunner TxRunner,
	kardexRepo repository.KardexRepository,
	cache ports.StatsCache,
	events ports.EventPublisher,
	log *logger.Logger,
) *LedgerService {
	if cache == nil {
		cache = ports.NopStatsCache{}
	}
	if events == nil {
		events = ports.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerService{
		txRunner:   txRunner,
		kardexRepo: kardexRepo,
		cache:      cache,
		events:     events,
		log:        log.Named("kardex"),
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// CreateMovement registra una entrada o salida y actualiza el stock del producto.
// Una salida mayor al stock disponible falla con *domain.InsufficientStockError y no escribe nada.
func (s *LedgerService) CreateMovement(ctx context.Context, companyID, userID int64, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	movType := entity.MovementType(strings.ToLower(strings.TrimSpace(in.Type)))
	if in.ProductID <= 0 {
		return nil, domain.Invalid("product_id es obligatorio")
	}
	if !movType.Valid() {
		return nil, domain.Invalid("tipo de movimiento inválido: " + in.Type)
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("la cantidad debe ser mayor a 0")
	}

	var (
		created  *entity.Movement
		product  *entity.Product
		newStock int
	)
	err := s.txRunner.Run(ctx, func(kardexRepo repository.KardexRepository, productRepo repository.ProductRepository) error {
		p, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.CompanyID != companyID {
			return domain.ErrForbidden
		}
		stock, err := stockrules.Apply(p.Stock, movType, in.Quantity)
		if err != nil {
			return err
		}
		m := &entity.Movement{
			CompanyID: companyID,
			ProductID: p.ID,
			UserID:    userID,
			Type:      movType,
			Quantity:  in.Quantity,
			Detail:    strings.TrimSpace(in.Detail),
			Date:      format.CalendarDay(s.now()),
			Status:    entity.MovementActive,
		}
		if err := kardexRepo.Create(ctx, m); err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, p.ID, stock); err != nil {
			return err
		}
		created, product, newStock = m, p, stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, ports.EventMovementCreated, created, movType, newStock, product.MinStock)

	res := movementToResponse(created)
	res.Product = product.Description
	res.CurrentStock = &newStock
	return res, nil
}

// DeleteMovement anula un movimiento activo y revierte su efecto sobre el stock.
// Anular una entrada ya consumida por salidas posteriores falla con stock insuficiente.
func (s *LedgerService) DeleteMovement(ctx context.Context, companyID, movementID int64) (*dto.MovementResponse, error) {
	if movementID <= 0 {
		return nil, domain.Invalid("id de movimiento inválido")
	}

	var (
		mov      *entity.Movement
		product  *entity.Product
		newStock int
	)
	err := s.txRunner.Run(ctx, func(kardexRepo repository.KardexRepository, productRepo repository.ProductRepository) error {
		m, err := kardexRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		if m.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if !m.Active() {
			return domain.ErrConflict
		}
		p, err := productRepo.GetForUpdate(ctx, m.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		stock, err := stockrules.Apply(p.Stock, m.Type.Inverse(), m.Quantity)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateStock(ctx, p.ID, stock); err != nil {
			return err
		}
		if err := kardexRepo.SetStatus(ctx, m.ID, entity.MovementDeleted); err != nil {
			return err
		}
		m.Status = entity.MovementDeleted
		mov, product, newStock = m, p, stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, ports.EventMovementDeleted, mov, mov.Type.Inverse(), newStock, product.MinStock)

	res := movementToResponse(mov)
	res.Product = product.Description
	res.CurrentStock = &newStock
	return res, nil
}

// afterCommit invalida la caché de estadísticas y publica el evento. Los fallos solo se registran:
// el movimiento ya está confirmado.
func (s *LedgerService) afterCommit(ctx context.Context, evType string, m *entity.Movement, direction entity.MovementType, stockAfter, minStock int) {
	s.cache.Invalidate(ctx, m.CompanyID)

	ev := ports.MovementEvent{
		Type:       evType,
		CompanyID:  m.CompanyID,
		MovementID: m.ID,
		ProductID:  m.ProductID,
		UserID:     m.UserID,
		Direction:  string(direction),
		Quantity:   m.Quantity,
		StockAfter: stockAfter,
		LowStock:   stockrules.IsLow(stockAfter, minStock),
		OccurredAt: s.now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("event", evType).
			Int64("movement_id", m.ID).
			Msg("no se pudo publicar el evento de kardex")
	}
}

// ListMovements devuelve los movimientos activos de la empresa (mostrarkardexempresa).
func (s *LedgerService) ListMovements(ctx context.Context, companyID int64) ([]dto.MovementResponse, error) {
	list, err := s.kardexRepo.ListExtended(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return listingsToResponse(list), nil
}

// SearchMovements filtra el kardex por rango de fechas (inclusivo), tipo, producto y usuario.
// type "all" o vacío no filtra por tipo.
func (s *LedgerService) SearchMovements(ctx context.Context, companyID int64, q dto.MovementSearchQuery) ([]dto.MovementResponse, error) {
	f, err := buildFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := s.kardexRepo.Search(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	return listingsToResponse(list), nil
}

func buildFilter(q dto.MovementSearchQuery) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		ProductID: q.ProductID,
		UserID:    q.UserID,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.StartDate != "" {
		from, err := format.ParseDay(q.StartDate, time.UTC)
		if err != nil {
			return f, domain.Invalid(err.Error())
		}
		f.From = &from
	}
	if q.EndDate != "" {
		to, err := format.ParseDay(q.EndDate, time.UTC)
		if err != nil {
			return f, domain.Invalid(err.Error())
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, domain.Invalid("la fecha final es anterior a la inicial")
	}
	switch t := strings.ToLower(strings.TrimSpace(q.Type)); t {
	case "", "all":
	default:
		mt := entity.MovementType(t)
		if !mt.Valid() {
			return f, domain.Invalid("tipo de movimiento inválido: " + q.Type)
		}
		f.Type = mt
	}
	if f.Limit < 0 || f.Offset < 0 {
		return f, domain.Invalid("limit y offset no pueden ser negativos")
	}
	return f, nil
}

