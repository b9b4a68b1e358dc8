package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/pkg/format"
)

// Ventana de las estadísticas de kardex, en días.
const (
	DefaultStatsDays = 30
	MaxStatsDays     = 365
)

// GetKardexStats resume los movimientos activos de los últimos days días (30 si days <= 0).
// El resultado se cachea por empresa y ventana hasta el próximo movimiento.
func (s *LedgerService) GetKardexStats(ctx context.Context, companyID int64, days int) (*dto.KardexStats, error) {
	days = clampDays(days)
	if cached, ok := s.cache.Get(ctx, companyID, days); ok {
		return cached, nil
	}

	since := format.CalendarDay(s.now()).AddDate(0, 0, -days)
	movs, err := s.kardexRepo.ListActiveSince(ctx, companyID, since)
	if err != nil {
		return nil, err
	}
	stats := SummarizeMovements(movs, since, days)
	s.cache.Set(ctx, companyID, days, stats)
	return stats, nil
}

func clampDays(days int) int {
	switch {
	case days <= 0:
		return DefaultStatsDays
	case days > MaxStatsDays:
		return MaxStatsDays
	default:
		return days
	}
}

// SummarizeMovements agrega entradas y salidas por día. Ignora movimientos anulados y anteriores a
// since. Las series salen ordenadas por fecha ascendente y solo contienen días con movimientos.
func SummarizeMovements(movs []*entity.Movement, since time.Time, days int) *dto.KardexStats {
	sinceDay := format.Day(since)
	stats := &dto.KardexStats{
		Days:           days,
		Since:          sinceDay,
		EntriesByDay:   []dto.DayQuantity{},
		ExitsByDay:     []dto.DayQuantity{},
		MovementsByDay: []dto.DayMovements{},
	}

	byDay := make(map[string]*dto.DayMovements)
	for _, m := range movs {
		if m == nil || !m.Active() {
			continue
		}
		day := format.Day(m.Date)
		if day < sinceDay {
			continue
		}
		agg, ok := byDay[day]
		if !ok {
			agg = &dto.DayMovements{Date: day}
			byDay[day] = agg
		}
		switch m.Type {
		case entity.MovementIn:
			agg.Entries += m.Quantity
			stats.TotalEntries += m.Quantity
		case entity.MovementOut:
			agg.Exits += m.Quantity
			stats.TotalExits += m.Quantity
		default:
			continue
		}
		stats.MovementCount++
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		agg := byDay[k]
		stats.MovementsByDay = append(stats.MovementsByDay, *agg)
		if agg.Entries > 0 {
			stats.EntriesByDay = append(stats.EntriesByDay, dto.DayQuantity{Date: k, Quantity: agg.Entries})
		}
		if agg.Exits > 0 {
			stats.ExitsByDay = append(stats.ExitsByDay, dto.DayQuantity{Date: k, Quantity: agg.Exits})
		}
	}
	return stats
}
