// Package analytics contiene el caso de uso del dashboard: indicadores del inventario y de los
// movimientos del día.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
	"github.com/jhoicas/kardex-admin/pkg/format"
	"github.com/shopspring/decimal"
)

const (
	dashboardTopCategories = 5
	dashboardRecent        = 5
	dashboardChartDays     = 7
)

// RecentMovements fuente de los últimos movimientos (implementado por el servicio de kardex).
type RecentMovements interface {
	SearchMovements(ctx context.Context, companyID int64, q dto.MovementSearchQuery) ([]dto.MovementResponse, error)
}

// DashboardUseCase arma el resumen del dashboard.
//
// Fuente de datos: AnalyticsRepository (consultas read-only) y el kardex para los últimos
// movimientos.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	movements     RecentMovements
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, movements RecentMovements) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, movements: movements, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO para la empresa indicada.
//
// Cuatro consultas en paralelo:
//  1. GetInventoryTotals          → productos, bajo mínimo, críticos, valor
//  2. GetTopCategories(top 5)     → participación por categoría
//  3. GetDailyMovements(7 días)   → gráfico, hoy y tendencia contra ayer
//  4. SearchMovements(limit 5)    → últimos movimientos
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID int64) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	today := format.CalendarDay(now)
	from := today.AddDate(0, 0, -(dashboardChartDays - 1))

	type totalsResult struct {
		totals *repository.InventoryTotals
		err    error
	}
	type categoriesResult struct {
		cats []repository.CategoryValue
		err  error
	}
	type dailyResult struct {
		days []repository.DailyMovement
		err  error
	}
	type recentResult struct {
		movs []dto.MovementResponse
		err  error
	}

	totalsCh := make(chan totalsResult, 1)
	catsCh := make(chan categoriesResult, 1)
	dailyCh := make(chan dailyResult, 1)
	recentCh := make(chan recentResult, 1)

	go func() {
		t, err := uc.analyticsRepo.GetInventoryTotals(ctx, companyID)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		c, err := uc.analyticsRepo.GetTopCategories(ctx, companyID, dashboardTopCategories)
		catsCh <- categoriesResult{c, err}
	}()
	go func() {
		d, err := uc.analyticsRepo.GetDailyMovements(ctx, companyID, from, today)
		dailyCh <- dailyResult{d, err}
	}()
	go func() {
		m, err := uc.movements.SearchMovements(ctx, companyID, dto.MovementSearchQuery{Limit: dashboardRecent})
		recentCh <- recentResult{m, err}
	}()

	totals := <-totalsCh
	cats := <-catsCh
	daily := <-dailyCh
	recent := <-recentCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales: %w", totals.err)
	}
	if cats.err != nil {
		return nil, fmt.Errorf("dashboard: categorías: %w", cats.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos diarios: %w", daily.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: últimos movimientos: %w", recent.err)
	}

	chart := buildChart(daily.days, from, dashboardChartDays)
	todayBucket := chart[len(chart)-1]
	yesterdayBucket := chart[len(chart)-2]

	recentMovs := recent.movs
	if recentMovs == nil {
		recentMovs = []dto.MovementResponse{}
	}

	return &dto.DashboardSummaryDTO{
		TotalProducts:    totals.totals.Products,
		LowStockProducts: totals.totals.LowStock,
		CriticalProducts: totals.totals.Critical,
		TotalValue:       totals.totals.TotalValue.Round(2),
		TotalCost:        totals.totals.TotalCost.Round(2),
		TodayEntries:     todayBucket.Entries,
		TodayExits:       todayBucket.Exits,
		ExitsTrend:       trend(todayBucket.Exits, yesterdayBucket.Exits),
		TopCategories:    categoryStats(cats.cats, totals.totals.TotalValue),
		RecentMovements:  recentMovs,
		Chart:            chart,
		DateLabel:        monthLabel(now),
	}, nil
}

// buildChart devuelve un bucket por día desde from, completando con ceros los días sin movimientos.
func buildChart(rows []repository.DailyMovement, from time.Time, days int) []dto.DayMovements {
	byDay := make(map[string]repository.DailyMovement, len(rows))
	for _, r := range rows {
		byDay[format.Day(r.Day)] = r
	}
	chart := make([]dto.DayMovements, 0, days)
	for i := 0; i < days; i++ {
		day := format.Day(from.AddDate(0, 0, i))
		r := byDay[day]
		chart = append(chart, dto.DayMovements{Date: day, Entries: r.Entries, Exits: r.Exits})
	}
	return chart
}

// trend variación porcentual de hoy contra ayer, con un decimal. Sin salidas ayer: 100 si hoy hubo.
func trend(today, yesterday int) float64 {
	if yesterday == 0 {
		if today > 0 {
			return 100
		}
		return 0
	}
	v := float64(today-yesterday) / float64(yesterday) * 100
	return math.Round(v*10) / 10
}

func categoryStats(cats []repository.CategoryValue, total decimal.Decimal) []dto.CategoryStatDTO {
	out := make([]dto.CategoryStatDTO, 0, len(cats))
	for _, c := range cats {
		pct := 0.0
		if total.IsPositive() {
			pct = c.Value.Div(total).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		out = append(out, dto.CategoryStatDTO{
			Name:       c.Name,
			Count:      c.Products,
			Value:      c.Value.Round(2),
			Percentage: pct,
		})
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
