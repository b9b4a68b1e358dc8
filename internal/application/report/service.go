package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
	"github.com/jhoicas/kardex-admin/pkg/format"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// Format formato de exportación.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat valida el formato pedido (pdf por defecto).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", domain.Invalid("formato de exportación no soportado: " + s)
	}
}

// Renderer puerto de salida: convierte un reporte en un documento.
type Renderer interface {
	Format() Format
	ContentType() string
	Render(ctx context.Context, r Report, company *entity.Company) ([]byte, error)
}

// StatsProvider entrega las estadísticas de kardex que se adjuntan al reporte de kardex.
type StatsProvider interface {
	GetKardexStats(ctx context.Context, companyID int64, days int) (*dto.KardexStats, error)
}

// File documento exportado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileName nombre de descarga: <tipo>-report-<YYYY-MM-DD>.<ext>.
func FileName(k Kind, f Format, now time.Time) string {
	return fmt.Sprintf("%s-report-%s.%s", k, format.Day(now), f)
}

const kardexStatsDays = 30

// Service lee los datos de la empresa, arma el reporte y lo exporta.
type Service struct {
	productRepo repository.ProductRepository
	kardexRepo  repository.KardexRepository
	companyRepo repository.CompanyRepository
	stats       StatsProvider
	renderers   map[Format]Renderer
	log         *logger.Logger
	now         func() time.Time
}

// NewService construye el servicio de reportes con los renderizadores disponibles.
func NewService(
	productRepo repository.ProductRepository,
	kardexRepo repository.KardexRepository,
	companyRepo repository.CompanyRepository,
	stats StatsProvider,
	log *logger.Logger,
	renderers ...Renderer,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	byFormat := make(map[Format]Renderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &Service{
		productRepo: productRepo,
		kardexRepo:  kardexRepo,
		companyRepo: companyRepo,
		stats:       stats,
		renderers:   byFormat,
		log:         log.Named("reports"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Generate lee los datos y arma el reporte. Los errores de lectura se propagan sin reintentos.
func (s *Service) Generate(ctx context.Context, companyID int64, kind Kind, f Filters) (Report, error) {
	if err := validateFilters(kind, f); err != nil {
		return nil, err
	}
	now := s.now()

	switch kind {
	case KindStock, KindLowStock, KindInventoryValue:
		products, err := s.productRepo.List(ctx, companyID)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindStock:
			return BuildStock(products, f, now), nil
		case KindLowStock:
			return BuildLowStock(products, f, now), nil
		default:
			return BuildInventoryValue(products, f, now), nil
		}
	case KindKardex:
		movements, err := s.kardexRepo.ListExtended(ctx, companyID)
		if err != nil {
			return nil, err
		}
		var stats *dto.KardexStats
		if s.stats != nil {
			stats, err = s.stats.GetKardexStats(ctx, companyID, kardexStatsDays)
			if err != nil {
				return nil, err
			}
		}
		return BuildKardex(movements, f, stats, now), nil
	default:
		return nil, ErrUnsupportedReport
	}
}

// Export arma el reporte y lo renderiza en el formato pedido.
func (s *Service) Export(ctx context.Context, companyID int64, kind Kind, f Filters, out Format) (*File, error) {
	renderer, ok := s.renderers[out]
	if !ok {
		return nil, domain.Invalid("formato de exportación no soportado: " + string(out))
	}
	rep, err := s.Generate(ctx, companyID, kind, f)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		company = &entity.Company{ID: companyID}
	}

	data, err := renderer.Render(ctx, rep, company)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", out, err)
	}
	s.log.Info().
		Int64("company_id", companyID).
		Str("kind", string(kind)).
		Str("format", string(out)).
		Int("bytes", len(data)).
		Msg("reporte exportado")

	return &File{
		Name:        FileName(kind, out, rep.Meta().GeneratedAt),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// validateFilters solo rechaza fechas ilegibles del reporte de kardex. Un rango invertido o un
// tipo desconocido producen un reporte vacío; los demás reportes ignoran las fechas.
func validateFilters(kind Kind, f Filters) error {
	if kind != KindKardex {
		return nil
	}
	for _, d := range []string{f.StartDate, f.EndDate} {
		if strings.TrimSpace(d) == "" {
			continue
		}
		if _, err := format.ParseDay(strings.TrimSpace(d), time.UTC); err != nil {
			return domain.Invalid(err.Error())
		}
	}
	return nil
}
