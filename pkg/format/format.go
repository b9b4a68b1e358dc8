// Package format agrupa los formateadores de presentación (moneda, números, fechas) usados por
// reportes, correos y la CLI. Son funciones puras: el "ahora" y la configuración regional se
// reciben como argumento.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale configuración regional por defecto del panel.
const DefaultLocale = "es-AR"

// DayLayout formato de fecha del campo kardex.fecha.
const DayLayout = "2006-01-02"

// Formatter formatea valores según una configuración regional.
type Formatter struct {
	p *message.Printer
}

// New construye un Formatter para el locale dado (BCP 47). Un locale inválido cae en DefaultLocale.
func New(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{p: message.NewPrinter(tag)}
}

// Currency formatea un importe con dos decimales y el símbolo de la empresa ("$ 1.234,50").
func (f *Formatter) Currency(amount decimal.Decimal, symbol string) string {
	s := f.p.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
	if symbol == "" {
		return s
	}
	return symbol + " " + s
}

// Decimal formatea un valor con dos decimales sin símbolo.
func (f *Formatter) Decimal(amount decimal.Decimal) string {
	return f.Currency(amount, "")
}

// Number formatea un entero con separador de miles.
func (f *Formatter) Number(n int64) string {
	return f.p.Sprint(number.Decimal(n))
}

// Date formatea como dd/MM/yyyy.
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// DateTime formatea como dd/MM/yyyy HH:mm.
func DateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// Day devuelve la fecha en formato YYYY-MM-DD.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay interpreta una fecha YYYY-MM-DD en la zona de loc (UTC si es nil).
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: se espera YYYY-MM-DD", s)
	}
	return t, nil
}

// StartOfDay trunca t a las 00:00 de su zona horaria.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDay día calendario de t en su propia zona, expresado como medianoche UTC. Es la regla
// única de "hoy" para kardex.fecha, las estadísticas y el dashboard.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RelativeTime describe cuánto pasó desde t hasta now.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Ahora"
	case diff < time.Hour:
		return fmt.Sprintf("Hace %d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("Hace %d h", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("Hace %d días", int(diff.Hours()/24))
	default:
		return Date(t)
	}
}

// Truncate recorta s a max runas agregando "..." si fue necesario.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Percent formatea un porcentaje con un decimal ("12,5%").
func (f *Formatter) Percent(v float64) string {
	return f.p.Sprint(number.Decimal(v, number.Scale(1))) + "%"
}
