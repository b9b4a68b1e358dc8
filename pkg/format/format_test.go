package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency_SeparadoresEspanol(t *testing.T) {
	f := New("es")

	assert.Equal(t, "$ 1.234.567,50", f.Currency(decimal.RequireFromString("1234567.5"), "$"))
	assert.Equal(t, "1.234.567,50", f.Decimal(decimal.RequireFromString("1234567.499")))
}

func TestNumber_SeparadorDeMiles(t *testing.T) {
	f := New("es")
	assert.Equal(t, "1.234.567", f.Number(1234567))
}

func TestNew_LocaleInvalidoUsaDefault(t *testing.T) {
	f := New("??")
	require.NotNil(t, f)
	assert.NotEmpty(t, f.Number(10))
}

func TestDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)
	assert.Equal(t, "05/03/2024", Date(d))
	assert.Equal(t, "05/03/2024 14:07", DateTime(d))
	assert.Equal(t, "2024-03-05", Day(d))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-12-31", nil)
	require.NoError(t, err)
	assert.Equal(t, 31, d.Day())

	_, err = ParseDay("31/12/2024", nil)
	assert.Error(t, err)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"segundos", now.Add(-30 * time.Second), "Ahora"},
		{"minutos", now.Add(-15 * time.Minute), "Hace 15 min"},
		{"horas", now.Add(-5 * time.Hour), "Hace 5 h"},
		{"dias", now.Add(-3 * 24 * time.Hour), "Hace 3 días"},
		{"fecha", now.Add(-10 * 24 * time.Hour), "10/06/2024"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RelativeTime(tc.at, now))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "corto", Truncate("corto", 10))
	assert.Equal(t, "Destorn...", Truncate("Destornillador plano", 10))
	assert.Equal(t, "Cañ", Truncate("Cañería", 3))
}

func TestStartOfDay(t *testing.T) {
	d := time.Date(2024, time.June, 20, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), StartOfDay(d))
}

func TestCalendarDay_UsaLaZonaDelInstante(t *testing.T) {
	bsas := time.FixedZone("UTC-3", -3*60*60)
	late := time.Date(2024, time.June, 20, 22, 0, 0, 0, bsas)

	assert.Equal(t, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), CalendarDay(late))
	assert.Equal(t, "2024-06-21", Day(late.UTC()))
}
