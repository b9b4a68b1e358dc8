package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/pkg/format"
)

func run(t *testing.T, state string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	err := app.Run(append([]string{"inventoryctl", "--api", "http://127.0.0.1:1", "--state", state}, args...))
	return stdout.String(), stderr.String(), err
}

func TestTheme_PersisteEntreEjecuciones(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	out, _, err := run(t, state, "theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, _, err = run(t, state, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, _, err = run(t, state, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	_, _, err = run(t, state, "theme", "sepia")
	assert.Error(t, err)
}

func TestWhoami_SinSesion(t *testing.T) {
	out, _, err := run(t, filepath.Join(t.TempDir(), "state.json"), "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Sin sesión\n", out)
}

func TestProducts_SinSesionFalla(t *testing.T) {
	_, _, err := run(t, filepath.Join(t.TempDir(), "state.json"), "products", "list")
	assert.Error(t, err)
}

func TestWriteExport_NombrePorDefecto(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	path, err := writeExport(dir, "", report.KindLowStock, report.FormatCSV, []byte("a,b\n"), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "low-stock-report-2024-06-15.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestWriteExport_NoSaleDeLaCarpeta(t *testing.T) {
	dir := t.TempDir()
	path, err := writeExport(dir, "../../stock-report-2024-06-15.pdf", report.KindStock, report.FormatPDF, []byte("%PDF"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stock-report-2024-06-15.pdf"), path)
}

func TestCliNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := cliNotifier{w: &buf}
	n.Success("Producto creado exitosamente")
	n.Error("Stock insuficiente")
	assert.Equal(t, "✓ Producto creado exitosamente\n✗ Stock insuficiente\n", buf.String())
}

func TestCell(t *testing.T) {
	e := &env{fmt: format.New("es-AR")}
	assert.Equal(t, "", cell(e, nil))
	assert.Equal(t, "entrada", cell(e, "entrada"))
	assert.Equal(t, "2024-01-01 - 2024-01-31", cell(e, map[string]any{"start": "2024-01-01", "end": "2024-01-31"}))
	assert.Equal(t, e.fmt.Number(1500), cell(e, float64(1500)))
}
