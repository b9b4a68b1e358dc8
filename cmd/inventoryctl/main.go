// inventoryctl opera el panel de kardex desde la terminal: sesión, productos, movimientos,
// reportes, usuarios y dashboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/kardex-admin/internal/client"
	"github.com/jhoicas/kardex-admin/internal/client/hooks"
	"github.com/jhoicas/kardex-admin/internal/client/query"
	"github.com/jhoicas/kardex-admin/internal/client/session"
	"github.com/jhoicas/kardex-admin/pkg/format"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

const envKey = "env"

// env dependencias compartidas por los comandos.
type env struct {
	store  *session.Store
	hooks  *hooks.Hooks
	sub    *session.Subscription
	fmt    *format.Formatter
	out    io.Writer
	outDir string
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

// cliNotifier imprime las notificaciones de los hooks en stderr.
type cliNotifier struct{ w io.Writer }

func (n cliNotifier) Success(msg string) { fmt.Fprintln(n.w, "✓", msg) }
func (n cliNotifier) Error(msg string)   { fmt.Fprintln(n.w, "✗", msg) }

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".inventoryctl.json"
	}
	return filepath.Join(dir, "kardex-admin", "state.json")
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "inventoryctl",
		Usage:     "administración de inventario y kardex",
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Usage: "URL base de la API", EnvVars: []string{"KARDEX_API_URL"}, Value: "http://localhost:8080"},
			&cli.StringFlag{Name: "state", Usage: "archivo de sesión", EnvVars: []string{"KARDEX_STATE"}, Value: defaultStatePath()},
			&cli.StringFlag{Name: "out", Usage: "carpeta de exportación", Value: "."},
			&cli.StringFlag{Name: "locale", Usage: "configuración regional", EnvVars: []string{"APP_LOCALE"}, Value: format.DefaultLocale},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log de depuración"},
		},
		Before: func(c *cli.Context) error {
			level := "warn"
			if c.Bool("verbose") {
				level = "debug"
			}
			log := logger.New(logger.Config{Env: "development", Level: level, Out: c.App.ErrWriter})
			notify := cliNotifier{w: c.App.ErrWriter}

			cl := client.New(c.String("api"))
			store := session.New(cl, c.String("state"), notify, log)
			sub, err := store.Init(c.Context)
			if err != nil {
				log.Warn().Err(err).Msg("no se pudo verificar la sesión guardada")
			}
			c.App.Metadata[envKey] = &env{
				store:  store,
				hooks:  hooks.New(cl, query.New(notify), store),
				sub:    sub,
				fmt:    format.New(c.String("locale")),
				out:    c.App.Writer,
				outDir: c.String("out"),
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if e, ok := c.App.Metadata[envKey].(*env); ok && e.sub != nil {
				e.sub.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			themeCommand(),
			productsCommand(),
			kardexCommand(),
			reportsCommand(),
			usersCommand(),
			dashboardCommand(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", query.Message(err))
		stop()
		os.Exit(1)
	}
}
