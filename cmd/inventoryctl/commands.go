package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/client/session"
)

func idArg(c *cli.Context) (int64, error) {
	raw := c.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido %q", raw)
	}
	return id, nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "iniciar sesión",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"KARDEX_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			_, err := envFrom(c).store.Login(c.Context, c.String("email"), c.String("password"))
			return err
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "cerrar sesión",
		Action: func(c *cli.Context) error {
			return envFrom(c).store.Logout(c.Context)
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "usuario de la sesión",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			st := e.store.Snapshot()
			if !st.Authenticated || st.User == nil {
				fmt.Fprintln(e.out, "Sin sesión")
				return nil
			}
			u := st.User
			fmt.Fprintf(e.out, "%s <%s>\nRol: %s\nEmpresa: %d\nTema: %s\n", u.Name, u.Email, u.Role, u.CompanyID, st.Theme)
			return nil
		},
	}
}

func themeCommand() *cli.Command {
	return &cli.Command{
		Name:      "theme",
		Usage:     "ver o cambiar el tema",
		ArgsUsage: "[toggle|light|dark]",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			switch arg := c.Args().First(); arg {
			case "":
			case "toggle":
				e.store.ToggleTheme()
			default:
				t, err := session.ParseTheme(arg)
				if err != nil {
					return err
				}
				if err := e.store.SetTheme(t); err != nil {
					return err
				}
			}
			fmt.Fprintln(e.out, e.store.Theme())
			return nil
		},
	}
}

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "productos",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "listar productos",
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					items, err := e.hooks.Products(c.Context)
					if err != nil {
						return err
					}
					renderProducts(e, items)
					return nil
				},
			},
			{
				Name:      "search",
				Usage:     "buscar por descripción, código o marca",
				ArgsUsage: "<texto>",
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					items, err := e.hooks.SearchProducts(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					renderProducts(e, items)
					return nil
				},
			},
		},
	}
}

func kardexCommand() *cli.Command {
	return &cli.Command{
		Name:  "kardex",
		Usage: "movimientos de inventario",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "listar movimientos",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "YYYY-MM-DD"},
					&cli.StringFlag{Name: "type", Usage: "all | entrada | salida"},
					&cli.Int64Flag{Name: "product"},
					&cli.IntFlag{Name: "limit"},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					q := dto.MovementSearchQuery{
						StartDate: c.String("from"),
						EndDate:   c.String("to"),
						Type:      c.String("type"),
						ProductID: c.Int64("product"),
						Limit:     c.Int("limit"),
					}
					var (
						items []dto.MovementResponse
						err   error
					)
					if q == (dto.MovementSearchQuery{}) {
						items, err = e.hooks.Movements(c.Context)
					} else {
						items, err = e.hooks.SearchMovements(c.Context, q)
					}
					if err != nil {
						return err
					}
					renderMovements(e, items)
					return nil
				},
			},
			{
				Name:  "add",
				Usage: "registrar entrada o salida",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "product", Required: true},
					&cli.StringFlag{Name: "type", Usage: "entrada | salida", Required: true},
					&cli.IntFlag{Name: "qty", Required: true},
					&cli.StringFlag{Name: "detail"},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					m, err := e.hooks.CreateMovement(c.Context, dto.CreateMovementRequest{
						ProductID: c.Int64("product"),
						Type:      c.String("type"),
						Quantity:  c.Int("qty"),
						Detail:    c.String("detail"),
					})
					if err != nil {
						return err
					}
					renderMovements(e, []dto.MovementResponse{*m})
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "anular un movimiento (admin)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					id, err := idArg(c)
					if err != nil {
						return err
					}
					m, err := e.hooks.DeleteMovement(c.Context, id)
					if err != nil {
						return err
					}
					if m.CurrentStock != nil {
						fmt.Fprintf(e.out, "Stock actual del producto: %s\n", e.fmt.Number(int64(*m.CurrentStock)))
					}
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "entradas y salidas por día",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 30},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					stats, err := e.hooks.KardexStats(c.Context, c.Int("days"))
					if err != nil {
						return err
					}
					renderKardexStats(e, stats)
					return nil
				},
			},
		},
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "search"},
		&cli.Int64Flag{Name: "category"},
		&cli.Int64Flag{Name: "brand"},
		&cli.BoolFlag{Name: "low-stock-only"},
		&cli.StringFlag{Name: "from", Usage: "YYYY-MM-DD"},
		&cli.StringFlag{Name: "to", Usage: "YYYY-MM-DD"},
		&cli.StringFlag{Name: "movement-type", Usage: "all | entrada | salida"},
		&cli.Int64Flag{Name: "product"},
	}
}

func reportArgs(c *cli.Context) (report.Kind, report.Filters, error) {
	kind, err := report.ParseKind(c.Args().First())
	if err != nil {
		return "", report.Filters{}, err
	}
	f := report.Filters{
		Search:       c.String("search"),
		CategoryID:   c.Int64("category"),
		BrandID:      c.Int64("brand"),
		LowStockOnly: c.Bool("low-stock-only"),
		StartDate:    c.String("from"),
		EndDate:      c.String("to"),
		MovementType: c.String("movement-type"),
		ProductID:    c.Int64("product"),
	}
	return kind, f, nil
}

func reportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "reportes (admin)",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "mostrar un reporte",
				ArgsUsage: "<stock|low-stock|kardex|inventory-value>",
				Flags:     reportFlags(),
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					kind, f, err := reportArgs(c)
					if err != nil {
						return err
					}
					doc, err := e.hooks.Report(c.Context, kind, f)
					if err != nil {
						return err
					}
					renderReport(e, doc)
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "descargar un reporte en PDF, CSV o XLSX",
				ArgsUsage: "<stock|low-stock|kardex|inventory-value>",
				Flags:     append(reportFlags(), &cli.StringFlag{Name: "format", Value: string(report.FormatPDF)}),
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					kind, f, err := reportArgs(c)
					if err != nil {
						return err
					}
					fm, err := report.ParseFormat(c.String("format"))
					if err != nil {
						return err
					}
					file, err := e.hooks.ExportReport(c.Context, kind, f, fm)
					if err != nil {
						return err
					}
					path, err := writeExport(e.outDir, file.Name, kind, fm, file.Data, time.Now())
					if err != nil {
						return err
					}
					fmt.Fprintln(e.out, path)
					return nil
				},
			},
		},
	}
}

// writeExport guarda el archivo en dir. Sin nombre del servidor usa <tipo>-report-<fecha>.<ext>.
func writeExport(dir, name string, kind report.Kind, fm report.Format, data []byte, now time.Time) (string, error) {
	if name == "" {
		name = report.FileName(kind, fm, now)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "usuarios (superadmin)",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "listar usuarios",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "role", Usage: "superadmin | admin | empleado"},
					&cli.StringFlag{Name: "status", Usage: "activo | inactivo | eliminado"},
					&cli.StringFlag{Name: "from", Usage: "registrados desde YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "registrados hasta YYYY-MM-DD"},
				},
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					items, err := e.hooks.Users(c.Context, dto.UserListQuery{
						Search:         c.String("search"),
						Role:           c.String("role"),
						Status:         c.String("status"),
						RegisteredFrom: c.String("from"),
						RegisteredTo:   c.String("to"),
					})
					if err != nil {
						return err
					}
					renderUsers(e, items)
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "conteos de usuarios",
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					s, err := e.hooks.UserStats(c.Context)
					if err != nil {
						return err
					}
					renderUserStats(e, s)
					return nil
				},
			},
			{
				Name:  "invite",
				Usage: "invitar por correo",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "role", Value: "empleado", Usage: "admin | empleado"},
				},
				Action: func(c *cli.Context) error {
					_, err := envFrom(c).hooks.InviteUser(c.Context, dto.InviteUserRequest{
						Email: c.String("email"),
						Name:  c.String("name"),
						Role:  c.String("role"),
					})
					return err
				},
			},
			{
				Name:      "toggle",
				Usage:     "activar o desactivar",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c)
					if err != nil {
						return err
					}
					_, err = envFrom(c).hooks.ToggleUserStatus(c.Context, id)
					return err
				},
			},
		},
	}
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "resumen del inventario",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			d, err := e.hooks.Dashboard(c.Context)
			if err != nil {
				return err
			}
			renderDashboard(e, d)
			return nil
		},
	}
}
