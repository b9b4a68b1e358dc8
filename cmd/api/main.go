package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appanalytics "github.com/jhoicas/kardex-admin/internal/application/analytics"
	"github.com/jhoicas/kardex-admin/internal/application/auth"
	"github.com/jhoicas/kardex-admin/internal/application/inventory"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/application/usecase"
	infracsv "github.com/jhoicas/kardex-admin/internal/infrastructure/csv"
	"github.com/jhoicas/kardex-admin/internal/infrastructure/events"
	"github.com/jhoicas/kardex-admin/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/kardex-admin/internal/infrastructure/pdf"
	"github.com/jhoicas/kardex-admin/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/kardex-admin/internal/infrastructure/redis"
	infraxlsx "github.com/jhoicas/kardex-admin/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/kardex-admin/internal/interfaces/http"
	"github.com/jhoicas/kardex-admin/pkg/config"
	"github.com/jhoicas/kardex-admin/pkg/logger"

	_ "github.com/jhoicas/kardex-admin/docs"
)

const statsCacheTTL = 10 * time.Minute

// @title                       Kardex Admin API
// @version                     1.0
// @description                 API de administración de inventario con kardex.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	credRepo := postgres.NewCredentialRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	brandRepo := postgres.NewBrandRepository(pool)
	kardexRepo := postgres.NewKardexRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Redis es opcional: sin REDIS_ADDR la revocación y los tokens de recuperación quedan en memoria.
	var (
		tokens     ports.TokenStore
		revocation httpRouter.RevocationChecker
		statsCache ports.StatsCache = ports.NopStatsCache{}
	)
	memTokens := ports.NewMemoryTokenStore()
	tokens, revocation = memTokens, memTokens
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, se usa almacenamiento en memoria")
		} else {
			defer rdb.Close()
			store := infraredis.NewTokenStore(rdb)
			tokens, revocation = store, store
			statsCache = infraredis.NewStatsCache(rdb, statsCacheTTL, log)
		}
	}

	var publisher ports.EventPublisher = ports.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQP)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP no disponible, los eventos de kardex no se publican")
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
		}
	}

	mailer := mail.New(cfg.SMTP, log)

	ledger := inventory.NewLedgerService(txRunner, kardexRepo, statsCache, publisher, log)
	reports := report.NewService(productRepo, kardexRepo, companyRepo, ledger, log,
		infrapdf.NewMarotoReportGenerator(cfg.App.Locale),
		infracsv.NewReportWriter(),
		infraxlsx.NewReportWriter(),
	)

	authUC := auth.NewAuthUseCase(txRunner, credRepo, userRepo, companyRepo, activityRepo, tokens, mailer,
		auth.Config{
			JWT: auth.JWTConfig{
				Secret:     cfg.JWT.Secret,
				ExpMinutes: cfg.JWT.Expiration,
				Issuer:     cfg.JWT.Issuer,
			},
			BaseURL: cfg.App.BaseURL,
		}, log)
	userUC := usecase.NewUserUseCase(userRepo, activityRepo, kardexRepo, authUC, mailer, cfg.App.BaseURL, log)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo, brandRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	brandUC := usecase.NewBrandUseCase(brandRepo)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo, ledger)

	loginLimiter := httpRouter.NewLoginLimiter(cfg.HTTP.LoginRatePerMinute)
	loginLimiter.StartCleanup(ctx, 10*time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex Admin API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    productUC,
		CategoryUC:   categoryUC,
		BrandUC:      brandUC,
		Ledger:       ledger,
		Reports:      reports,
		UserUC:       userUC,
		DashboardUC:  dashboardUC,
		JWTSecret:    cfg.JWT.Secret,
		Revocations:  revocation,
		LoginLimiter: loginLimiter,
		Validator:    httpRouter.NewValidator(),
		Log:          log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
