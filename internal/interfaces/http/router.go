package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/kardex-admin/internal/application/analytics"
	"github.com/jhoicas/kardex-admin/internal/application/auth"
	"github.com/jhoicas/kardex-admin/internal/application/inventory"
	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/application/usecase"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProductUC    *usecase.ProductUseCase
	CategoryUC   *usecase.CategoryUseCase
	BrandUC      *usecase.BrandUseCase
	Ledger       *inventory.LedgerService
	Reports      *report.Service
	UserUC       *usecase.UserUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	JWTSecret    string
	Revocations  RevocationChecker
	LoginLimiter *LoginLimiter
	Validator    *Validator
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	val := deps.Validator
	if val == nil {
		val = NewValidator()
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, val, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if deps.LoginLimiter != nil {
		authGroup.Post("/login", deps.LoginLimiter.Handler(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/password-reset", authHandler.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// Rutas protegidas (requieren Bearer Token)
	authn := AuthMiddleware(deps.JWTSecret, deps.Revocations)
	authGroup.Post("/logout", authn, authHandler.Logout)
	authGroup.Get("/session", authn, authHandler.Session)

	protected := api.Group("", authn, RequireAnyRole())
	admin := RequireAdmin()

	// Productos
	productHandler := NewProductHandler(deps.ProductUC, val, log)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/search", productHandler.Search)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Categorías y marcas: lectura para todos, escritura admin+
	catalog := NewCatalogHandler(deps.CategoryUC, deps.BrandUC, val, log)
	categories := protected.Group("/categories")
	categories.Get("/", catalog.ListCategories)
	categories.Post("/", admin, catalog.CreateCategory)
	categories.Put("/:id", admin, catalog.UpdateCategory)
	categories.Delete("/:id", admin, catalog.DeleteCategory)

	brands := protected.Group("/brands")
	brands.Get("/", catalog.ListBrands)
	brands.Post("/", admin, catalog.CreateBrand)
	brands.Put("/:id", admin, catalog.UpdateBrand)
	brands.Delete("/:id", admin, catalog.DeleteBrand)

	// Kardex
	kardexHandler := NewKardexHandler(deps.Ledger, val, log)
	kardex := protected.Group("/kardex")
	kardex.Get("/", kardexHandler.List)
	kardex.Get("/search", kardexHandler.Search)
	kardex.Get("/stats", kardexHandler.Stats)
	kardex.Post("/", kardexHandler.Create)
	kardex.Delete("/:id", admin, kardexHandler.Delete)

	// Reportes (admin+)
	reportHandler := NewReportHandler(deps.Reports, log)
	reports := protected.Group("/reports", admin)
	reports.Get("/:kind", reportHandler.Generate)
	reports.Get("/:kind/export", reportHandler.Export)

	// Usuarios (superadmin)
	userHandler := NewUserHandler(deps.UserUC, val, log)
	users := protected.Group("/users", RequireSuperAdmin())
	users.Get("/", userHandler.List)
	users.Get("/stats", userHandler.Stats)
	users.Post("/", userHandler.Create)
	users.Post("/invite", userHandler.Invite)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Patch("/:id/status", userHandler.ToggleStatus)
	users.Delete("/:id", userHandler.Delete)
	users.Post("/:id/reset-password", userHandler.ResetPassword)
	users.Get("/:id/activities", userHandler.Activities)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	protected.Get("/dashboard", dashboardHandler.GetSummary)
}
