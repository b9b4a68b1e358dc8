// Package hooks expone las lecturas y mutaciones del panel sobre el cliente HTTP, con caché
// por empresa y usuario e invalidación cruzada entre entidades.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/report"
	"github.com/jhoicas/kardex-admin/internal/client"
	"github.com/jhoicas/kardex-admin/internal/client/query"
)

// ErrNotAuthenticated lectura o mutación sin sesión.
var ErrNotAuthenticated = errors.New("no hay una sesión activa")

// Ventanas de frescura por entidad.
const (
	ProductsTTL       = 5 * time.Minute
	ProductSearchTTL  = 2 * time.Minute
	CatalogTTL        = 10 * time.Minute
	MovementsTTL      = 2 * time.Minute
	KardexStatsTTL    = 5 * time.Minute
	UsersTTL          = 2 * time.Minute
	UserStatsTTL      = 5 * time.Minute
	UserActivitiesTTL = time.Minute
	DashboardTTL      = time.Minute
	ReportsTTL        = 2 * time.Minute
)

// Prefijos de clave. Un movimiento cambia el stock: invalida kardex, products, reports y dashboard.
const (
	keyProducts   = "products"
	keyCategories = "categories"
	keyBrands     = "brands"
	keyKardex     = "kardex"
	keyReports    = "reports"
	keyUsers      = "users"
	keyDashboard  = "dashboard"
)

// API operaciones remotas que usan los hooks. La implementa *client.Client.
type API interface {
	Products(ctx context.Context) ([]dto.ProductResponse, error)
	SearchProducts(ctx context.Context, q string) ([]dto.ProductResponse, error)
	CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id int64) error

	Categories(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id int64, in dto.CategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id int64) error
	Brands(ctx context.Context) ([]dto.BrandResponse, error)
	CreateBrand(ctx context.Context, in dto.BrandRequest) (*dto.BrandResponse, error)
	UpdateBrand(ctx context.Context, id int64, in dto.BrandRequest) (*dto.BrandResponse, error)
	DeleteBrand(ctx context.Context, id int64) error

	Movements(ctx context.Context) ([]dto.MovementResponse, error)
	SearchMovements(ctx context.Context, q dto.MovementSearchQuery) ([]dto.MovementResponse, error)
	CreateMovement(ctx context.Context, in dto.CreateMovementRequest) (*dto.MovementResponse, error)
	DeleteMovement(ctx context.Context, id int64) (*dto.MovementResponse, error)
	KardexStats(ctx context.Context, days int) (*dto.KardexStats, error)

	Users(ctx context.Context, q dto.UserListQuery) ([]dto.UserResponse, error)
	UserStats(ctx context.Context) (*dto.UserStatsResponse, error)
	UserActivities(ctx context.Context, id int64, limit int) ([]dto.UserActivityResponse, error)
	CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error)
	InviteUser(ctx context.Context, in dto.InviteUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error)
	ToggleUserStatus(ctx context.Context, id int64) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
	ResetUserPassword(ctx context.Context, id int64) error

	Dashboard(ctx context.Context) (*dto.DashboardSummaryDTO, error)

	Report(ctx context.Context, kind report.Kind, f report.Filters) (*client.ReportDocument, error)
	ExportReport(ctx context.Context, kind report.Kind, f report.Filters, format report.Format) (*client.ExportedFile, error)
}

// Scope identidad de la sesión. La implementa *session.Store.
type Scope interface {
	Identity() (companyID, userID int64, ok bool)
}

// Hooks lecturas cacheadas y mutaciones con notificación.
type Hooks struct {
	api   API
	cache *query.Cache
	scope Scope
}

// New construye los hooks.
func New(api API, cache *query.Cache, scope Scope) *Hooks {
	return &Hooks{api: api, cache: cache, scope: scope}
}

// key arma la clave de una lectura: entidad/empresa/usuario/partes...
func (h *Hooks) key(entity string, parts ...any) (string, error) {
	companyID, userID, ok := h.scope.Identity()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return query.Key(append([]any{entity, companyID, userID}, parts...)...), nil
}

func read[T any](ctx context.Context, h *Hooks, ttl time.Duration, fn func(context.Context) (T, error), entity string, parts ...any) (T, error) {
	key, err := h.key(entity, parts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return query.Fetch(ctx, h.cache, key, ttl, fn)
}

func mutate[T any](ctx context.Context, h *Hooks, m query.Mutation, fn func(context.Context) (T, error)) (T, error) {
	if _, _, ok := h.scope.Identity(); !ok {
		h.cache.Notify().Error(query.Message(ErrNotAuthenticated))
		var zero T
		return zero, ErrNotAuthenticated
	}
	return query.Mutate(ctx, h.cache, m, fn)
}

func noResult(fn func(context.Context) error) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

// Refresh invalida productos y kardex (cambios hechos por otro usuario).
func (h *Hooks) Refresh() {
	h.cache.Invalidate(keyProducts, keyKardex, keyDashboard)
}

// ─── Lecturas ─────────────────────────────────────────────────────────────────

func (h *Hooks) Products(ctx context.Context) ([]dto.ProductResponse, error) {
	return read(ctx, h, ProductsTTL, h.api.Products, keyProducts)
}

// SearchProducts con búsqueda vacía equivale a Products.
func (h *Hooks) SearchProducts(ctx context.Context, q string) ([]dto.ProductResponse, error) {
	if q == "" {
		return h.Products(ctx)
	}
	return read(ctx, h, ProductSearchTTL, func(ctx context.Context) ([]dto.ProductResponse, error) {
		return h.api.SearchProducts(ctx, q)
	}, keyProducts, "search", q)
}

func (h *Hooks) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	return read(ctx, h, CatalogTTL, h.api.Categories, keyCategories)
}

func (h *Hooks) Brands(ctx context.Context) ([]dto.BrandResponse, error) {
	return read(ctx, h, CatalogTTL, h.api.Brands, keyBrands)
}

func (h *Hooks) Movements(ctx context.Context) ([]dto.MovementResponse, error) {
	return read(ctx, h, MovementsTTL, h.api.Movements, keyKardex, "movements")
}

func (h *Hooks) SearchMovements(ctx context.Context, q dto.MovementSearchQuery) ([]dto.MovementResponse, error) {
	return read(ctx, h, MovementsTTL, func(ctx context.Context) ([]dto.MovementResponse, error) {
		return h.api.SearchMovements(ctx, q)
	}, keyKardex, "search", fmt.Sprintf("%+v", q))
}

func (h *Hooks) KardexStats(ctx context.Context, days int) (*dto.KardexStats, error) {
	return read(ctx, h, KardexStatsTTL, func(ctx context.Context) (*dto.KardexStats, error) {
		return h.api.KardexStats(ctx, days)
	}, keyKardex, "stats", days)
}

func (h *Hooks) Users(ctx context.Context, q dto.UserListQuery) ([]dto.UserResponse, error) {
	return read(ctx, h, UsersTTL, func(ctx context.Context) ([]dto.UserResponse, error) {
		return h.api.Users(ctx, q)
	}, keyUsers, "list", fmt.Sprintf("%+v", q))
}

func (h *Hooks) UserStats(ctx context.Context) (*dto.UserStatsResponse, error) {
	return read(ctx, h, UserStatsTTL, h.api.UserStats, keyUsers, "stats")
}

func (h *Hooks) UserActivities(ctx context.Context, id int64, limit int) ([]dto.UserActivityResponse, error) {
	return read(ctx, h, UserActivitiesTTL, func(ctx context.Context) ([]dto.UserActivityResponse, error) {
		return h.api.UserActivities(ctx, id, limit)
	}, keyUsers, "activities", id, limit)
}

func (h *Hooks) Dashboard(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	return read(ctx, h, DashboardTTL, h.api.Dashboard, keyDashboard)
}

// ─── Reportes ─────────────────────────────────────────────────────────────────

// Report los filtros forman parte de la clave; cualquier cambio de stock o catálogo la invalida.
func (h *Hooks) Report(ctx context.Context, kind report.Kind, f report.Filters) (*client.ReportDocument, error) {
	return read(ctx, h, ReportsTTL, func(ctx context.Context) (*client.ReportDocument, error) {
		return h.api.Report(ctx, kind, f)
	}, keyReports, kind, fmt.Sprintf("%+v", f))
}

// ExportReport descarga el archivo del reporte. No invalida nada: exportar no cambia datos.
func (h *Hooks) ExportReport(ctx context.Context, kind report.Kind, f report.Filters, format report.Format) (*client.ExportedFile, error) {
	return mutate(ctx, h, query.Mutation{Name: "report.export", Success: exportSuccess(format)},
		func(ctx context.Context) (*client.ExportedFile, error) { return h.api.ExportReport(ctx, kind, f, format) })
}

func exportSuccess(format report.Format) string {
	switch format {
	case report.FormatXLSX:
		return "Excel generado exitosamente"
	case report.FormatCSV:
		return "CSV generado exitosamente"
	default:
		return "PDF generado exitosamente"
	}
}

// ─── Productos y catálogo ─────────────────────────────────────────────────────

var productInvalidates = []string{keyProducts, keyReports, keyDashboard}

func (h *Hooks) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "product.create", Invalidates: productInvalidates, Success: "Producto creado exitosamente"},
		func(ctx context.Context) (*dto.ProductResponse, error) { return h.api.CreateProduct(ctx, in) })
}

func (h *Hooks) UpdateProduct(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "product.update", Invalidates: productInvalidates, Success: "Producto actualizado exitosamente"},
		func(ctx context.Context) (*dto.ProductResponse, error) { return h.api.UpdateProduct(ctx, id, in) })
}

func (h *Hooks) DeleteProduct(ctx context.Context, id int64) error {
	_, err := mutate(ctx, h, query.Mutation{Name: "product.delete", Invalidates: productInvalidates, Success: "Producto eliminado exitosamente"},
		noResult(func(ctx context.Context) error { return h.api.DeleteProduct(ctx, id) }))
	return err
}

// Las categorías y marcas aparecen en los listados de productos.
var (
	categoryInvalidates = []string{keyCategories, keyProducts, keyReports, keyDashboard}
	brandInvalidates    = []string{keyBrands, keyProducts, keyReports}
)

func (h *Hooks) CreateCategory(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "category.create", Invalidates: categoryInvalidates, Success: "Categoría creada exitosamente"},
		func(ctx context.Context) (*dto.CategoryResponse, error) { return h.api.CreateCategory(ctx, in) })
}

func (h *Hooks) UpdateCategory(ctx context.Context, id int64, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "category.update", Invalidates: categoryInvalidates, Success: "Categoría actualizada exitosamente"},
		func(ctx context.Context) (*dto.CategoryResponse, error) { return h.api.UpdateCategory(ctx, id, in) })
}

func (h *Hooks) DeleteCategory(ctx context.Context, id int64) error {
	_, err := mutate(ctx, h, query.Mutation{Name: "category.delete", Invalidates: categoryInvalidates, Success: "Categoría eliminada exitosamente"},
		noResult(func(ctx context.Context) error { return h.api.DeleteCategory(ctx, id) }))
	return err
}

func (h *Hooks) CreateBrand(ctx context.Context, in dto.BrandRequest) (*dto.BrandResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "brand.create", Invalidates: brandInvalidates, Success: "Marca creada exitosamente"},
		func(ctx context.Context) (*dto.BrandResponse, error) { return h.api.CreateBrand(ctx, in) })
}

func (h *Hooks) UpdateBrand(ctx context.Context, id int64, in dto.BrandRequest) (*dto.BrandResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "brand.update", Invalidates: brandInvalidates, Success: "Marca actualizada exitosamente"},
		func(ctx context.Context) (*dto.BrandResponse, error) { return h.api.UpdateBrand(ctx, id, in) })
}

func (h *Hooks) DeleteBrand(ctx context.Context, id int64) error {
	_, err := mutate(ctx, h, query.Mutation{Name: "brand.delete", Invalidates: brandInvalidates, Success: "Marca eliminada exitosamente"},
		noResult(func(ctx context.Context) error { return h.api.DeleteBrand(ctx, id) }))
	return err
}

// ─── Kardex ───────────────────────────────────────────────────────────────────

var movementInvalidates = []string{keyKardex, keyProducts, keyReports, keyDashboard}

func (h *Hooks) CreateMovement(ctx context.Context, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "movement.create", Invalidates: movementInvalidates, Success: "Movimiento registrado exitosamente"},
		func(ctx context.Context) (*dto.MovementResponse, error) { return h.api.CreateMovement(ctx, in) })
}

func (h *Hooks) DeleteMovement(ctx context.Context, id int64) (*dto.MovementResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "movement.delete", Invalidates: movementInvalidates, Success: "Movimiento eliminado exitosamente"},
		func(ctx context.Context) (*dto.MovementResponse, error) { return h.api.DeleteMovement(ctx, id) })
}

// ─── Usuarios ─────────────────────────────────────────────────────────────────

var userInvalidates = []string{keyUsers}

func (h *Hooks) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "user.create", Invalidates: userInvalidates, Success: "Usuario creado exitosamente"},
		func(ctx context.Context) (*dto.UserResponse, error) { return h.api.CreateUser(ctx, in) })
}

func (h *Hooks) InviteUser(ctx context.Context, in dto.InviteUserRequest) (*dto.UserResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "user.invite", Invalidates: userInvalidates, Success: "Invitación enviada exitosamente"},
		func(ctx context.Context) (*dto.UserResponse, error) { return h.api.InviteUser(ctx, in) })
}

func (h *Hooks) UpdateUser(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return mutate(ctx, h, query.Mutation{Name: "user.update", Invalidates: userInvalidates, Success: "Usuario actualizado exitosamente"},
		func(ctx context.Context) (*dto.UserResponse, error) { return h.api.UpdateUser(ctx, id, in) })
}

// ToggleUserStatus el mensaje de éxito depende del estado resultante, por eso se notifica aparte.
func (h *Hooks) ToggleUserStatus(ctx context.Context, id int64) (*dto.UserResponse, error) {
	u, err := mutate(ctx, h, query.Mutation{Name: "user.toggle", Invalidates: userInvalidates},
		func(ctx context.Context) (*dto.UserResponse, error) { return h.api.ToggleUserStatus(ctx, id) })
	if err != nil {
		return nil, err
	}
	state := "desactivado"
	if u.Active {
		state = "activado"
	}
	h.cache.Notify().Success(fmt.Sprintf("Usuario %s exitosamente", state))
	return u, nil
}

func (h *Hooks) DeleteUser(ctx context.Context, id int64) error {
	_, err := mutate(ctx, h, query.Mutation{Name: "user.delete", Invalidates: userInvalidates, Success: "Usuario eliminado exitosamente"},
		noResult(func(ctx context.Context) error { return h.api.DeleteUser(ctx, id) }))
	return err
}

// ResetUserPassword envía el correo de recuperación al usuario.
func (h *Hooks) ResetUserPassword(ctx context.Context, id int64) error {
	_, err := mutate(ctx, h, query.Mutation{Name: "user.reset-password", Success: "Email de recuperación enviado"},
		noResult(func(ctx context.Context) error { return h.api.ResetUserPassword(ctx, id) }))
	return err
}
