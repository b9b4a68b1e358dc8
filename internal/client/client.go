// Package client es el SDK HTTP del panel: lo usan los hooks de datos, el store de sesión y la CLI.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/report"
)

// DefaultTimeout plazo de cada request cuando el contexto no trae deadline.
const DefaultTimeout = 15 * time.Second

// APIError respuesta de error de la API (dto.ErrorResponse o dto.ValidationErrorResponse).
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// IsStatus informa si err es un APIError con el status dado.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// AuthEventType tipo de cambio de sesión.
type AuthEventType int

const (
	SignedIn AuthEventType = iota + 1
	SignedOut
)

// AuthEvent cambio de sesión notificado a los suscriptores de OnAuthChange.
type AuthEvent struct {
	Type  AuthEventType
	User  *dto.UserResponse
	Token string
}

// Client habla con la API de kardex-admin sobre el cliente HTTP de Fiber.
type Client struct {
	baseURL string
	http    *fiber.Client

	mu        sync.RWMutex
	token     string
	listeners map[int]func(AuthEvent)
	nextID    int
}

// New construye el cliente. baseURL sin barra final, ej: http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fiber.Client{
			UserAgent:   "kardex-admin-client",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
		listeners: make(map[int]func(AuthEvent)),
	}
}

// SetToken fija el token Bearer (sesión restaurada desde disco).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token devuelve el token actual.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnAuthChange registra fn para los eventos de login/logout. La función devuelta la desregistra.
func (c *Client) OnAuthChange(fn func(AuthEvent)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) emit(ev AuthEvent) {
	c.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) agent(method, path string) *fiber.Agent {
	u := c.baseURL + path
	switch method {
	case fiber.MethodPost:
		return c.http.Post(u)
	case fiber.MethodPut:
		return c.http.Put(u)
	case fiber.MethodPatch:
		return c.http.Patch(u)
	case fiber.MethodDelete:
		return c.http.Delete(u)
	default:
		return c.http.Get(u)
	}
}

// send ejecuta el request. resp, si no es nil, recibe la respuesta completa (headers incluidos).
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any, resp *fiber.Response) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	a := c.agent(method, path)
	if len(query) > 0 {
		a.QueryString(query.Encode())
	}
	if tok := c.Token(); tok != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	if in != nil {
		a.JSON(in)
	}
	timeout := DefaultTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	a.Timeout(timeout)
	if resp != nil {
		a.SetResponse(resp)
	}

	status, body, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		apiErr := decodeError(status, body)
		if status == fiber.StatusUnauthorized && c.Token() != "" && !strings.HasPrefix(path, "/api/auth/login") {
			c.SetToken("")
			c.emit(AuthEvent{Type: SignedOut})
		}
		return status, body, apiErr
	}
	return status, body, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	_, body, err := c.send(ctx, method, path, query, in, nil)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decodificar respuesta de %s: %w", path, err)
	}
	return nil
}

func decodeError(status int, body []byte) *APIError {
	var v dto.ValidationErrorResponse
	if err := json.Unmarshal(body, &v); err != nil || v.Code == "" {
		return &APIError{Status: status, Code: "HTTP_" + strconv.Itoa(status), Message: strings.TrimSpace(string(body))}
	}
	return &APIError{Status: status, Code: v.Code, Message: v.Message, Fields: v.Fields}
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

// ─── Auth ────────────────────────────────────────────────────────────────────

// Login inicia sesión, guarda el token y notifica SignedIn.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/auth/login", nil, dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	user := out.User
	c.emit(AuthEvent{Type: SignedIn, User: &user, Token: out.Token})
	return &out, nil
}

// Register crea la cuenta (rol empleado). No inicia sesión.
func (c *Client) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revoca el token en el servidor y lo descarta localmente aunque la llamada falle.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.Token() != "" {
		err = c.do(ctx, fiber.MethodPost, "/api/auth/logout", nil, nil, nil)
	}
	c.SetToken("")
	c.emit(AuthEvent{Type: SignedOut})
	if IsStatus(err, fiber.StatusUnauthorized) {
		return nil
	}
	return err
}

// Session devuelve el perfil de la sesión actual, o nil si no hay token.
func (c *Client) Session(ctx context.Context) (*dto.UserResponse, error) {
	if c.Token() == "" {
		return nil, nil
	}
	var out dto.UserResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/auth/session", nil, nil, &out); err != nil {
		if IsStatus(err, fiber.StatusUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset dispara el correo de recuperación.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, fiber.MethodPost, "/api/auth/password-reset", nil, dto.PasswordResetRequest{Email: email}, nil)
}

// ConfirmPasswordReset fija la contraseña nueva con el token del correo.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	return c.do(ctx, fiber.MethodPost, "/api/auth/password-reset/confirm", nil,
		dto.PasswordResetConfirm{Token: token, Password: password}, nil)
}

// ─── Productos y catálogo ─────────────────────────────────────────────────────

func (c *Client) Products(ctx context.Context) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/products", nil, nil, &out)
}

func (c *Client) SearchProducts(ctx context.Context, q string) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/products/search", url.Values{"q": {q}}, nil, &out)
}

func (c *Client) Product(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, fiber.MethodGet, idPath("/api/products", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/products", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, fiber.MethodPut, idPath("/api/products", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodDelete, idPath("/api/products", id), nil, nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	var out []dto.CategoryResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/categories", nil, nil, &out)
}

func (c *Client) CreateCategory(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	var out dto.CategoryResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	var out dto.CategoryResponse
	if err := c.do(ctx, fiber.MethodPut, idPath("/api/categories", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodDelete, idPath("/api/categories", id), nil, nil, nil)
}

func (c *Client) Brands(ctx context.Context) ([]dto.BrandResponse, error) {
	var out []dto.BrandResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/brands", nil, nil, &out)
}

func (c *Client) CreateBrand(ctx context.Context, in dto.BrandRequest) (*dto.BrandResponse, error) {
	var out dto.BrandResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/brands", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBrand(ctx context.Context, id int64, in dto.BrandRequest) (*dto.BrandResponse, error) {
	var out dto.BrandResponse
	if err := c.do(ctx, fiber.MethodPut, idPath("/api/brands", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodDelete, idPath("/api/brands", id), nil, nil, nil)
}

// ─── Kardex ───────────────────────────────────────────────────────────────────

func (c *Client) Movements(ctx context.Context) ([]dto.MovementResponse, error) {
	var out []dto.MovementResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/kardex", nil, nil, &out)
}

// SearchMovements filtra por fechas, tipo, producto y usuario. Los campos vacíos no se envían.
func (c *Client) SearchMovements(ctx context.Context, q dto.MovementSearchQuery) ([]dto.MovementResponse, error) {
	v := url.Values{}
	setIf(v, "start_date", q.StartDate)
	setIf(v, "end_date", q.EndDate)
	setIf(v, "type", q.Type)
	setInt(v, "product_id", q.ProductID)
	setInt(v, "user_id", q.UserID)
	setInt(v, "limit", int64(q.Limit))
	setInt(v, "offset", int64(q.Offset))
	var out []dto.MovementResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/kardex/search", v, nil, &out)
}

func (c *Client) CreateMovement(ctx context.Context, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	var out dto.MovementResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/kardex", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMovement anula el movimiento (revierte el stock).
func (c *Client) DeleteMovement(ctx context.Context, id int64) (*dto.MovementResponse, error) {
	var out dto.MovementResponse
	if err := c.do(ctx, fiber.MethodDelete, idPath("/api/kardex", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) KardexStats(ctx context.Context, days int) (*dto.KardexStats, error) {
	v := url.Values{}
	setInt(v, "days", int64(days))
	var out dto.KardexStats
	if err := c.do(ctx, fiber.MethodGet, "/api/kardex/stats", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Reportes ─────────────────────────────────────────────────────────────────

// ReportDocument vista genérica de cualquier variante de reporte.
type ReportDocument struct {
	report.Header
	Summary map[string]any   `json:"summary"`
	Rows    []map[string]any `json:"data"`
}

// ExportedFile archivo devuelto por /export.
type ExportedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func filterValues(f report.Filters) url.Values {
	v := url.Values{}
	setIf(v, "search", f.Search)
	setInt(v, "category_id", f.CategoryID)
	setInt(v, "brand_id", f.BrandID)
	if f.LowStockOnly {
		v.Set("low_stock_only", "true")
	}
	setIf(v, "start_date", f.StartDate)
	setIf(v, "end_date", f.EndDate)
	setIf(v, "movement_type", f.MovementType)
	setInt(v, "product_id", f.ProductID)
	return v
}

func (c *Client) Report(ctx context.Context, kind report.Kind, f report.Filters) (*ReportDocument, error) {
	var out ReportDocument
	if err := c.do(ctx, fiber.MethodGet, "/api/reports/"+string(kind), filterValues(f), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportReport descarga el reporte renderizado. El nombre sale de Content-Disposition.
func (c *Client) ExportReport(ctx context.Context, kind report.Kind, f report.Filters, format report.Format) (*ExportedFile, error) {
	v := filterValues(f)
	v.Set("format", string(format))

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	_, body, err := c.send(ctx, fiber.MethodGet, "/api/reports/"+string(kind)+"/export", v, nil, resp)
	if err != nil {
		return nil, err
	}
	file := &ExportedFile{
		Name:        attachmentName(string(resp.Header.Peek(fiber.HeaderContentDisposition))),
		ContentType: string(resp.Header.ContentType()),
		Data:        append([]byte(nil), body...),
	}
	return file, nil
}

func attachmentName(disposition string) string {
	_, after, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return ""
	}
	if name, err := strconv.Unquote(after); err == nil {
		return name
	}
	return strings.Trim(after, `"`)
}

// ─── Usuarios ─────────────────────────────────────────────────────────────────

func (c *Client) Users(ctx context.Context, q dto.UserListQuery) ([]dto.UserResponse, error) {
	v := url.Values{}
	setIf(v, "search", q.Search)
	setIf(v, "role", q.Role)
	setIf(v, "status", q.Status)
	setIf(v, "registered_from", q.RegisteredFrom)
	setIf(v, "registered_to", q.RegisteredTo)
	var out []dto.UserResponse
	return out, c.do(ctx, fiber.MethodGet, "/api/users", v, nil, &out)
}

func (c *Client) UserStats(ctx context.Context) (*dto.UserStatsResponse, error) {
	var out dto.UserStatsResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/users/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/users", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InviteUser(ctx context.Context, in dto.InviteUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/users/invite", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, fiber.MethodPut, idPath("/api/users", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ToggleUserStatus(ctx context.Context, id int64) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, fiber.MethodPatch, idPath("/api/users", id)+"/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodDelete, idPath("/api/users", id), nil, nil, nil)
}

// ResetUserPassword envía al usuario el correo de recuperación.
func (c *Client) ResetUserPassword(ctx context.Context, id int64) error {
	return c.do(ctx, fiber.MethodPost, idPath("/api/users", id)+"/reset-password", nil, nil, nil)
}

func (c *Client) UserActivities(ctx context.Context, id int64, limit int) ([]dto.UserActivityResponse, error) {
	v := url.Values{}
	setInt(v, "limit", int64(limit))
	var out []dto.UserActivityResponse
	return out, c.do(ctx, fiber.MethodGet, idPath("/api/users", id)+"/activities", v, nil, &out)
}

// ─── Dashboard ────────────────────────────────────────────────────────────────

func (c *Client) Dashboard(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	var out dto.DashboardSummaryDTO
	if err := c.do(ctx, fiber.MethodGet, "/api/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, n int64) {
	if n > 0 {
		v.Set(key, strconv.FormatInt(n, 10))
	}
}
