// Package memrepo implementa los repositorios de usuarios, credenciales, actividades, empresas y
// catálogo en memoria, para los tests de los casos de uso.
package memrepo

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
)

// ErrInjected error que devuelven los repos cuando el Store tiene FailNextWrite.
var ErrInjected = errors.New("memrepo: fallo inyectado")

// Store estado compartido por todos los repos en memoria.
type Store struct {
	mu             sync.Mutex
	seq            int64
	users          map[int64]*entity.User
	credentials    map[string]*entity.Credential // por authID
	activities     []*entity.UserActivity
	companies      map[int64]*entity.Company
	products       map[int64]*entity.Product
	categories     map[int64]*entity.Category
	brands         map[int64]*entity.Brand
	movementCounts map[int64]int // por usuario

	// FailUserCreate hace fallar la próxima creación de usuario (atomicidad de cuentas).
	FailUserCreate bool
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		users:          make(map[int64]*entity.User),
		credentials:    make(map[string]*entity.Credential),
		companies:      make(map[int64]*entity.Company),
		products:       make(map[int64]*entity.Product),
		categories:     make(map[int64]*entity.Category),
		brands:         make(map[int64]*entity.Brand),
		movementCounts: make(map[int64]int),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// AddCompany registra una empresa.
func (s *Store) AddCompany(c *entity.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
}

// SetMovementCount fija la cantidad de movimientos de kardex de un usuario.
func (s *Store) SetMovementCount(userID int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movementCounts[userID] = n
}

// CountByUser cuenta movimientos por usuario, como KardexRepository.CountByUser.
func (s *Store) CountByUser(_ context.Context, companyID int64) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]int, len(s.movementCounts))
	for k, v := range s.movementCounts {
		if u, ok := s.users[k]; ok && u.CompanyID == companyID {
			out[k] = v
		}
	}
	return out, nil
}

// Activities devuelve una copia de la auditoría registrada.
func (s *Store) Activities() []entity.UserActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.UserActivity, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, *a)
	}
	return out
}

// Credential devuelve la credencial de un authID (nil si no existe).
func (s *Store) Credential(authID string) *entity.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[authID]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// RunAccounts ejecuta fn y, si falla, restaura usuarios y credenciales al estado previo.
func (s *Store) RunAccounts(ctx context.Context, fn func(repository.CredentialRepository, repository.UserRepository) error) error {
	s.mu.Lock()
	users := make(map[int64]*entity.User, len(s.users))
	for k, v := range s.users {
		cp := *v
		users[k] = &cp
	}
	creds := make(map[string]*entity.Credential, len(s.credentials))
	for k, v := range s.credentials {
		cp := *v
		creds[k] = &cp
	}
	s.mu.Unlock()

	if err := fn(s.CredentialRepo(), s.UserRepo()); err != nil {
		s.mu.Lock()
		s.users, s.credentials = users, creds
		s.mu.Unlock()
		return err
	}
	return nil
}

// ── Users ────────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (s *Store) UserRepo() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailUserCreate {
		r.s.FailUserCreate = false
		return ErrInjected
	}
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	u.ID = r.s.nextID()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) find(pred func(*entity.User) bool) *entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if pred(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *UserRepo) GetByAuthID(_ context.Context, authID string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.AuthID == authID }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) SetStatus(_ context.Context, id int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *UserRepo) List(_ context.Context, companyID int64, f repository.UserFilter) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.User
	for _, u := range r.s.users {
		switch {
		case u.CompanyID != companyID:
			continue
		case !f.IncludeDeleted && f.Status != entity.UserDeleted && u.Status == entity.UserDeleted:
			continue
		case search != "" && !strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search):
			continue
		case f.Role != "" && u.Role != f.Role:
			continue
		case f.Status != "" && u.Status != f.Status:
			continue
		case f.From != nil && u.RegisteredAt.Before(*f.From):
			continue
		case f.To != nil && u.RegisteredAt.After(*f.To):
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *UserRepo) Stats(_ context.Context, companyID int64, monthStart time.Time) (*repository.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var st repository.UserStats
	for _, u := range r.s.users {
		if u.CompanyID != companyID || u.Status == entity.UserDeleted {
			continue
		}
		st.Total++
		switch u.Status {
		case entity.UserActive:
			st.Active++
		case entity.UserInactive:
			st.Inactive++
		}
		switch u.Role {
		case entity.RoleSuperAdmin:
			st.SuperAdmins++
		case entity.RoleAdmin:
			st.Admins++
		case entity.RoleEmployee:
			st.Employees++
		}
		if !u.RegisteredAt.Before(monthStart) {
			st.RegisteredThisMonth++
		}
	}
	return &st, nil
}

// ── Credentials ──────────────────────────────────────────────────────────────

// CredentialRepo implementa repository.CredentialRepository.
type CredentialRepo struct{ s *Store }

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

func (s *Store) CredentialRepo() *CredentialRepo { return &CredentialRepo{s: s} }

func (r *CredentialRepo) Create(_ context.Context, c *entity.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.credentials {
		if strings.EqualFold(other.Email, c.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.s.credentials[c.AuthID] = &cp
	return nil
}

func (r *CredentialRepo) GetByEmail(_ context.Context, email string) (*entity.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.credentials {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CredentialRepo) GetByAuthID(_ context.Context, authID string) (*entity.Credential, error) {
	return r.s.Credential(authID), nil
}

func (r *CredentialRepo) UpdatePassword(_ context.Context, authID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.credentials[authID]
	if !ok {
		return domain.ErrNotFound
	}
	c.PasswordHash = hash
	return nil
}

// ── Activities ───────────────────────────────────────────────────────────────

// ActivityRepo implementa repository.ActivityRepository.
type ActivityRepo struct{ s *Store }

var _ repository.ActivityRepository = (*ActivityRepo)(nil)

func (s *Store) ActivityRepo() *ActivityRepo { return &ActivityRepo{s: s} }

func (r *ActivityRepo) Create(_ context.Context, a *entity.UserActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.nextID()
	cp := *a
	r.s.activities = append(r.s.activities, &cp)
	return nil
}

func (r *ActivityRepo) ListByUser(_ context.Context, userID int64, limit int) ([]*entity.UserActivity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.UserActivity
	for i := len(r.s.activities) - 1; i >= 0; i-- {
		a := r.s.activities[i]
		if a.UserID != userID {
			continue
		}
		cp := *a
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── Companies ────────────────────────────────────────────────────────────────

// CompanyRepo implementa repository.CompanyRepository.
type CompanyRepo struct{ s *Store }

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

func (s *Store) CompanyRepo() *CompanyRepo { return &CompanyRepo{s: s} }

func (r *CompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository. Los productos marcados con MarkInUse
// no se pueden borrar.
type ProductRepo struct {
	s     *Store
	inUse map[int64]bool
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (s *Store) ProductRepo() *ProductRepo { return &ProductRepo{s: s, inUse: make(map[int64]bool)} }

// MarkInUse simula un producto referenciado por el kardex.
func (r *ProductRepo) MarkInUse(id int64) { r.inUse[id] = true }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *p
	cp.Stock = cur.Stock
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateStock(_ context.Context, id int64, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	if r.inUse[id] {
		return domain.ErrInUse
	}
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepo) List(ctx context.Context, companyID int64) ([]*entity.ProductListing, error) {
	return r.Search(ctx, companyID, "")
}

func (r *ProductRepo) Search(_ context.Context, companyID int64, query string) ([]*entity.ProductListing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*entity.ProductListing
	for _, p := range r.s.products {
		if p.CompanyID != companyID {
			continue
		}
		l := &entity.ProductListing{Product: *p}
		if c, ok := r.s.categories[p.CategoryID]; ok {
			l.Category, l.CategoryColor = c.Description, c.Color
		}
		if b, ok := r.s.brands[p.BrandID]; ok {
			l.Brand = b.Description
		}
		if q != "" && !strings.Contains(strings.ToLower(l.Description), q) &&
			!strings.Contains(strings.ToLower(l.Category), q) &&
			!strings.Contains(strings.ToLower(l.Brand), q) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

// CategoryRepo implementa repository.CategoryRepository.
type CategoryRepo struct{ s *Store }

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (s *Store) CategoryRepo() *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.CompanyID == c.CompanyID && strings.EqualFold(other.Description, c.Description) {
			return domain.ErrDuplicate
		}
	}
	c.ID = r.s.nextID()
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return domain.ErrInUse
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepo) ListByCompany(_ context.Context, companyID int64) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Category
	for _, c := range r.s.categories {
		if c.CompanyID == companyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

// BrandRepo implementa repository.BrandRepository.
type BrandRepo struct{ s *Store }

var _ repository.BrandRepository = (*BrandRepo)(nil)

func (s *Store) BrandRepo() *BrandRepo { return &BrandRepo{s: s} }

func (r *BrandRepo) Create(_ context.Context, b *entity.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.brands {
		if other.CompanyID == b.CompanyID && strings.EqualFold(other.Description, b.Description) {
			return domain.ErrDuplicate
		}
	}
	b.ID = r.s.nextID()
	cp := *b
	r.s.brands[b.ID] = &cp
	return nil
}

func (r *BrandRepo) GetByID(_ context.Context, id int64) (*entity.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.brands[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BrandRepo) Update(_ context.Context, b *entity.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.brands[b.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *b
	r.s.brands[b.ID] = &cp
	return nil
}

func (r *BrandRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.brands[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.products {
		if p.BrandID == id {
			return domain.ErrInUse
		}
	}
	delete(r.s.brands, id)
	return nil
}

func (r *BrandRepo) ListByCompany(_ context.Context, companyID int64) ([]*entity.Brand, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Brand
	for _, b := range r.s.brands {
		if b.CompanyID == companyID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}
