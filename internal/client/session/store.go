// Package session guarda la identidad autenticada y el tema del panel, persistidos en un
// archivo JSON local. Se inicializa explícitamente con Init.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/client"
	"github.com/jhoicas/kardex-admin/internal/client/query"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

// Theme tema visual.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme acepta "light" o "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("tema inválido %q: use light o dark", s)
	}
}

// Provider proveedor de autenticación. Lo implementa *client.Client.
type Provider interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*dto.UserResponse, error)
	SetToken(token string)
	OnAuthChange(fn func(client.AuthEvent)) (unsubscribe func())
}

// State instantánea del store. Loading no se persiste.
type State struct {
	User          *dto.UserResponse `json:"user"`
	Authenticated bool              `json:"authenticated"`
	Token         string            `json:"token,omitempty"`
	Theme         Theme             `json:"theme"`
	Loading       bool              `json:"-"`
}

// Subscription escucha del proveedor registrada por Init.
type Subscription struct {
	once  sync.Once
	close func()
}

// Close deja de recibir eventos del proveedor.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// Store fuente única de la sesión del proceso.
type Store struct {
	provider Provider
	path     string
	notify   query.Notifier
	log      *logger.Logger

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextID  int
	version uint64

	// saveMu ordena las escrituras a disco: una instantánea más vieja nunca pisa a una más nueva.
	saveMu sync.Mutex
	saved  uint64
}

// New construye el store. path vacío desactiva la persistencia.
func New(provider Provider, path string, notify query.Notifier, log *logger.Logger) *Store {
	if notify == nil {
		notify = query.NopNotifier{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		provider: provider,
		path:     path,
		notify:   notify,
		log:      log.Named("session"),
		state:    State{Theme: ThemeLight},
		subs:     make(map[int]func(State)),
	}
}

// Init restaura el estado persistido, valida la sesión contra el proveedor y se suscribe a sus
// eventos. Un error de red conserva la sesión guardada.
func (s *Store) Init(ctx context.Context) (*Subscription, error) {
	if err := s.load(); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("estado de sesión ilegible, se descarta")
	}
	s.update(func(st *State) { st.Loading = true })

	var initErr error
	if tok := s.Snapshot().Token; tok != "" {
		s.provider.SetToken(tok)
		user, err := s.provider.Session(ctx)
		switch {
		case err != nil:
			initErr = fmt.Errorf("verificar sesión: %w", err)
		case user == nil:
			s.update(clearIdentity)
		default:
			s.update(func(st *State) { st.User, st.Authenticated = user, true })
		}
	}
	s.update(func(st *State) { st.Loading = false })

	unsubscribe := s.provider.OnAuthChange(s.onAuthEvent)
	return &Subscription{close: unsubscribe}, initErr
}

func (s *Store) onAuthEvent(ev client.AuthEvent) {
	switch ev.Type {
	case client.SignedIn:
		s.update(func(st *State) { st.User, st.Token, st.Authenticated = ev.User, ev.Token, true })
	case client.SignedOut:
		s.update(clearIdentity)
	}
}

func clearIdentity(st *State) {
	st.User, st.Token, st.Authenticated = nil, "", false
}

// Login inicia sesión y notifica el resultado.
func (s *Store) Login(ctx context.Context, email, password string) (*dto.UserResponse, error) {
	s.update(func(st *State) { st.Loading = true })
	defer s.update(func(st *State) { st.Loading = false })

	out, err := s.provider.Login(ctx, email, password)
	if err != nil {
		s.notify.Error(query.Message(err))
		return nil, err
	}
	user := out.User
	s.update(func(st *State) { st.User, st.Token, st.Authenticated = &user, out.Token, true })
	s.notify.Success("Sesión iniciada. Hola, " + user.Name)
	return &user, nil
}

// Register crea la cuenta. No inicia sesión.
func (s *Store) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	s.update(func(st *State) { st.Loading = true })
	defer s.update(func(st *State) { st.Loading = false })

	user, err := s.provider.Register(ctx, in)
	if err != nil {
		s.notify.Error(query.Message(err))
		return nil, err
	}
	s.notify.Success("Cuenta creada, ya puede iniciar sesión")
	return user, nil
}

// Logout cierra la sesión. La identidad local se borra aunque el servidor no responda.
func (s *Store) Logout(ctx context.Context) error {
	s.update(func(st *State) { st.Loading = true })
	err := s.provider.Logout(ctx)
	s.update(func(st *State) {
		clearIdentity(st)
		st.Loading = false
	})
	if err != nil {
		s.notify.Error(query.Message(err))
		return err
	}
	s.notify.Success("Sesión cerrada")
	return nil
}

// Snapshot copia del estado actual.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity empresa y usuario de la sesión.
func (s *Store) Identity() (companyID, userID int64, ok bool) {
	st := s.Snapshot()
	if !st.Authenticated || st.User == nil {
		return 0, 0, false
	}
	return st.User.CompanyID, st.User.ID, true
}

// Theme tema actual.
func (s *Store) Theme() Theme { return s.Snapshot().Theme }

// SetTheme fija el tema y lo persiste.
func (s *Store) SetTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	s.update(func(st *State) { st.Theme = t })
	return nil
}

// ToggleTheme alterna entre claro y oscuro.
func (s *Store) ToggleTheme() Theme {
	var next Theme
	s.update(func(st *State) {
		if st.Theme == ThemeDark {
			st.Theme = ThemeLight
		} else {
			st.Theme = ThemeDark
		}
		next = st.Theme
	})
	return next
}

// Subscribe registra fn para cada cambio de estado. La función devuelta la desregistra.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	before := s.state
	fn(&s.state)
	after := s.state
	changed := persisted(before) != persisted(after)
	if changed {
		s.version++
	}
	version := s.version
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	if changed {
		s.persist(after, version)
	}
	for _, sub := range subs {
		sub(after)
	}
}

func (s *Store) persist(st State, version uint64) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.saved {
		return
	}
	if err := s.save(st); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("no se pudo guardar la sesión")
		return
	}
	s.saved = version
}

// persistedState campos comparables de lo que se escribe a disco.
type persistedState struct {
	userID        int64
	authenticated bool
	token         string
	theme         Theme
}

func persisted(st State) persistedState {
	p := persistedState{authenticated: st.Authenticated, token: st.Token, theme: st.Theme}
	if st.User != nil {
		p.userID = st.User.ID
	}
	return p
}

func (s *Store) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if _, err := ParseTheme(string(st.Theme)); err != nil {
		st.Theme = ThemeLight
	}
	if st.Token == "" {
		clearIdentity(&st)
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// save escribe en un temporal y renombra para no dejar el archivo a medias.
func (s *Store) save(st State) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
