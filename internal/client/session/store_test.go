package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/client"
)

type fakeProvider struct {
	token     string
	session   *dto.UserResponse
	sessErr   error
	loginErr  error
	listeners map[int]func(client.AuthEvent)
	nextID    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{listeners: map[int]func(client.AuthEvent){}}
}

func (p *fakeProvider) emit(ev client.AuthEvent) {
	for _, fn := range p.listeners {
		fn(ev)
	}
}

func (p *fakeProvider) Login(_ context.Context, email, _ string) (*dto.LoginResponse, error) {
	if p.loginErr != nil {
		return nil, p.loginErr
	}
	user := dto.UserResponse{ID: 7, CompanyID: 3, Name: "Ana", Email: email, Role: "admin"}
	p.token = "tok-nuevo"
	p.emit(client.AuthEvent{Type: client.SignedIn, User: &user, Token: p.token})
	return &dto.LoginResponse{Token: p.token, ExpiresIn: 3600, User: user}, nil
}

func (p *fakeProvider) Register(_ context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{ID: 9, CompanyID: in.CompanyID, Name: in.Name, Email: in.Email, Role: "empleado"}, nil
}

func (p *fakeProvider) Logout(context.Context) error {
	p.token = ""
	p.emit(client.AuthEvent{Type: client.SignedOut})
	return nil
}

func (p *fakeProvider) Session(context.Context) (*dto.UserResponse, error) {
	return p.session, p.sessErr
}

func (p *fakeProvider) SetToken(token string) { p.token = token }

func (p *fakeProvider) OnAuthChange(fn func(client.AuthEvent)) func() {
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() { delete(p.listeners, id) }
}

type spyNotifier struct{ ok, fail []string }

func (s *spyNotifier) Success(msg string) { s.ok = append(s.ok, msg) }
func (s *spyNotifier) Error(msg string)   { s.fail = append(s.fail, msg) }

func writeState(t *testing.T, path string, st State) {
	t.Helper()
	data, err := json.Marshal(st)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func readState(t *testing.T, path string) State {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st State
	require.NoError(t, json.Unmarshal(data, &st))
	return st
}

func TestInit_RestauraSesionValida(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeState(t, path, State{
		User:          &dto.UserResponse{ID: 7, CompanyID: 3, Name: "Ana viejo"},
		Authenticated: true,
		Token:         "tok-guardado",
		Theme:         ThemeDark,
	})
	p := newFakeProvider()
	p.session = &dto.UserResponse{ID: 7, CompanyID: 3, Name: "Ana"}

	s := New(p, path, nil, nil)
	sub, err := s.Init(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, "tok-guardado", p.token)
	st := s.Snapshot()
	assert.True(t, st.Authenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, "Ana", st.User.Name)
	assert.Equal(t, ThemeDark, s.Theme())

	company, user, ok := s.Identity()
	assert.True(t, ok)
	assert.Equal(t, int64(3), company)
	assert.Equal(t, int64(7), user)
}

func TestInit_SesionExpiradaLimpiaIdentidad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeState(t, path, State{
		User:          &dto.UserResponse{ID: 7, CompanyID: 3},
		Authenticated: true,
		Token:         "tok-vencido",
		Theme:         ThemeDark,
	})
	p := newFakeProvider()

	s := New(p, path, nil, nil)
	sub, err := s.Init(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	_, _, ok := s.Identity()
	assert.False(t, ok)
	saved := readState(t, path)
	assert.Empty(t, saved.Token)
	assert.False(t, saved.Authenticated)
	assert.Equal(t, ThemeDark, saved.Theme)
}

func TestInit_ErrorDeRedConservaSesion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeState(t, path, State{
		User:          &dto.UserResponse{ID: 7, CompanyID: 3},
		Authenticated: true,
		Token:         "tok-guardado",
		Theme:         ThemeLight,
	})
	p := newFakeProvider()
	p.sessErr = errors.New("connection refused")

	s := New(p, path, nil, nil)
	sub, err := s.Init(context.Background())
	require.Error(t, err)
	defer sub.Close()

	_, _, ok := s.Identity()
	assert.True(t, ok)
	assert.False(t, s.Snapshot().Loading)
}

func TestInit_ArchivoCorruptoSeDescarta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{no es json"), 0o600))

	s := New(newFakeProvider(), path, nil, nil)
	sub, err := s.Init(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	assert.False(t, s.Snapshot().Authenticated)
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestLogin_PersisteYNotifica(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")
	p := newFakeProvider()
	spy := &spyNotifier{}
	s := New(p, path, spy, nil)
	sub, err := s.Init(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	user, err := s.Login(context.Background(), "ana@empresa.co", "secreta")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	require.Len(t, spy.ok, 1)
	assert.Contains(t, spy.ok[0], "Ana")

	saved := readState(t, path)
	assert.True(t, saved.Authenticated)
	assert.Equal(t, "tok-nuevo", saved.Token)
	assert.Equal(t, "ana@empresa.co", saved.User.Email)
}

func TestLogin_ErrorNotificaYNoAutentica(t *testing.T) {
	p := newFakeProvider()
	p.loginErr = &client.APIError{Status: 401, Code: "INVALID_CREDENTIALS", Message: "credenciales inválidas"}
	spy := &spyNotifier{}
	s := New(p, "", spy, nil)

	_, err := s.Login(context.Background(), "ana@empresa.co", "mala")
	require.Error(t, err)
	require.Len(t, spy.fail, 1)
	assert.Empty(t, spy.ok)
	assert.False(t, s.Snapshot().Authenticated)
	assert.False(t, s.Snapshot().Loading)
}

func TestLogout_LimpiaEstadoPersistido(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	p := newFakeProvider()
	s := New(p, path, nil, nil)
	sub, err := s.Init(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	_, err = s.Login(context.Background(), "ana@empresa.co", "secreta")
	require.NoError(t, err)
	require.NoError(t, s.Logout(context.Background()))

	saved := readState(t, path)
	assert.False(t, saved.Authenticated)
	assert.Empty(t, saved.Token)
	assert.Nil(t, saved.User)
}

func TestEventoSignedOutDelProveedor(t *testing.T) {
	p := newFakeProvider()
	s := New(p, "", nil, nil)
	sub, err := s.Init(context.Background())
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "ana@empresa.co", "secreta")
	require.NoError(t, err)

	// 401 del servidor
	p.emit(client.AuthEvent{Type: client.SignedOut})
	_, _, ok := s.Identity()
	assert.False(t, ok)

	sub.Close()
	sub.Close()
	assert.Empty(t, p.listeners)

	user := dto.UserResponse{ID: 1, CompanyID: 1}
	p.emit(client.AuthEvent{Type: client.SignedIn, User: &user, Token: "x"})
	assert.False(t, s.Snapshot().Authenticated)
}

func TestTema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(newFakeProvider(), path, nil, nil)

	assert.Equal(t, ThemeLight, s.Theme())
	assert.Equal(t, ThemeDark, s.ToggleTheme())
	assert.Equal(t, ThemeDark, readState(t, path).Theme)
	assert.Equal(t, ThemeLight, s.ToggleTheme())

	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())
	assert.Error(t, s.SetTheme("sepia"))
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestTema_ConcurrenteElArchivoQuedaConElUltimoEstado(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(newFakeProvider(), path, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleTheme()
		}()
	}
	wg.Wait()

	assert.Equal(t, s.Theme(), readState(t, path).Theme)
}

func TestPersist_InstantaneaViejaNoPisaLaNueva(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(newFakeProvider(), path, nil, nil)

	s.persist(State{Theme: ThemeDark}, 2)
	s.persist(State{Theme: ThemeLight}, 1)

	assert.Equal(t, ThemeDark, readState(t, path).Theme)
}

func TestSubscribe(t *testing.T) {
	s := New(newFakeProvider(), "", nil, nil)
	var seen []Theme
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st.Theme) })

	s.ToggleTheme()
	unsubscribe()
	s.ToggleTheme()

	assert.Equal(t, []Theme{ThemeDark}, seen)
}

func TestRegister_NoIniciaSesion(t *testing.T) {
	spy := &spyNotifier{}
	s := New(newFakeProvider(), "", spy, nil)

	user, err := s.Register(context.Background(), dto.RegisterRequest{
		Email: "luis@empresa.co", Password: "secreta", ConfirmPassword: "secreta", Name: "Luis", CompanyID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "empleado", user.Role)
	assert.False(t, s.Snapshot().Authenticated)
	assert.Len(t, spy.ok, 1)
}
