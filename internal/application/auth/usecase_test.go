package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/testutil/memrepo"
	"github.com/jhoicas/kardex-admin/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "secreto-de-pruebas"

type spyMailer struct {
	mu   sync.Mutex
	sent []ports.MailMessage
}

func (m *spyMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	store  *memrepo.Store
	tokens *ports.MemoryTokenStore
	mailer *spyMailer
	uc     *AuthUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.NewStore()
	store.AddCompany(&entity.Company{ID: 1, Name: "Ferretería Central"})
	tokens := ports.NewMemoryTokenStore()
	mailer := &spyMailer{}
	uc := NewAuthUseCase(store, store.CredentialRepo(), store.UserRepo(), store.CompanyRepo(), store.ActivityRepo(),
		tokens, mailer, Config{
			JWT:        JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "kardex-test"},
			BaseURL:    "https://panel.example.com/",
			BcryptCost: bcrypt.MinCost,
		}, nil)
	return &fixture{store: store, tokens: tokens, mailer: mailer, uc: uc}
}

func registerReq(email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:           email,
		Password:        "secreto1",
		ConfirmPassword: "secreto1",
		Name:            "Ana Pérez",
		CompanyID:       1,
	}
}

func TestRegister_CreaEmpleadoActivo(t *testing.T) {
	f := newFixture(t)

	u, err := f.uc.Register(context.Background(), registerReq("Ana@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, u.Role)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.True(t, u.Active)

	stored, err := f.store.UserRepo().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	cred := f.store.Credential(stored.AuthID)
	require.NotNil(t, cred)
	assert.NotEqual(t, "secreto1", cred.PasswordHash)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)

	_, err = f.uc.Register(context.Background(), registerReq("ANA@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_ContrasenasDistintas(t *testing.T) {
	f := newFixture(t)
	in := registerReq("ana@example.com")
	in.ConfirmPassword = "otra"

	_, err := f.uc.Register(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_EmpresaInexistente(t *testing.T) {
	f := newFixture(t)
	in := registerReq("ana@example.com")
	in.CompanyID = 99

	_, err := f.uc.Register(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateAccount_FalloDeUsuarioNoDejaCredencial(t *testing.T) {
	f := newFixture(t)
	f.store.FailUserCreate = true

	_, err := f.uc.CreateAccount(context.Background(), NewAccount{
		CompanyID: 1, Email: "ana@example.com", Password: "secreto1", Role: entity.RoleAdmin,
	})
	require.ErrorIs(t, err, memrepo.ErrInjected)

	cred, err := f.store.CredentialRepo().GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Nil(t, cred, "la credencial se revierte junto con el usuario")
}

func TestLogin_TokenConIdentidad(t *testing.T) {
	f := newFixture(t)
	u, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)

	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto1"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 3600, res.ExpiresIn)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := jwt.Parse(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, int64(1), claims.CompanyID)
	assert.Equal(t, entity.RoleEmployee, claims.Role)

	acts := f.store.Activities()
	require.Len(t, acts, 1)
	assert.Equal(t, entity.ActivityLogin, acts[0].Action)
	assert.Equal(t, "10.0.0.1", acts[0].IP)
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "mala"}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "secreto1"}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	f := newFixture(t)
	u, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)
	require.NoError(t, f.store.UserRepo().SetStatus(context.Background(), u.ID, entity.UserInactive))

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto1"}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogout_RevocaJTI(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)
	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secreto1"}, "")
	require.NoError(t, err)
	claims, err := jwt.Parse(testSecret, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.uc.Logout(context.Background(), claims))

	revoked, err := f.tokens.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestSession(t *testing.T) {
	f := newFixture(t)
	u, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)

	got, err := f.uc.Session(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", got.Name)

	_, err = f.uc.Session(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPasswordReset_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	u, err := f.uc.Register(context.Background(), registerReq("ana@example.com"))
	require.NoError(t, err)

	require.NoError(t, f.uc.RequestPasswordReset(context.Background(), "ana@example.com"))
	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)

	const marker = "https://panel.example.com/reset-password?token="
	idx := strings.Index(msg.Body, marker)
	require.GreaterOrEqual(t, idx, 0, "el correo incluye el enlace")
	token := strings.Fields(msg.Body[idx+len(marker):])[0]

	require.NoError(t, f.uc.ConfirmPasswordReset(context.Background(), dto.PasswordResetConfirm{Token: token, Password: "nueva123"}))

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "nueva123"}, "")
	require.NoError(t, err)

	err = f.uc.ConfirmPasswordReset(context.Background(), dto.PasswordResetConfirm{Token: token, Password: "otra123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el token es de un solo uso")

	var actions []string
	for _, a := range f.store.Activities() {
		if a.UserID == u.ID {
			actions = append(actions, a.Action)
		}
	}
	assert.Contains(t, actions, entity.ActivityPasswordReset)
}

func TestRequestPasswordReset_EmailDesconocidoNoFalla(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.uc.RequestPasswordReset(context.Background(), "nadie@example.com"))
	assert.Empty(t, f.mailer.sent)
}

func TestLogout_TokenVencidoNoRevoca(t *testing.T) {
	f := newFixture(t)
	f.uc.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	claims := &jwt.Claims{}
	claims.ID = "jti-1"
	assert.NoError(t, f.uc.Logout(context.Background(), claims))
}
