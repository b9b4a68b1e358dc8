package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
	"github.com/jhoicas/kardex-admin/pkg/jwt"
	"github.com/jhoicas/kardex-admin/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// ResetTokenTTL vigencia del token de recuperación de contraseña.
const ResetTokenTTL = time.Hour

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Config configuración del caso de uso.
type Config struct {
	JWT        JWTConfig
	BaseURL    string // URL pública del panel, para los enlaces de los correos
	BcryptCost int    // 0 = bcrypt.DefaultCost
}

// NewAccount datos para crear credencial y usuario.
type NewAccount struct {
	CompanyID int64
	Email     string
	Password  string
	Name      string
	Role      string
	DocType   string
	DocNumber string
	Phone     string
	Address   string
}

// AuthUseCase casos de uso de autenticación: registro, login, sesión y recuperación de contraseña.
type AuthUseCase struct {
	txRunner     AccountTxRunner
	credRepo     repository.CredentialRepository
	userRepo     repository.UserRepository
	companyRepo  repository.CompanyRepository
	activityRepo repository.ActivityRepository
	tokens       ports.TokenStore
	mailer       ports.Mailer
	cfg          Config
	log          *logger.Logger
	now          func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	txRunner AccountTxRunner,
	credRepo repository.CredentialRepository,
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	activityRepo repository.ActivityRepository,
	tokens ports.TokenStore,
	mailer ports.Mailer,
	cfg Config,
	log *logger.Logger,
) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{
		txRunner:     txRunner,
		credRepo:     credRepo,
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		activityRepo: activityRepo,
		tokens:       tokens,
		mailer:       mailer,
		cfg:          cfg,
		log:          log.Named("auth"),
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// Register alta pública: crea un usuario empleado en la empresa indicada.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Password != in.ConfirmPassword {
		return nil, domain.Invalid("las contraseñas no coinciden")
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	u, err := uc.CreateAccount(ctx, NewAccount{
		CompanyID: in.CompanyID,
		Email:     in.Email,
		Password:  in.Password,
		Name:      in.Name,
		Role:      entity.RoleEmployee,
	})
	if err != nil {
		return nil, err
	}
	return UserResponse(u), nil
}

// CreateAccount hashea la contraseña y crea credencial y usuario en una transacción.
// Devuelve ErrEmailAlreadyExists si el correo ya tiene credencial.
func (uc *AuthUseCase) CreateAccount(ctx context.Context, in NewAccount) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case email == "":
		return nil, domain.Invalid("email requerido")
	case len(in.Password) < 6:
		return nil, domain.Invalid("la contraseña debe tener al menos 6 caracteres")
	case !entity.ValidRole(in.Role):
		return nil, domain.Invalid("rol inválido")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := uc.now()
	cred := &entity.Credential{
		AuthID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	user := &entity.User{
		CompanyID:    in.CompanyID,
		AuthID:       cred.AuthID,
		Name:         name,
		Email:        email,
		Role:         in.Role,
		DocType:      in.DocType,
		DocNumber:    in.DocNumber,
		Phone:        in.Phone,
		Address:      in.Address,
		Status:       entity.UserActive,
		RegisteredAt: now,
	}
	err = uc.txRunner.RunAccounts(ctx, func(credRepo repository.CredentialRepository, userRepo repository.UserRepository) error {
		if err := credRepo.Create(ctx, cred); err != nil {
			return err
		}
		return userRepo.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Int64("company_id", user.CompanyID).Str("role", user.Role).
		Msg("cuenta creada")
	return user, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y contraseña incorrecta devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	cred, err := uc.credRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByAuthID(ctx, cred.AuthID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.cfg.JWT.Secret, jwt.Identity{
		AuthID:    user.AuthID,
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}, uc.cfg.JWT.Issuer, uc.cfg.JWT.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.recordActivity(ctx, user.ID, entity.ActivityLogin, "", ip)
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.cfg.JWT.ExpMinutes * 60,
		User:      *UserResponse(user),
	}, nil
}

// Logout revoca el token hasta su expiración.
func (uc *AuthUseCase) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return domain.ErrUnauthorized
	}
	ttl := claims.Remaining(uc.now())
	if ttl <= 0 {
		return nil
	}
	return uc.tokens.Revoke(ctx, claims.ID, ttl)
}

// Session devuelve el perfil del dueño del token.
func (uc *AuthUseCase) Session(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	return UserResponse(user), nil
}

// RequestPasswordReset genera un token de una hora y lo envía por correo.
// Un correo desconocido termina sin error para no revelar qué cuentas existen.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	cred, err := uc.credRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if cred == nil {
		uc.log.Debug().Msg("recuperación solicitada para un correo inexistente")
		return nil
	}
	token := uuid.NewString()
	if err := uc.tokens.SaveResetToken(ctx, token, cred.AuthID, ResetTokenTTL); err != nil {
		return err
	}
	link := strings.TrimRight(uc.cfg.BaseURL, "/") + "/reset-password?token=" + token
	return uc.mailer.Send(ctx, ports.MailMessage{
		To:      cred.Email,
		Subject: "Recuperación de contraseña",
		Body: "Recibimos un pedido para restablecer tu contraseña.\n\n" +
			"Ingresá al siguiente enlace dentro de la próxima hora:\n" + link + "\n\n" +
			"Si no lo pediste, ignorá este correo.",
	})
}

// ConfirmPasswordReset fija la contraseña nueva. El token se consume aunque falle la escritura.
func (uc *AuthUseCase) ConfirmPasswordReset(ctx context.Context, in dto.PasswordResetConfirm) error {
	if len(in.Password) < 6 {
		return domain.Invalid("la contraseña debe tener al menos 6 caracteres")
	}
	authID, err := uc.tokens.ConsumeResetToken(ctx, in.Token)
	if err != nil {
		return err
	}
	if authID == "" {
		return domain.Invalid("token inválido o vencido")
	}
	if err := uc.SetPassword(ctx, authID, in.Password); err != nil {
		return err
	}
	if user, err := uc.userRepo.GetByAuthID(ctx, authID); err == nil && user != nil {
		uc.recordActivity(ctx, user.ID, entity.ActivityPasswordReset, "", "")
	}
	return nil
}

// SetPassword reemplaza el hash de la credencial.
func (uc *AuthUseCase) SetPassword(ctx context.Context, authID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return uc.credRepo.UpdatePassword(ctx, authID, string(hash))
}

func (uc *AuthUseCase) recordActivity(ctx context.Context, userID int64, action, detail, ip string) {
	err := uc.activityRepo.Create(ctx, &entity.UserActivity{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		IP:        ip,
		CreatedAt: uc.now(),
	})
	if err != nil {
		uc.log.Warn().Err(err).Int64("user_id", userID).Str("action", action).Msg("no se pudo registrar la actividad")
	}
}

// UserResponse convierte la entidad a su salida (sin credenciales).
func UserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:           u.ID,
		CompanyID:    u.CompanyID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		DocType:      u.DocType,
		DocNumber:    u.DocNumber,
		Phone:        u.Phone,
		Address:      u.Address,
		Status:       u.Status,
		Active:       u.IsActive(),
		RegisteredAt: u.RegisteredAt,
	}
}
