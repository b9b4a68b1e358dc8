package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/kardex-admin/internal/application/auth"
	"github.com/jhoicas/kardex-admin/internal/application/dto"
	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/internal/domain"
	"github.com/jhoicas/kardex-admin/internal/domain/entity"
	"github.com/jhoicas/kardex-admin/internal/domain/repository"
	"github.com/jhoicas/kardex-admin/pkg/format"
	"github.com/jhoicas/kardex-admin/pkg/logger"
	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion región usada para interpretar teléfonos sin prefijo internacional.
const DefaultPhoneRegion = "AR"

const defaultActivityLimit = 50

// AccountService crea cuentas y dispara la recuperación de contraseña (implementado por auth).
type AccountService interface {
	CreateAccount(ctx context.Context, in auth.NewAccount) (*entity.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
}

// MovementCounter cuenta movimientos de kardex por usuario.
type MovementCounter interface {
	CountByUser(ctx context.Context, companyID int64) (map[int64]int, error)
}

// UserUseCase administración de usuarios de la empresa (solo superadmin).
type UserUseCase struct {
	repo         repository.UserRepository
	activityRepo repository.ActivityRepository
	counter      MovementCounter
	accounts     AccountService
	mailer       ports.Mailer
	baseURL      string
	log          *logger.Logger
	now          func() time.Time
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(
	repo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	counter MovementCounter,
	accounts AccountService,
	mailer ports.Mailer,
	baseURL string,
	log *logger.Logger,
) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{
		repo:         repo,
		activityRepo: activityRepo,
		counter:      counter,
		accounts:     accounts,
		mailer:       mailer,
		baseURL:      strings.TrimRight(baseURL, "/"),
		log:          log.Named("users"),
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UserUseCase) WithClock(now func() time.Time) *UserUseCase {
	uc.now = now
	return uc
}

// List filtra los usuarios de la empresa y agrega su cantidad de movimientos.
// Los eliminados solo aparecen si se filtra por ese estado.
func (uc *UserUseCase) List(ctx context.Context, companyID int64, q dto.UserListQuery) ([]dto.UserResponse, error) {
	if q.Role != "" && !entity.ValidRole(q.Role) {
		return nil, domain.Invalid("rol inválido")
	}
	f := repository.UserFilter{Search: strings.TrimSpace(q.Search), Role: q.Role, Status: q.Status}
	if q.RegisteredFrom != "" {
		from, err := format.ParseDay(q.RegisteredFrom, nil)
		if err != nil {
			return nil, domain.Invalid(err.Error())
		}
		f.From = &from
	}
	if q.RegisteredTo != "" {
		to, err := format.ParseDay(q.RegisteredTo, nil)
		if err != nil {
			return nil, domain.Invalid(err.Error())
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.Invalid("el rango de fechas es inválido")
	}
	users, err := uc.repo.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	counts, err := uc.counter.CountByUser(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		r := auth.UserResponse(u)
		r.MovementCount = counts[u.ID]
		out = append(out, *r)
	}
	return out, nil
}

// Stats conteos por estado y rol, y altas del mes en curso.
func (uc *UserUseCase) Stats(ctx context.Context, companyID int64) (*dto.UserStatsResponse, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	st, err := uc.repo.Stats(ctx, companyID, monthStart)
	if err != nil {
		return nil, err
	}
	return &dto.UserStatsResponse{
		Total:               st.Total,
		Active:              st.Active,
		Inactive:            st.Inactive,
		SuperAdmins:         st.SuperAdmins,
		Admins:              st.Admins,
		Employees:           st.Employees,
		RegisteredThisMonth: st.RegisteredThisMonth,
	}, nil
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id int64) (*dto.UserResponse, error) {
	u, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return auth.UserResponse(u), nil
}

// Create alta directa. Sin contraseña se genera una temporal y se envía por correo.
func (uc *UserUseCase) Create(ctx context.Context, companyID int64, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	phone, err := NormalizePhone(in.Phone, DefaultPhoneRegion)
	if err != nil {
		return nil, err
	}
	password, generated := in.Password, false
	if password == "" {
		password, generated = temporaryPassword(), true
	}
	u, err := uc.accounts.CreateAccount(ctx, auth.NewAccount{
		CompanyID: companyID,
		Email:     in.Email,
		Password:  password,
		Name:      in.Name,
		Role:      in.Role,
		DocType:   strings.TrimSpace(in.DocType),
		DocNumber: strings.TrimSpace(in.DocNumber),
		Phone:     phone,
		Address:   strings.TrimSpace(in.Address),
	})
	if err != nil {
		return nil, err
	}
	if generated {
		uc.sendInvitation(ctx, u, password)
	}
	return auth.UserResponse(u), nil
}

// Invite crea la cuenta con una contraseña temporal y la envía por correo.
func (uc *UserUseCase) Invite(ctx context.Context, companyID, actorID int64, in dto.InviteUserRequest) (*dto.UserResponse, error) {
	if in.Role == entity.RoleSuperAdmin {
		return nil, domain.Invalid("no se puede invitar a un superadmin")
	}
	password := temporaryPassword()
	u, err := uc.accounts.CreateAccount(ctx, auth.NewAccount{
		CompanyID: companyID,
		Email:     in.Email,
		Password:  password,
		Name:      in.Name,
		Role:      in.Role,
	})
	if err != nil {
		return nil, err
	}
	uc.sendInvitation(ctx, u, password)
	uc.record(ctx, u.ID, entity.ActivityInvitationSent, fmt.Sprintf("invitado por el usuario %d", actorID))
	return auth.UserResponse(u), nil
}

// Update actualización parcial.
func (uc *UserUseCase) Update(ctx context.Context, companyID, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if u.Status == entity.UserDeleted {
		return nil, fmt.Errorf("%w: el usuario está eliminado", domain.ErrConflict)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("el nombre es obligatorio")
		}
		u.Name = name
	}
	if in.Role != nil {
		if !entity.ValidRole(*in.Role) {
			return nil, domain.Invalid("rol inválido")
		}
		u.Role = *in.Role
	}
	if in.DocType != nil {
		u.DocType = strings.TrimSpace(*in.DocType)
	}
	if in.DocNumber != nil {
		u.DocNumber = strings.TrimSpace(*in.DocNumber)
	}
	if in.Phone != nil {
		phone, err := NormalizePhone(*in.Phone, DefaultPhoneRegion)
		if err != nil {
			return nil, err
		}
		u.Phone = phone
	}
	if in.Address != nil {
		u.Address = strings.TrimSpace(*in.Address)
	}
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return auth.UserResponse(u), nil
}

// ToggleStatus alterna activo/inactivo. Un eliminado no cambia de estado y nadie se
// desactiva a sí mismo.
func (uc *UserUseCase) ToggleStatus(ctx context.Context, companyID, actorID, id int64) (*dto.UserResponse, error) {
	u, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	var next string
	switch u.Status {
	case entity.UserActive:
		if id == actorID {
			return nil, fmt.Errorf("%w: no podés desactivar tu propio usuario", domain.ErrConflict)
		}
		next = entity.UserInactive
	case entity.UserInactive:
		next = entity.UserActive
	default:
		return nil, fmt.Errorf("%w: el usuario está eliminado", domain.ErrConflict)
	}
	if err := uc.repo.SetStatus(ctx, id, next); err != nil {
		return nil, err
	}
	u.Status = next
	uc.record(ctx, id, entity.ActivityStatusChanged, next)
	return auth.UserResponse(u), nil
}

// Delete baja lógica (estado eliminado).
func (uc *UserUseCase) Delete(ctx context.Context, companyID, actorID, id int64) error {
	if id == actorID {
		return fmt.Errorf("%w: no podés eliminar tu propio usuario", domain.ErrConflict)
	}
	u, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return err
	}
	if u.Status == entity.UserDeleted {
		return nil
	}
	if err := uc.repo.SetStatus(ctx, id, entity.UserDeleted); err != nil {
		return err
	}
	uc.record(ctx, id, entity.ActivityDeleted, fmt.Sprintf("eliminado por el usuario %d", actorID))
	uc.log.Info().Int64("user_id", id).Int64("actor_id", actorID).Msg("usuario eliminado")
	return nil
}

// ResetPassword envía al usuario el correo de recuperación.
func (uc *UserUseCase) ResetPassword(ctx context.Context, companyID, id int64) error {
	u, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return err
	}
	if u.Status == entity.UserDeleted {
		return fmt.Errorf("%w: el usuario está eliminado", domain.ErrConflict)
	}
	return uc.accounts.RequestPasswordReset(ctx, u.Email)
}

// Activities auditoría del usuario, más recientes primero.
func (uc *UserUseCase) Activities(ctx context.Context, companyID, id int64, limit int) ([]dto.UserActivityResponse, error) {
	if _, err := uc.owned(ctx, companyID, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = defaultActivityLimit
	}
	list, err := uc.activityRepo.ListByUser(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.UserActivityResponse{
			ID:        a.ID,
			Action:    a.Action,
			Detail:    a.Detail,
			IP:        a.IP,
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}

func (uc *UserUseCase) owned(ctx context.Context, companyID, id int64) (*entity.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.CompanyID != companyID {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (uc *UserUseCase) sendInvitation(ctx context.Context, u *entity.User, password string) {
	err := uc.mailer.Send(ctx, ports.MailMessage{
		To:      u.Email,
		Subject: "Invitación al panel de inventario",
		Body: fmt.Sprintf("Hola %s,\n\nTe crearon una cuenta en el panel de inventario.\n\n"+
			"Usuario: %s\nContraseña temporal: %s\n\nIngresá en %s/login y cambiala desde \"olvidé mi contraseña\".",
			u.Name, u.Email, password, uc.baseURL),
	})
	if err != nil {
		// la cuenta ya existe; el superadmin puede reenviar con ResetPassword
		uc.log.Warn().Err(err).Int64("user_id", u.ID).Msg("no se pudo enviar la invitación")
	}
}

func (uc *UserUseCase) record(ctx context.Context, userID int64, action, detail string) {
	err := uc.activityRepo.Create(ctx, &entity.UserActivity{
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: uc.now(),
	})
	if err != nil {
		uc.log.Warn().Err(err).Int64("user_id", userID).Str("action", action).Msg("no se pudo registrar la actividad")
	}
}

// NormalizePhone devuelve el teléfono en E.164. Vacío queda vacío.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", domain.Invalid("teléfono inválido")
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", domain.Invalid("teléfono inválido")
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// temporaryPassword 12 caracteres hexadecimales aleatorios.
func temporaryPassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
