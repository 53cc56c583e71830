package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/captei/prospeccao/internal/auth"
	"github.com/captei/prospeccao/internal/repo"
	"github.com/captei/prospeccao/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrDuplicateEmail indica e-mail já cadastrado.
	ErrDuplicateEmail = errors.New("e-mail já cadastrado")
	// ErrSelfAction impede que administradores desativem ou excluam a própria conta.
	ErrSelfAction = errors.New("operação não permitida sobre a própria conta")
	// ErrValidation agrega falhas de entrada corrigíveis pelo chamador.
	ErrValidation = errors.New("entrada inválida")
)

type authRepository interface {
	GetUserByEmail(ctx context.Context, email string) (repo.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repo.User, error)
	InsertUser(ctx context.Context, email, passwordHash string, fullName *string, role repo.Role) (repo.User, error)
	ListUsers(ctx context.Context) ([]repo.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role repo.Role) error
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	InsertSession(ctx context.Context, arg repo.InsertSessionParams) (repo.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (repo.Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// AuthService concentra cadastro, autenticação e gestão de usuários.
type AuthService struct {
	repo authRepository
	jwt  *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(r authRepository, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{repo: r, jwt: jwtMgr}
}

// LoginResult representa o retorno padrão da autenticação.
type LoginResult struct {
	User      repo.User
	Token     string
	ExpiresAt time.Time
}

// Register cadastra um usuário com papel padrão "user".
func (s *AuthService) Register(ctx context.Context, email, password string, fullName *string) (repo.User, error) {
	if err := util.ValidateEmail(email); err != nil {
		return repo.User{}, errors.Join(ErrValidation, err)
	}
	if err := util.ValidatePassword(password); err != nil {
		return repo.User{}, errors.Join(ErrValidation, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return repo.User{}, err
	}

	user, err := s.repo.InsertUser(ctx, email, hash, fullName, repo.RoleUser)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return repo.User{}, ErrDuplicateEmail
		}
		return repo.User{}, err
	}

	return user, nil
}

// Login autentica credenciais e abre uma nova sessão. Cada login gera uma
// sessão própria; sessões concorrentes do mesmo usuário são permitidas.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Conta desativada responde o mesmo independentemente da senha: a
	// operadora precisa saber que o bloqueio é administrativo, não de digitação.
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.jwt.GenerateSessionToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.InsertSession(ctx, repo.InsertSessionParams{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: auth.HashSessionToken(token),
		ExpiresAt: expires,
	}); err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expires}, nil
}

// VerifyToken valida um token de sessão e devolve o usuário autenticado.
// Retorna (nil, nil) para qualquer token não autenticável: assinatura
// inválida, sessão ausente/expirada no banco ou usuário removido/inativo.
// A exigência da linha de sessão viva permite revogação server-side:
// o logout apaga a linha e invalida na hora um token ainda assinado.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*repo.User, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.jwt.ParseAndValidate(token)
	if err != nil {
		return nil, nil
	}

	if _, err := s.repo.GetSessionByTokenHash(ctx, auth.HashSessionToken(token)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil
	}

	user, err := s.repo.GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}

	return &user, nil
}

// Logout encerra a sessão associada ao token. Idempotente.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSessionByTokenHash(ctx, auth.HashSessionToken(token))
}

// PurgeExpiredSessions apaga sessões vencidas. Chamada periodicamente
// pelo processo principal; sessões expiradas já não autenticam, a remoção
// só contém o crescimento da tabela.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("sessões expiradas removidas")
	}
	return removed, nil
}

// ListUsers devolve todos os usuários (operação administrativa).
func (s *AuthService) ListUsers(ctx context.Context) ([]repo.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUserRole troca o papel de um usuário.
func (s *AuthService) UpdateUserRole(ctx context.Context, id uuid.UUID, role repo.Role) error {
	if !role.Valid() {
		return errors.Join(ErrValidation, errors.New("papel desconhecido"))
	}
	return s.repo.UpdateUserRole(ctx, id, role)
}

// ToggleUserStatus inverte o flag de conta ativa. Administradores não
// podem desativar a própria conta.
func (s *AuthService) ToggleUserStatus(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	if actorID == targetID {
		return false, ErrSelfAction
	}

	user, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	newState := !user.IsActive
	if err := s.repo.SetUserActive(ctx, targetID, newState); err != nil {
		return false, err
	}
	return newState, nil
}

// DeleteUser remove um usuário e suas sessões. Administradores não podem
// excluir a própria conta.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return ErrSelfAction
	}
	return s.repo.DeleteUser(ctx, targetID)
}
