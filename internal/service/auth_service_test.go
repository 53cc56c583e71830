package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/auth"
	"github.com/captei/prospeccao/internal/repo"
)

type stubAuthRepo struct {
	usersByEmail map[string]repo.User
	usersByID    map[uuid.UUID]repo.User
	sessions     map[string]repo.Session
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		usersByEmail: make(map[string]repo.User),
		usersByID:    make(map[uuid.UUID]repo.User),
		sessions:     make(map[string]repo.Session),
	}
}

func (s *stubAuthRepo) GetUserByEmail(_ context.Context, email string) (repo.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	return user, nil
}

func (s *stubAuthRepo) GetUserByID(_ context.Context, id uuid.UUID) (repo.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	return user, nil
}

func (s *stubAuthRepo) InsertUser(_ context.Context, email, passwordHash string, fullName *string, role repo.Role) (repo.User, error) {
	if _, exists := s.usersByEmail[email]; exists {
		return repo.User{}, repo.ErrDuplicateEmail
	}
	user := repo.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user
	return user, nil
}

func (s *stubAuthRepo) ListUsers(_ context.Context) ([]repo.User, error) {
	users := make([]repo.User, 0, len(s.usersByID))
	for _, u := range s.usersByID {
		users = append(users, u)
	}
	return users, nil
}

func (s *stubAuthRepo) UpdateUserRole(_ context.Context, id uuid.UUID, role repo.Role) error {
	user, ok := s.usersByID[id]
	if !ok {
		return repo.ErrNotFound
	}
	user.Role = role
	s.usersByID[id] = user
	s.usersByEmail[user.Email] = user
	return nil
}

func (s *stubAuthRepo) SetUserActive(_ context.Context, id uuid.UUID, active bool) error {
	user, ok := s.usersByID[id]
	if !ok {
		return repo.ErrNotFound
	}
	user.IsActive = active
	s.usersByID[id] = user
	s.usersByEmail[user.Email] = user
	return nil
}

func (s *stubAuthRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	user, ok := s.usersByID[id]
	if !ok {
		return repo.ErrNotFound
	}
	delete(s.usersByID, id)
	delete(s.usersByEmail, user.Email)
	for hash, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, hash)
		}
	}
	return nil
}

func (s *stubAuthRepo) InsertSession(_ context.Context, arg repo.InsertSessionParams) (repo.Session, error) {
	sess := repo.Session{
		ID:        arg.ID,
		UserID:    arg.UserID,
		TokenHash: arg.TokenHash,
		ExpiresAt: arg.ExpiresAt,
		CreatedAt: time.Now(),
	}
	s.sessions[arg.TokenHash] = sess
	return sess, nil
}

func (s *stubAuthRepo) GetSessionByTokenHash(_ context.Context, tokenHash string) (repo.Session, error) {
	sess, ok := s.sessions[tokenHash]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return repo.Session{}, repo.ErrNotFound
	}
	return sess, nil
}

func (s *stubAuthRepo) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	delete(s.sessions, tokenHash)
	return nil
}

func (s *stubAuthRepo) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	var removed int64
	for hash, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(s.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

func newTestAuthService() (*AuthService, *stubAuthRepo) {
	stub := newStubAuthRepo()
	jwtMgr := auth.NewJWTManager("segredo-de-teste-com-32-caracteres!", time.Hour)
	return NewAuthService(stub, jwtMgr), stub
}

func TestRegisterAtribuiPapelPadrao(t *testing.T) {
	svc, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), "novo@captei.com.br", "senha-segura", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != repo.RoleUser {
		t.Fatalf("papel esperado %q, obtido %q", repo.RoleUser, user.Role)
	}
	if user.PasswordHash == "senha-segura" {
		t.Fatal("senha não pode ser persistida em claro")
	}
}

func TestRegisterValidaEntrada(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), "sem-arroba", "senha-segura", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("e-mail inválido deveria falhar com ErrValidation, obtido %v", err)
	}
	if _, err := svc.Register(context.Background(), "ok@captei.com.br", "curta", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("senha curta deveria falhar com ErrValidation, obtido %v", err)
	}
}

func TestRegisterEmailDuplicado(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@captei.com.br", "senha-segura", nil); err != nil {
		t.Fatalf("primeiro register: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@captei.com.br", "outra-senha-8", nil); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("esperado ErrDuplicateEmail, obtido %v", err)
	}
}

func TestLoginEVerifyToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ana@captei.com.br", "senha-segura", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(ctx, "ana@captei.com.br", "senha-segura")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("login deveria emitir token")
	}

	user, err := svc.VerifyToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user == nil || user.ID != registered.ID {
		t.Fatalf("verify deveria devolver o usuário autenticado, obtido %+v", user)
	}
}

func TestLoginSenhaErrada(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bia@captei.com.br", "senha-segura", nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, "bia@captei.com.br", "senha-diferente"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperado ErrInvalidCredentials, obtido %v", err)
	}
}

func TestLoginContaDesativada(t *testing.T) {
	svc, stub := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "carla@captei.com.br", "senha-segura", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := stub.SetUserActive(ctx, user.ID, false); err != nil {
		t.Fatalf("desativar: %v", err)
	}

	if _, err := svc.Login(ctx, "carla@captei.com.br", "senha-segura"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("esperado ErrAccountDisabled, obtido %v", err)
	}

	// O bloqueio administrativo prevalece mesmo com a senha errada.
	if _, err := svc.Login(ctx, "carla@captei.com.br", "senha-incorreta"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("esperado ErrAccountDisabled independentemente da senha, obtido %v", err)
	}
}

func TestVerifyAposLogout(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "davi@captei.com.br", "senha-segura", nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.Login(ctx, "davi@captei.com.br", "senha-segura")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// O token ainda tem assinatura válida, mas a sessão foi revogada.
	user, err := svc.VerifyToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user != nil {
		t.Fatal("token revogado não pode autenticar")
	}

	// Logout repetido é inócuo.
	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("logout repetido: %v", err)
	}
}

func TestVerifyTokenLixo(t *testing.T) {
	svc, _ := newTestAuthService()

	user, err := svc.VerifyToken(context.Background(), "nem-de-longe-um-jwt")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user != nil {
		t.Fatal("token forjado não pode autenticar")
	}
}

func TestVerifyUsuarioDesativadoDepoisDoLogin(t *testing.T) {
	svc, stub := newTestAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "edu@captei.com.br", "senha-segura", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.Login(ctx, "edu@captei.com.br", "senha-segura")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := stub.SetUserActive(ctx, registered.ID, false); err != nil {
		t.Fatalf("desativar: %v", err)
	}

	user, err := svc.VerifyToken(ctx, result.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user != nil {
		t.Fatal("conta desativada invalida a sessão existente")
	}
}

func TestAdminNaoAtuaSobreSiMesmo(t *testing.T) {
	svc, stub := newTestAuthService()
	ctx := context.Background()

	admin, err := stub.InsertUser(ctx, "root@captei.com.br", "hash", nil, repo.RoleAdmin)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := svc.ToggleUserStatus(ctx, admin.ID, admin.ID); !errors.Is(err, ErrSelfAction) {
		t.Fatalf("toggle próprio: esperado ErrSelfAction, obtido %v", err)
	}
	if err := svc.DeleteUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrSelfAction) {
		t.Fatalf("delete próprio: esperado ErrSelfAction, obtido %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, stub := newTestAuthService()
	ctx := context.Background()

	stub.sessions["viva"] = repo.Session{TokenHash: "viva", ExpiresAt: time.Now().Add(time.Hour)}
	stub.sessions["vencida"] = repo.Session{TokenHash: "vencida", ExpiresAt: time.Now().Add(-time.Hour)}

	removed, err := svc.PurgeExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("esperada 1 sessão removida, obtido %d", removed)
	}
	if _, ok := stub.sessions["viva"]; !ok {
		t.Fatal("sessão viva não pode ser removida")
	}
}

func TestUpdateUserRoleValidaPapel(t *testing.T) {
	svc, stub := newTestAuthService()
	ctx := context.Background()

	user, err := stub.InsertUser(ctx, "f@captei.com.br", "hash", nil, repo.RoleUser)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := svc.UpdateUserRole(ctx, user.ID, repo.Role("superuser")); !errors.Is(err, ErrValidation) {
		t.Fatalf("papel desconhecido deveria falhar, obtido %v", err)
	}
	if err := svc.UpdateUserRole(ctx, user.ID, repo.RoleAdmin); err != nil {
		t.Fatalf("promover: %v", err)
	}
	updated, _ := stub.GetUserByID(ctx, user.ID)
	if updated.Role != repo.RoleAdmin {
		t.Fatalf("papel esperado admin, obtido %q", updated.Role)
	}
}
