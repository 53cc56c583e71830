package repo

import (
	"time"

	"github.com/google/uuid"
)

// Role é o papel de autorização grosso do sistema. Toda lógica condicionada
// a papel passa por este tipo, nunca por comparação solta de strings.
type Role string

const (
	// RoleUser é o papel padrão atribuído no cadastro.
	RoleUser Role = "user"
	// RoleAdmin habilita telas administrativas e operações de gestão.
	RoleAdmin Role = "admin"
)

// AllRoles lista os papéis conhecidos, na ordem usada pela matriz de permissões.
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// ParseRole normaliza e valida um papel vindo de fora do processo.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Valid informa se o papel é um dos conhecidos.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// IsAdmin concentra a checagem usada pelos middlewares e serviços.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User representa um operador da plataforma.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     *string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session modela a tabela de sessões. O token em si nunca é persistido;
// guardamos apenas o hash SHA-256.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// InsertSessionParams agrupa os campos de criação de sessão.
type InsertSessionParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}
