package menu

import (
	"errors"

	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/repo"
)

var (
	// ErrUnknownRole indica papel fora do catálogo.
	ErrUnknownRole = errors.New("papel desconhecido")
	// ErrUnknownOption indica opção de menu inexistente na carga de permissões.
	ErrUnknownOption = errors.New("opção de menu desconhecida")
)

// Option representa uma funcionalidade navegável do painel.
// O catálogo é semeado fora de banda; apenas opções ativas são exibidas.
type Option struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Href       string    `json:"href"`
	Icon       string    `json:"icon"`
	Badge      *string   `json:"badge,omitempty"`
	OrderIndex int       `json:"order_index"`
	IsActive   bool      `json:"is_active"`
}

// Permission vincula (papel, opção) a um flag de acesso.
type Permission struct {
	Role         repo.Role `json:"role"`
	MenuOptionID uuid.UUID `json:"menu_option_id"`
	CanAccess    bool      `json:"can_access"`
}

// PermissionEntry é a unidade de escrita usada na troca em bloco.
type PermissionEntry struct {
	MenuOptionID uuid.UUID `json:"menu_option_id"`
	CanAccess    bool      `json:"can_access"`
}

// MatrixCell é uma célula da grade papel × opção. A matriz devolvida é
// sempre densa: células sem linha persistida aparecem com acesso negado.
type MatrixCell struct {
	MenuOptionID uuid.UUID `json:"menu_option_id"`
	CanAccess    bool      `json:"can_access"`
}

// RolePermissions agrega as células de um papel.
type RolePermissions struct {
	Role        repo.Role    `json:"role"`
	Permissions []MatrixCell `json:"permissions"`
}

// Matrix é a projeção completa usada na tela de administração de permissões.
type Matrix struct {
	MenuOptions []Option          `json:"menu_options"`
	Permissions []RolePermissions `json:"permissions"`
}
