package menu

import (
	"context"

	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/repo"
)

type menuRepository interface {
	ListActiveOptions(ctx context.Context) ([]Option, error)
	ListOptionsForRole(ctx context.Context, role repo.Role) ([]Option, error)
	ListAllPermissions(ctx context.Context) ([]Permission, error)
	ReplacePermissions(ctx context.Context, role repo.Role, entries []PermissionEntry) error
}

// Service responde "quais opções o papel R enxerga" e permite que a
// administração redefina a grade papel × opção.
type Service struct {
	repo menuRepository
}

// NewService cria nova instância.
func NewService(r menuRepository) *Service {
	return &Service{repo: r}
}

// MenuForRole devolve as opções visíveis ao papel, em ordem de exibição.
// Default-deny: pares sem linha persistida não aparecem.
func (s *Service) MenuForRole(ctx context.Context, role repo.Role) ([]Option, error) {
	if !role.Valid() {
		return nil, ErrUnknownRole
	}

	options, err := s.repo.ListOptionsForRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []Option{}
	}
	return options, nil
}

// SetPermissions substitui o conjunto inteiro de permissões do papel.
// A troca é tudo-ou-nada; ver Repository.ReplacePermissions.
func (s *Service) SetPermissions(ctx context.Context, role repo.Role, entries []PermissionEntry) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	for _, entry := range entries {
		if entry.MenuOptionID == uuid.Nil {
			return ErrUnknownOption
		}
	}
	return s.repo.ReplacePermissions(ctx, role, entries)
}

// Matrix monta a grade completa papel × opção para a tela de administração.
// A grade é densa: toda opção ativa aparece para todo papel conhecido,
// com acesso negado quando não há linha persistida.
func (s *Service) Matrix(ctx context.Context) (*Matrix, error) {
	options, err := s.repo.ListActiveOptions(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := s.repo.ListAllPermissions(ctx)
	if err != nil {
		return nil, err
	}

	granted := make(map[repo.Role]map[uuid.UUID]bool, len(perms))
	for _, p := range perms {
		if granted[p.Role] == nil {
			granted[p.Role] = make(map[uuid.UUID]bool)
		}
		granted[p.Role][p.MenuOptionID] = p.CanAccess
	}

	matrix := &Matrix{MenuOptions: options}
	for _, role := range repo.AllRoles() {
		cells := make([]MatrixCell, 0, len(options))
		for _, option := range options {
			cells = append(cells, MatrixCell{
				MenuOptionID: option.ID,
				CanAccess:    granted[role][option.ID],
			})
		}
		matrix.Permissions = append(matrix.Permissions, RolePermissions{Role: role, Permissions: cells})
	}

	return matrix, nil
}
