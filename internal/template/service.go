package template

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/util"
)

type templateRepository interface {
	ListActive(ctx context.Context) ([]Template, error)
	Create(ctx context.Context, input CreateInput) (Template, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service valida e repassa operações sobre templates de mensagem.
type Service struct {
	repo templateRepository
}

// NewService cria nova instância.
func NewService(r templateRepository) *Service {
	return &Service{repo: r}
}

// List devolve os templates ativos.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	templates, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []Template{}
	}
	return templates, nil
}

// Create valida e insere um template.
func (s *Service) Create(ctx context.Context, input CreateInput) (Template, error) {
	if err := util.RequireString(input.Name, "name"); err != nil {
		return Template{}, err
	}
	if err := util.RequireString(input.Body, "body"); err != nil {
		return Template{}, err
	}
	return s.repo.Create(ctx, input)
}

// Update aplica alterações parciais.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Template, error) {
	if input.Name != nil {
		if err := util.RequireString(*input.Name, "name"); err != nil {
			return Template{}, err
		}
	}
	if input.Name == nil && input.Subject == nil && input.Body == nil && input.IsActive == nil {
		return Template{}, errors.New("nenhum campo para atualizar")
	}
	return s.repo.Update(ctx, id, input)
}

// Delete remove o template.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
