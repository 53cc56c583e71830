package template

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica template inexistente.
	ErrNotFound = errors.New("template não encontrado")
)

// Template é um modelo de mensagem de abordagem reutilizável.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput contém os campos de criação.
type CreateInput struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// UpdateInput contém alterações parciais; nil mantém o valor atual.
type UpdateInput struct {
	Name     *string `json:"name"`
	Subject  *string `json:"subject"`
	Body     *string `json:"body"`
	IsActive *bool   `json:"is_active"`
}
