package template

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela message_templates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de templates.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const templateColumns = `id, name, subject, body, is_active, created_at, updated_at`

func scanTemplate(row pgx.Row) (Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

// ListActive devolve os templates ativos por ordem de criação.
func (r *Repository) ListActive(ctx context.Context) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+templateColumns+`
        FROM message_templates
        WHERE is_active = TRUE
        ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Create insere um novo template.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Template, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO message_templates (name, subject, body, is_active)
        VALUES ($1, $2, $3, TRUE)
        RETURNING `+templateColumns,
		input.Name, input.Subject, input.Body)
	return scanTemplate(row)
}

// Update aplica alterações parciais via COALESCE.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Template, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE message_templates
        SET name = COALESCE($2, name),
            subject = COALESCE($3, subject),
            body = COALESCE($4, body),
            is_active = COALESCE($5, is_active),
            updated_at = now()
        WHERE id = $1
        RETURNING `+templateColumns,
		id, input.Name, input.Subject, input.Body, input.IsActive)
	return scanTemplate(row)
}

// Delete remove o template.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM message_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
