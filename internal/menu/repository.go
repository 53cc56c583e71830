package menu

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/captei/prospeccao/internal/db"
	"github.com/captei/prospeccao/internal/repo"
)

// Repository provê acesso às tabelas menu_options e role_permissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de menus.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const optionColumns = `id, name, label, href, icon, badge, order_index, is_active`

func scanOption(row pgx.Row) (Option, error) {
	var o Option
	err := row.Scan(&o.ID, &o.Name, &o.Label, &o.Href, &o.Icon, &o.Badge, &o.OrderIndex, &o.IsActive)
	return o, err
}

// ListActiveOptions devolve o catálogo ativo ordenado.
func (r *Repository) ListActiveOptions(ctx context.Context) ([]Option, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+optionColumns+`
        FROM menu_options
        WHERE is_active = TRUE
        ORDER BY order_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// ListOptionsForRole devolve apenas as opções ativas que o papel pode ver.
// A junção é interna: a ausência de linha em role_permissions nega o acesso.
func (r *Repository) ListOptionsForRole(ctx context.Context, role repo.Role) ([]Option, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT m.id, m.name, m.label, m.href, m.icon, m.badge, m.order_index, m.is_active
        FROM menu_options m
        JOIN role_permissions p ON p.menu_option_id = m.id
        WHERE p.role = $1 AND p.can_access = TRUE AND m.is_active = TRUE
        ORDER BY m.order_index`,
		role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// ListAllPermissions devolve as linhas persistidas para opções ativas.
func (r *Repository) ListAllPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT p.role, p.menu_option_id, p.can_access
        FROM role_permissions p
        JOIN menu_options m ON m.id = p.menu_option_id
        WHERE m.is_active = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Role, &p.MenuOptionID, &p.CanAccess); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// ReplacePermissions troca o conjunto completo de permissões de um papel
// em uma única transação: apaga as linhas existentes e insere o novo
// conjunto em bloco. Qualquer falha desfaz tudo; leitores concorrentes
// enxergam o conjunto antigo ou o novo por inteiro, nunca um parcial.
func (r *Repository) ReplacePermissions(ctx context.Context, role repo.Role, entries []PermissionEntry) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role = $1`, role); err != nil {
			return err
		}

		if len(entries) == 0 {
			return nil
		}

		src := make([][]any, 0, len(entries))
		for _, entry := range entries {
			src = append(src, []any{role, entry.MenuOptionID, entry.CanAccess})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"role_permissions"},
			[]string{"role", "menu_option_id", "can_access"},
			pgx.CopyFromRows(src))
		return err
	})
}
