package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/captei/prospeccao/internal/db"
)

// Repository provê acesso às tabelas campaigns e roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de campanhas.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `campaign_id, campaign_name, status, sectors, roles, id_roles, regions, duration_days, created_at, started_at, ended_at`

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Status, &c.Sectors, &c.Roles, &c.RoleIDs, &c.Regions,
		&c.DurationDays, &c.CreatedAt, &c.StartedAt, &c.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, ErrNotFound
		}
		return Campaign{}, err
	}
	return c, nil
}

// List devolve todas as campanhas, mais recentes primeiro.
func (r *Repository) List(ctx context.Context) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// GetByID busca campanha pelo identificador prefixado.
func (r *Repository) GetByID(ctx context.Context, id string) (Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE campaign_id = $1`, id)
	return scanCampaign(row)
}

// InsertPending grava a campanha em pending dentro da mesma transação que
// verifica a regra de campanha única ativa. O lock advisory serializa
// criações concorrentes; sem ele, dois clientes poderiam passar pela
// checagem de existência ao mesmo tempo. A checagem conta também as
// linhas pending: entre o commit e a ativação há a janela do disparo
// externo, e uma pending nunca fica órfã (é ativada ou cancelada).
func (r *Repository) InsertPending(ctx context.Context, c Campaign) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('campaigns_active_gate'))`); err != nil {
			return err
		}

		var blocked bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM campaigns WHERE status IN ('active', 'pending'))`).Scan(&blocked); err != nil {
			return err
		}
		if blocked {
			return ErrActiveCampaignExists
		}

		_, err := tx.Exec(ctx, `
            INSERT INTO campaigns (campaign_id, campaign_name, status, sectors, roles, id_roles, regions, duration_days)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Name, StatusPending, c.Sectors, c.Roles, c.RoleIDs, c.Regions, c.DurationDays)
		return err
	})
}

// Activate marca a campanha como ativa com a janela de execução definida.
func (r *Repository) Activate(ctx context.Context, id string, startedAt, endedAt time.Time) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE campaigns
        SET status = 'active', started_at = $2, ended_at = $3
        WHERE campaign_id = $1`,
		id, startedAt, endedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel faz o soft delete: o status vira cancelled e a linha permanece
// para histórico e agregados.
func (r *Repository) Cancel(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE campaigns SET status = 'cancelled' WHERE campaign_id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteExpired encerra toda campanha ativa cujo fim já passou.
// Um único UPDATE: rodar de novo em seguida não altera linha alguma.
func (r *Repository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE campaigns
        SET status = 'completed'
        WHERE status = 'active' AND ended_at < $1`,
		now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ExpiringWithin lista campanhas ativas que vencem dentro da janela.
func (r *Repository) ExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+campaignColumns+`
        FROM campaigns
        WHERE status = 'active' AND ended_at >= $1 AND ended_at < $2
        ORDER BY ended_at`,
		now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListTargetRoles resolve ids de cargo na taxonomia de referência.
func (r *Repository) ListTargetRoles(ctx context.Context, ids []int) ([]TargetRole, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT r.id, r.title, p.grouping
        FROM roles r
        JOIN profiles p ON p.id = r.profile_id
        WHERE r.id = ANY($1)
        ORDER BY r.id`,
		ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []TargetRole
	for rows.Next() {
		var role TargetRole
		if err := rows.Scan(&role.ID, &role.Title, &role.Profile); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
