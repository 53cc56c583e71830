package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/captei/prospeccao/internal/auth"
	"github.com/captei/prospeccao/internal/config"
	"github.com/captei/prospeccao/internal/db"
	"github.com/captei/prospeccao/internal/repo"
	"github.com/captei/prospeccao/internal/util"
)

// seedOption descreve uma entrada do catálogo inicial de menu.
type seedOption struct {
	name       string
	label      string
	href       string
	icon       string
	orderIndex int
	adminOnly  bool
}

// Catálogo padrão do painel. O seed é idempotente: opções já existentes
// (por name) não são tocadas.
var defaultMenu = []seedOption{
	{name: "dashboard", label: "Dashboard", href: "/dashboard", icon: "home", orderIndex: 10},
	{name: "campaigns", label: "Campanhas", href: "/campaigns", icon: "target", orderIndex: 20},
	{name: "templates", label: "Templates", href: "/templates", icon: "file-text", orderIndex: 30},
	{name: "users", label: "Usuários", href: "/admin/users", icon: "users", orderIndex: 40, adminOnly: true},
	{name: "permissions", label: "Permissões", href: "/admin/permissions", icon: "shield", orderIndex: 50, adminOnly: true},
	{name: "settings", label: "Configurações", href: "/admin/settings", icon: "settings", orderIndex: 60, adminOnly: true},
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("bootstrap falhou")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	email := flag.String("email", "", "e-mail do primeiro administrador")
	password := flag.String("password", "", "senha do primeiro administrador")
	name := flag.String("name", "", "nome completo (opcional)")
	skipAdmin := flag.Bool("skip-admin", false, "apenas semeia o menu, sem criar administrador")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if err := seedMenu(ctx, pool); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	log.Info().Int("options", len(defaultMenu)).Msg("catálogo de menu verificado")

	if *skipAdmin {
		return nil
	}

	if err := util.ValidateEmail(*email); err != nil {
		return fmt.Errorf("flag -email: %w", err)
	}
	if err := util.ValidatePassword(*password); err != nil {
		return fmt.Errorf("flag -password: %w", err)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	var fullName *string
	if *name != "" {
		fullName = name
	}

	queries := repo.New(pool)
	user, err := queries.InsertUser(ctx, *email, hash, fullName, repo.RoleAdmin)
	if err != nil {
		return fmt.Errorf("criar administrador: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("administrador criado")
	return nil
}

// seedMenu insere o catálogo padrão e libera cada opção para os papéis
// adequados. Idempotente: rodar de novo não altera permissões já definidas.
func seedMenu(ctx context.Context, pool *pgxpool.Pool) error {
	return db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, opt := range defaultMenu {
			var id uuid.UUID
			err := tx.QueryRow(ctx, `
                INSERT INTO menu_options (id, name, label, href, icon, order_index, is_active)
                VALUES ($1, $2, $3, $4, $5, $6, TRUE)
                ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
                RETURNING id`,
				uuid.New(), opt.name, opt.label, opt.href, opt.icon, opt.orderIndex,
			).Scan(&id)
			if err != nil {
				return err
			}

			roles := []repo.Role{repo.RoleAdmin}
			if !opt.adminOnly {
				roles = repo.AllRoles()
			}
			for _, role := range roles {
				if _, err := tx.Exec(ctx, `
                    INSERT INTO role_permissions (role, menu_option_id, can_access)
                    VALUES ($1, $2, TRUE)
                    ON CONFLICT (role, menu_option_id) DO NOTHING`,
					role, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
