package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indica ausência de configuração persistida.
var ErrNotFound = errors.New("configuração de webhook não encontrada")

// WebhookConfig é o registro singleton que aponta para o fluxo de
// automação externo. As chaves de API de terceiros ficam cifradas em
// repouso; os campos aqui já estão em claro (pós-decrypt).
type WebhookConfig struct {
	URL              string
	Source           string
	Platform         string
	PhantomBusterKey string
	CRMKey           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UpdatedBy        *uuid.UUID
}

// Repository acessa a tabela webhook_config.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de configurações.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get devolve a linha singleton com os campos ainda cifrados.
func (r *Repository) Get(ctx context.Context) (*WebhookConfig, error) {
	const query = `
        SELECT url, source, platform, phantombuster_key, crm_key, created_at, updated_at, updated_by
        FROM webhook_config
        WHERE singleton = TRUE
        LIMIT 1
    `

	var cfg WebhookConfig
	err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.URL,
		&cfg.Source,
		&cfg.Platform,
		&cfg.PhantomBusterKey,
		&cfg.CRMKey,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
		&cfg.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Save faz upsert da linha singleton.
func (r *Repository) Save(ctx context.Context, cfg WebhookConfig) error {
	const query = `
        INSERT INTO webhook_config (singleton, url, source, platform, phantombuster_key, crm_key, updated_by)
        VALUES (TRUE, $1, $2, $3, $4, $5, $6)
        ON CONFLICT (singleton)
        DO UPDATE SET
            url = EXCLUDED.url,
            source = EXCLUDED.source,
            platform = EXCLUDED.platform,
            phantombuster_key = EXCLUDED.phantombuster_key,
            crm_key = EXCLUDED.crm_key,
            updated_by = EXCLUDED.updated_by,
            updated_at = now()
    `

	_, err := r.pool.Exec(ctx, query,
		strings.TrimSpace(cfg.URL),
		strings.TrimSpace(cfg.Source),
		strings.TrimSpace(cfg.Platform),
		cfg.PhantomBusterKey,
		cfg.CRMKey,
		cfg.UpdatedBy,
	)
	return err
}

// Service aplica cifragem sobre o repositório e sanitiza leituras.
type Service struct {
	repo        *Repository
	cipher      *Cipher
	fallbackURL string
}

// NewService cria o serviço de configurações. fallbackURL vem do ambiente
// e é usada enquanto não houver registro no banco.
func NewService(repo *Repository, cipher *Cipher, fallbackURL string) *Service {
	return &Service{repo: repo, cipher: cipher, fallbackURL: fallbackURL}
}

// SanitizedConfig é a projeção segura para a tela de administração:
// nunca expõe chaves, apenas a presença delas.
type SanitizedConfig struct {
	URL           string     `json:"url"`
	Source        string     `json:"source"`
	Platform      string     `json:"platform"`
	HasPhantomKey bool       `json:"has_phantombuster_key"`
	HasCRMKey     bool       `json:"has_crm_key"`
	UpdatedAt     time.Time  `json:"updated_at"`
	UpdatedBy     *uuid.UUID `json:"updated_by"`
}

// UpdateInput carrega campos opcionais; nil mantém o valor atual.
type UpdateInput struct {
	URL              *string
	Source           *string
	Platform         *string
	PhantomBusterKey *string
	CRMKey           *string
	UpdatedBy        uuid.UUID
}

// Get devolve a configuração sanitizada.
func (s *Service) Get(ctx context.Context) (*SanitizedConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &SanitizedConfig{
		URL:           cfg.URL,
		Source:        cfg.Source,
		Platform:      cfg.Platform,
		HasPhantomKey: cfg.PhantomBusterKey != "",
		HasCRMKey:     cfg.CRMKey != "",
		UpdatedAt:     cfg.UpdatedAt,
		UpdatedBy:     cfg.UpdatedBy,
	}, nil
}

// Update aplica alterações parciais, cifrando as chaves antes de persistir.
func (s *Service) Update(ctx context.Context, input UpdateInput) error {
	current, err := s.repo.Get(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if current == nil {
		current = &WebhookConfig{}
	}

	if input.URL != nil {
		current.URL = *input.URL
	}
	if input.Source != nil {
		current.Source = *input.Source
	}
	if input.Platform != nil {
		current.Platform = *input.Platform
	}
	if input.PhantomBusterKey != nil {
		encrypted, err := s.cipher.Encrypt(*input.PhantomBusterKey)
		if err != nil {
			return err
		}
		current.PhantomBusterKey = encrypted
	}
	if input.CRMKey != nil {
		encrypted, err := s.cipher.Encrypt(*input.CRMKey)
		if err != nil {
			return err
		}
		current.CRMKey = encrypted
	}

	current.UpdatedBy = &input.UpdatedBy
	return s.repo.Save(ctx, *current)
}

// ResolveWebhookURL escolhe a URL do banco quando existir e cai para a do
// ambiente na ausência de registro.
func (s *Service) ResolveWebhookURL(ctx context.Context) (string, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.fallbackURL, nil
		}
		return "", err
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return s.fallbackURL, nil
	}
	return cfg.URL, nil
}

// PhantomBusterKey devolve a chave em claro para uso interno (nunca sai
// pela API pública).
func (s *Service) PhantomBusterKey(ctx context.Context) (string, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return "", err
	}
	return s.cipher.Decrypt(cfg.PhantomBusterKey)
}
