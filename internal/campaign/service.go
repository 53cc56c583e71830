package campaign

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/captei/prospeccao/internal/automation"
	"github.com/captei/prospeccao/internal/repo"
)

const defaultDurationDays = 30

type campaignRepository interface {
	List(ctx context.Context) ([]Campaign, error)
	GetByID(ctx context.Context, id string) (Campaign, error)
	InsertPending(ctx context.Context, c Campaign) error
	Activate(ctx context.Context, id string, startedAt, endedAt time.Time) error
	Cancel(ctx context.Context, id string) error
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
	ExpiringWithin(ctx context.Context, now time.Time, window time.Duration) ([]Campaign, error)
	ListTargetRoles(ctx context.Context, ids []int) ([]TargetRole, error)
}

type gateway interface {
	Dispatch(ctx context.Context, webhookURL string, req automation.Request) error
}

type dispatchGuard interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

type webhookResolver interface {
	ResolveWebhookURL(ctx context.Context) (string, error)
}

// Service é o dono do ciclo de vida das campanhas: criação (delegando o
// disparo ao gateway de automação), transições de status e estado derivado.
type Service struct {
	repo     campaignRepository
	gateway  gateway
	guard    dispatchGuard
	resolver webhookResolver
	now      func() time.Time
}

// NewService cria nova instância.
func NewService(r campaignRepository, gw gateway, guard dispatchGuard, resolver webhookResolver) *Service {
	return &Service{repo: r, gateway: gw, guard: guard, resolver: resolver, now: func() time.Time { return time.Now().UTC() }}
}

// List devolve todas as campanhas com os campos derivados do instante atual.
func (s *Service) List(ctx context.Context) ([]View, error) {
	campaigns, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]View, 0, len(campaigns))
	for _, c := range campaigns {
		views = append(views, Derive(c, now))
	}
	return views, nil
}

// Get devolve uma campanha com estado derivado.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return Derive(c, s.now()), nil
}

// Create valida filtros, grava a campanha atrás da regra de campanha
// única ativa e dispara o fluxo de automação externo. A falha do disparo
// cancela a linha recém-criada: nunca fica campanha pendente órfã.
func (s *Service) Create(ctx context.Context, input CreateInput, actor repo.User) (View, error) {
	sectors := cleanList(input.Sectors)
	if len(sectors) == 0 {
		return View{}, ErrSectorsRequired
	}
	regions := cleanList(input.Regions)

	duration := input.DurationDays
	if duration <= 0 {
		duration = defaultDurationDays
	}

	targetRoles, err := s.repo.ListTargetRoles(ctx, input.RoleIDs)
	if err != nil {
		return View{}, err
	}

	roleTitles := make([]string, 0, len(targetRoles))
	profiles := make([]string, 0, len(targetRoles))
	for _, role := range targetRoles {
		roleTitles = append(roleTitles, role.Title)
		profiles = appendUnique(profiles, role.Profile)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Campanha " + s.now().Format("02/01/2006")
	}

	c := Campaign{
		ID:           "cmp_" + uuid.NewString(),
		Name:         name,
		Status:       StatusPending,
		Sectors:      sectors,
		Roles:        roleTitles,
		RoleIDs:      input.RoleIDs,
		Regions:      regions,
		DurationDays: duration,
	}

	guardKey := dispatchKey(actor.ID.String(), sectors, input.RoleIDs, regions)
	acquired, err := s.guard.TryAcquire(ctx, guardKey)
	if err != nil {
		return View{}, err
	}
	if !acquired {
		return View{}, ErrDuplicateDispatch
	}

	if err := s.repo.InsertPending(ctx, c); err != nil {
		s.guard.Release(ctx, guardKey)
		return View{}, err
	}

	webhookURL, err := s.resolver.ResolveWebhookURL(ctx)
	if err != nil {
		s.abortCreate(ctx, c.ID, guardKey)
		return View{}, err
	}

	dispatchErr := s.gateway.Dispatch(ctx, webhookURL, automation.Request{
		SearchID:  c.ID,
		UserID:    actor.ID.String(),
		UserEmail: actor.Email,
		Sectors:   sectors,
		Profiles:  profiles,
		RoleIDs:   input.RoleIDs,
		Roles:     roleTitles,
		Regions:   regions,
	})
	if dispatchErr != nil {
		s.abortCreate(ctx, c.ID, guardKey)
		return View{}, dispatchErr
	}

	now := s.now()
	started := now
	ended := now.AddDate(0, 0, duration)
	if err := s.repo.Activate(ctx, c.ID, started, ended); err != nil {
		return View{}, err
	}

	c.Status = StatusActive
	c.StartedAt = &started
	c.EndedAt = &ended
	c.CreatedAt = now

	log.Info().Str("campaign_id", c.ID).Int("duration_days", duration).Msg("campanha criada e ativada")

	return Derive(c, now), nil
}

// abortCreate desfaz a criação após falha do disparo: cancela a linha e
// libera o guard para permitir nova tentativa imediata.
func (s *Service) abortCreate(ctx context.Context, id, guardKey string) {
	if err := s.repo.Cancel(ctx, id); err != nil {
		log.Error().Err(err).Str("campaign_id", id).Msg("falha ao cancelar campanha órfã")
	}
	s.guard.Release(ctx, guardKey)
}

// Deactivate cancela a campanha (soft delete). Estados terminais não
// admitem nova transição.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status.Terminal() {
		return ErrTerminalState
	}
	return s.repo.Cancel(ctx, id)
}

// ExpiringSoon lista campanhas ativas que vencem nas próximas 24 horas.
func (s *Service) ExpiringSoon(ctx context.Context) ([]View, error) {
	now := s.now()
	campaigns, err := s.repo.ExpiringWithin(ctx, now, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(campaigns))
	for _, c := range campaigns {
		views = append(views, Derive(c, now))
	}
	return views, nil
}

// ReconcileExpired encerra campanhas ativas vencidas e devolve as que
// vencem nas próximas 24h para alerta. Idempotente: a segunda execução
// consecutiva não altera linha alguma.
func (s *Service) ReconcileExpired(ctx context.Context) (int64, []Campaign, error) {
	now := s.now()

	completed, err := s.repo.CompleteExpired(ctx, now)
	if err != nil {
		return 0, nil, err
	}

	expiring, err := s.repo.ExpiringWithin(ctx, now, 24*time.Hour)
	if err != nil {
		return completed, nil, err
	}

	return completed, expiring, nil
}

// dispatchKey resume (usuário, filtros) em uma chave estável de dedup.
func dispatchKey(userID string, sectors []string, roleIDs []int, regions []string) string {
	parts := make([]string, 0, len(sectors)+len(roleIDs)+len(regions)+1)
	parts = append(parts, userID)
	parts = append(parts, append([]string(nil), sectors...)...)
	for _, id := range roleIDs {
		parts = append(parts, fmt.Sprintf("r%d", id))
	}
	parts = append(parts, append([]string(nil), regions...)...)
	sort.Strings(parts[1:])

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
