package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/automation"
	"github.com/captei/prospeccao/internal/repo"
)

type stubCampaignRepo struct {
	campaigns map[string]Campaign
	roles     map[int]TargetRole

	completeRuns  []int64
	cancelled     []string
	activatedID   string
	completeCalls int
}

func newStubCampaignRepo() *stubCampaignRepo {
	return &stubCampaignRepo{
		campaigns: make(map[string]Campaign),
		roles:     make(map[int]TargetRole),
	}
}

func (s *stubCampaignRepo) List(_ context.Context) ([]Campaign, error) {
	out := make([]Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCampaignRepo) GetByID(_ context.Context, id string) (Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (s *stubCampaignRepo) InsertPending(_ context.Context, c Campaign) error {
	// Mesmo gate do repositório real: pending também bloqueia, porque a
	// ativação só acontece depois do disparo externo.
	for _, existing := range s.campaigns {
		if existing.Status == StatusActive || existing.Status == StatusPending {
			return ErrActiveCampaignExists
		}
	}
	s.campaigns[c.ID] = c
	return nil
}

func (s *stubCampaignRepo) Activate(_ context.Context, id string, startedAt, endedAt time.Time) error {
	c, ok := s.campaigns[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = StatusActive
	c.StartedAt = &startedAt
	c.EndedAt = &endedAt
	s.campaigns[id] = c
	s.activatedID = id
	return nil
}

func (s *stubCampaignRepo) Cancel(_ context.Context, id string) error {
	c, ok := s.campaigns[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = StatusCancelled
	s.campaigns[id] = c
	s.cancelled = append(s.cancelled, id)
	return nil
}

func (s *stubCampaignRepo) CompleteExpired(_ context.Context, _ time.Time) (int64, error) {
	if s.completeCalls >= len(s.completeRuns) {
		return 0, nil
	}
	n := s.completeRuns[s.completeCalls]
	s.completeCalls++
	return n, nil
}

func (s *stubCampaignRepo) ExpiringWithin(_ context.Context, _ time.Time, _ time.Duration) ([]Campaign, error) {
	return nil, nil
}

func (s *stubCampaignRepo) ListTargetRoles(_ context.Context, ids []int) ([]TargetRole, error) {
	out := make([]TargetRole, 0, len(ids))
	for _, id := range ids {
		if role, ok := s.roles[id]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

type stubGateway struct {
	err      error
	requests []automation.Request
}

func (s *stubGateway) Dispatch(_ context.Context, _ string, req automation.Request) error {
	s.requests = append(s.requests, req)
	return s.err
}

type stubGuard struct {
	denied   bool
	acquired []string
	released []string
}

func (s *stubGuard) TryAcquire(_ context.Context, key string) (bool, error) {
	if s.denied {
		return false, nil
	}
	s.acquired = append(s.acquired, key)
	return true, nil
}

func (s *stubGuard) Release(_ context.Context, key string) {
	s.released = append(s.released, key)
}

type stubResolver struct {
	url string
	err error
}

func (s *stubResolver) ResolveWebhookURL(_ context.Context) (string, error) {
	return s.url, s.err
}

type campaignFixture struct {
	svc      *Service
	repo     *stubCampaignRepo
	gateway  *stubGateway
	guard    *stubGuard
	resolver *stubResolver
	now      time.Time
}

func newCampaignFixture() *campaignFixture {
	f := &campaignFixture{
		repo:     newStubCampaignRepo(),
		gateway:  &stubGateway{},
		guard:    &stubGuard{},
		resolver: &stubResolver{url: "https://n8n.example.com/webhook/abc"},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.gateway, f.guard, f.resolver)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func testActor() repo.User {
	return repo.User{ID: uuid.New(), Email: "operadora@captei.com.br", Role: repo.RoleUser}
}

func TestCreateExigeSetores(t *testing.T) {
	f := newCampaignFixture()

	_, err := f.svc.Create(context.Background(), CreateInput{Sectors: []string{"  ", ""}}, testActor())
	if !errors.Is(err, ErrSectorsRequired) {
		t.Fatalf("esperado ErrSectorsRequired, obtido %v", err)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("validação deve ocorrer antes de qualquer disparo")
	}
	if len(f.repo.campaigns) != 0 {
		t.Fatal("nada pode ser persistido quando a validação falha")
	}
}

func TestCreateAtivaCampanha(t *testing.T) {
	f := newCampaignFixture()
	f.repo.roles[7] = TargetRole{ID: 7, Title: "Diretor de RH", Profile: "decisor"}
	f.repo.roles[9] = TargetRole{ID: 9, Title: "Gerente de RH", Profile: "decisor"}

	view, err := f.svc.Create(context.Background(), CreateInput{
		Sectors:      []string{"tecnologia", "saúde"},
		RoleIDs:      []int{7, 9},
		Regions:      []string{"sudeste"},
		DurationDays: 10,
	}, testActor())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if view.Status != StatusActive {
		t.Fatalf("status esperado active, obtido %q", view.Status)
	}
	if view.StartedAt == nil || !view.StartedAt.Equal(f.now) {
		t.Fatalf("started_at esperado %v, obtido %v", f.now, view.StartedAt)
	}
	wantEnd := f.now.AddDate(0, 0, 10)
	if view.EndedAt == nil || !view.EndedAt.Equal(wantEnd) {
		t.Fatalf("ended_at esperado %v, obtido %v", wantEnd, view.EndedAt)
	}
	if view.Progress != 0 {
		t.Fatalf("progresso inicial esperado 0, obtido %d", view.Progress)
	}

	if len(f.gateway.requests) != 1 {
		t.Fatalf("esperado 1 disparo, obtido %d", len(f.gateway.requests))
	}
	req := f.gateway.requests[0]
	if req.SearchID != view.ID {
		t.Fatalf("searchId deve ser o id da campanha, obtido %q", req.SearchID)
	}
	if len(req.Roles) != 2 || req.Roles[0] != "Diretor de RH" {
		t.Fatalf("cargos resolvidos incorretos: %v", req.Roles)
	}
	if len(req.Profiles) != 1 || req.Profiles[0] != "decisor" {
		t.Fatalf("perfis devem ser deduplicados: %v", req.Profiles)
	}
}

func TestCreateAplicaDuracaoPadrao(t *testing.T) {
	f := newCampaignFixture()

	view, err := f.svc.Create(context.Background(), CreateInput{Sectors: []string{"varejo"}}, testActor())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.DurationDays != defaultDurationDays {
		t.Fatalf("duração esperada %d, obtido %d", defaultDurationDays, view.DurationDays)
	}
	wantEnd := f.now.AddDate(0, 0, defaultDurationDays)
	if view.EndedAt == nil || !view.EndedAt.Equal(wantEnd) {
		t.Fatalf("ended_at esperado %v, obtido %v", wantEnd, view.EndedAt)
	}
}

func TestCreateBloqueiaDisparoDuplicado(t *testing.T) {
	f := newCampaignFixture()
	f.guard.denied = true

	_, err := f.svc.Create(context.Background(), CreateInput{Sectors: []string{"varejo"}}, testActor())
	if !errors.Is(err, ErrDuplicateDispatch) {
		t.Fatalf("esperado ErrDuplicateDispatch, obtido %v", err)
	}
	if len(f.repo.campaigns) != 0 {
		t.Fatal("disparo duplicado não pode persistir campanha")
	}
}

func TestCreateRespeitaCampanhaUnicaAtiva(t *testing.T) {
	f := newCampaignFixture()
	f.repo.campaigns["cmp_ativa"] = Campaign{ID: "cmp_ativa", Status: StatusActive}

	_, err := f.svc.Create(context.Background(), CreateInput{Sectors: []string{"varejo"}}, testActor())
	if !errors.Is(err, ErrActiveCampaignExists) {
		t.Fatalf("esperado ErrActiveCampaignExists, obtido %v", err)
	}
	if len(f.guard.released) != 1 {
		t.Fatal("guard deve ser liberado quando a inserção falha")
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("inserção bloqueada não pode disparar a automação")
	}
}

func TestCreateBloqueadaPorCampanhaPendente(t *testing.T) {
	// Uma campanha pending está no meio do disparo externo; criar outra
	// nessa janela produziria duas campanhas ativas ao mesmo tempo.
	f := newCampaignFixture()
	f.repo.campaigns["cmp_pendente"] = Campaign{ID: "cmp_pendente", Status: StatusPending}

	_, err := f.svc.Create(context.Background(), CreateInput{Sectors: []string{"varejo"}}, testActor())
	if !errors.Is(err, ErrActiveCampaignExists) {
		t.Fatalf("esperado ErrActiveCampaignExists, obtido %v", err)
	}
	if len(f.gateway.requests) != 0 {
		t.Fatal("inserção bloqueada não pode disparar a automação")
	}
}

func TestCreateFalhaDoGatewayCancelaCampanha(t *testing.T) {
	f := newCampaignFixture()
	f.gateway.err = automation.ErrRejected

	_, err := f.svc.Create(context.Background(), CreateInput{Sectors: []string{"varejo"}}, testActor())
	if !errors.Is(err, automation.ErrRejected) {
		t.Fatalf("esperado ErrRejected, obtido %v", err)
	}

	if len(f.repo.cancelled) != 1 {
		t.Fatal("falha do disparo deve cancelar a linha recém-criada")
	}
	if len(f.guard.released) != 1 {
		t.Fatal("falha do disparo deve liberar o guard")
	}
	for _, c := range f.repo.campaigns {
		if c.Status == StatusPending {
			t.Fatal("nenhuma campanha pode ficar pendente órfã")
		}
	}
}

func TestDeactivateEstadoTerminal(t *testing.T) {
	f := newCampaignFixture()
	f.repo.campaigns["cmp_x"] = Campaign{ID: "cmp_x", Status: StatusCompleted}

	if err := f.svc.Deactivate(context.Background(), "cmp_x"); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("esperado ErrTerminalState, obtido %v", err)
	}
}

func TestDeactivateInexistente(t *testing.T) {
	f := newCampaignFixture()

	if err := f.svc.Deactivate(context.Background(), "cmp_nao_existe"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperado ErrNotFound, obtido %v", err)
	}
}

func TestDeactivateCancelaAtiva(t *testing.T) {
	f := newCampaignFixture()
	f.repo.campaigns["cmp_y"] = Campaign{ID: "cmp_y", Status: StatusActive}

	if err := f.svc.Deactivate(context.Background(), "cmp_y"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if f.repo.campaigns["cmp_y"].Status != StatusCancelled {
		t.Fatalf("status esperado cancelled, obtido %q", f.repo.campaigns["cmp_y"].Status)
	}
}

func TestReconcileExpiredEhIdempotente(t *testing.T) {
	f := newCampaignFixture()
	f.repo.completeRuns = []int64{3}

	completed, _, err := f.svc.ReconcileExpired(context.Background())
	if err != nil {
		t.Fatalf("primeira passada: %v", err)
	}
	if completed != 3 {
		t.Fatalf("primeira passada deveria encerrar 3, obtido %d", completed)
	}

	completed, _, err = f.svc.ReconcileExpired(context.Background())
	if err != nil {
		t.Fatalf("segunda passada: %v", err)
	}
	if completed != 0 {
		t.Fatalf("segunda passada não pode alterar linhas, obtido %d", completed)
	}
}

func TestDispatchKeyEstavel(t *testing.T) {
	a := dispatchKey("u1", []string{"tech", "saúde"}, []int{7, 9}, []string{"sul"})
	b := dispatchKey("u1", []string{"saúde", "tech"}, []int{9, 7}, []string{"sul"})
	if a != b {
		t.Fatal("a ordem dos filtros não pode alterar a chave de dedup")
	}

	c := dispatchKey("u2", []string{"tech", "saúde"}, []int{7, 9}, []string{"sul"})
	if a == c {
		t.Fatal("usuários diferentes não podem colidir na chave de dedup")
	}
}
