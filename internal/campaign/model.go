package campaign

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indica campanha inexistente.
	ErrNotFound = errors.New("campanha não encontrada")
	// ErrSectorsRequired indica criação sem a única dimensão obrigatória.
	ErrSectorsRequired = errors.New("informe ao menos um setor")
	// ErrActiveCampaignExists bloqueia criação enquanto houver campanha ativa.
	ErrActiveCampaignExists = errors.New("já existe uma campanha ativa")
	// ErrTerminalState bloqueia transições a partir de estados terminais.
	ErrTerminalState = errors.New("campanha já encerrada")
	// ErrDuplicateDispatch indica reenvio dos mesmos filtros dentro da janela de dedup.
	ErrDuplicateDispatch = errors.New("disparo idêntico já em andamento")
)

// Status é o estado persistido da campanha.
// pending → active → {completed, cancelled}; paused existe no enum do
// banco mas nenhuma transição o produz ainda.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal informa se o estado não admite mais transições.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Campaign é a linha persistida. Campos derivados ficam em View.
type Campaign struct {
	ID           string     `json:"campaign_id"`
	Name         string     `json:"campaign_name"`
	Status       Status     `json:"status"`
	Sectors      []string   `json:"sectors"`
	Roles        []string   `json:"roles"`
	RoleIDs      []int      `json:"id_roles"`
	Regions      []string   `json:"regions"`
	DurationDays int        `json:"duration_days"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
}

// View acrescenta à campanha o estado derivado calculado na leitura.
// Nada disso é armazenado; o cálculo é puro em função de "now".
type View struct {
	Campaign
	Progress       int  `json:"progress"`
	DaysRemaining  int  `json:"days_remaining"`
	HoursRemaining int  `json:"hours_remaining"`
	IsExpired      bool `json:"is_expired"`
	IsActive       bool `json:"is_active"`
}

// Derive computa os campos de exibição da campanha para o instante dado.
// started_at/ended_at nulos produzem progresso zero, nunca erro.
func Derive(c Campaign, now time.Time) View {
	view := View{Campaign: c}

	if c.StartedAt == nil || c.EndedAt == nil {
		return view
	}

	start := *c.StartedAt
	end := *c.EndedAt

	total := end.Sub(start)
	if total > 0 {
		elapsed := now.Sub(start)
		progress := int(float64(elapsed) / float64(total) * 100)
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		view.Progress = progress
	} else if !now.Before(end) {
		view.Progress = 100
	}

	view.IsExpired = now.After(end)
	view.IsActive = c.Status == StatusActive && !view.IsExpired

	if remaining := end.Sub(now); remaining > 0 {
		view.DaysRemaining = int(remaining.Hours() / 24)
		view.HoursRemaining = int(remaining.Hours())
	}

	return view
}

// TargetRole é a taxonomia somente-leitura que traduz cargo legível em
// id de agrupamento (profile) para a segmentação externa.
type TargetRole struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Profile string `json:"profile"`
}

// CreateInput agrupa os filtros de criação de campanha.
type CreateInput struct {
	Name         string   `json:"campaign_name"`
	Sectors      []string `json:"sectors"`
	RoleIDs      []int    `json:"id_roles"`
	Regions      []string `json:"regions"`
	DurationDays int      `json:"duration_days"`
}
