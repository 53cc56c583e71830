package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/captei/prospeccao/internal/automation"
	"github.com/captei/prospeccao/internal/campaign"
	"github.com/captei/prospeccao/internal/http/middleware"
)

// ListCampaigns devolve todas as campanhas com estado derivado.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	views, err := h.campaigns.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar campanhas", nil)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

// CreateCampaign cria a campanha e dispara o fluxo de automação externo.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input campaign.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	actor := middleware.CurrentUser(r.Context())

	view, err := h.campaigns.Create(r.Context(), input, *actor)
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrSectorsRequired):
			WriteError(w, http.StatusBadRequest, "VALIDATION", "informe ao menos um setor", nil)
		case errors.Is(err, campaign.ErrActiveCampaignExists):
			WriteError(w, http.StatusConflict, "CONFLICT", "já existe uma campanha ativa", nil)
		case errors.Is(err, campaign.ErrDuplicateDispatch):
			WriteError(w, http.StatusConflict, "CONFLICT", "disparo idêntico já em andamento", nil)
		case errors.Is(err, automation.ErrTimeout):
			WriteError(w, http.StatusGatewayTimeout, "UPSTREAM", "automação externa não respondeu a tempo", nil)
		case errors.Is(err, automation.ErrUnreachable):
			WriteError(w, http.StatusBadGateway, "UPSTREAM", "automação externa inacessível", nil)
		case errors.Is(err, automation.ErrRejected):
			WriteError(w, http.StatusBadGateway, "UPSTREAM", "automação externa recusou o disparo", nil)
		case errors.Is(err, automation.ErrNoWebhook):
			WriteError(w, http.StatusConflict, "CONFLICT", "nenhuma URL de webhook configurada", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao criar campanha", nil)
		}
		return
	}

	WriteJSON(w, http.StatusCreated, view)
}

// ExpiringCampaigns lista campanhas ativas que vencem nas próximas 24 horas.
func (h *Handler) ExpiringCampaigns(w http.ResponseWriter, r *http.Request) {
	views, err := h.campaigns.ExpiringSoon(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar campanhas a vencer", nil)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

// DeactivateCampaign cancela a campanha (soft delete).
func (h *Handler) DeactivateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.campaigns.Deactivate(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, campaign.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "campanha não encontrada", nil)
		case errors.Is(err, campaign.ErrTerminalState):
			WriteError(w, http.StatusConflict, "CONFLICT", "campanha já encerrada", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao cancelar campanha", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}
