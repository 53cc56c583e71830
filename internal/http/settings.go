package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/captei/prospeccao/internal/http/middleware"
	"github.com/captei/prospeccao/internal/settings"
)

// GetWebhookSettings devolve a configuração do webhook sem expor chaves.
func (h *Handler) GetWebhookSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "configuração não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao carregar configuração", nil)
		return
	}

	WriteJSON(w, http.StatusOK, cfg)
}

type updateWebhookRequest struct {
	URL              *string `json:"url"`
	Source           *string `json:"source"`
	Platform         *string `json:"platform"`
	PhantomBusterKey *string `json:"phantombuster_key"`
	CRMKey           *string `json:"crm_key"`
}

// UpdateWebhookSettings aplica alterações parciais na configuração.
func (h *Handler) UpdateWebhookSettings(w http.ResponseWriter, r *http.Request) {
	var req updateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	actor := middleware.CurrentUser(r.Context())

	err := h.settings.Update(r.Context(), settings.UpdateInput{
		URL:              req.URL,
		Source:           req.Source,
		Platform:         req.Platform,
		PhantomBusterKey: req.PhantomBusterKey,
		CRMKey:           req.CRMKey,
		UpdatedBy:        actor.ID,
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao gravar configuração", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
