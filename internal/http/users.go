package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/http/middleware"
	"github.com/captei/prospeccao/internal/repo"
	"github.com/captei/prospeccao/internal/service"
)

// ListUsers devolve todos os usuários para a tela de administração.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar usuários", nil)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, toUserPayload(u))
	}
	WriteJSON(w, http.StatusOK, payload)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole troca o papel de um usuário.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	role, valid := repo.ParseRole(req.Role)
	if !valid {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "papel desconhecido", nil)
		return
	}

	if err := h.authService.UpdateUserRole(r.Context(), id, role); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao atualizar papel", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

// ToggleUserStatus inverte o flag de conta ativa do usuário alvo.
func (h *Handler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	actor := middleware.CurrentUser(r.Context())

	active, err := h.authService.ToggleUserStatus(r.Context(), actor.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfAction):
			WriteError(w, http.StatusConflict, "CONFLICT", "não é possível desativar a própria conta", nil)
		case errors.Is(err, repo.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao atualizar status", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

// DeleteUser remove um usuário e suas sessões.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	actor := middleware.CurrentUser(r.Context())

	if err := h.authService.DeleteUser(r.Context(), actor.ID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfAction):
			WriteError(w, http.StatusConflict, "CONFLICT", "não é possível excluir a própria conta", nil)
		case errors.Is(err, repo.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuário não encontrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao excluir usuário", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return uuid.Nil, false
	}
	return id, true
}
