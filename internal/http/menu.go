package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/captei/prospeccao/internal/http/middleware"
	"github.com/captei/prospeccao/internal/menu"
	"github.com/captei/prospeccao/internal/repo"
)

// Violação de FK em role_permissions significa opção de menu inexistente.
const pgFKViolation = "23503"

// Menu devolve as opções visíveis ao papel do usuário autenticado.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	options, err := h.menus.MenuForRole(r.Context(), user.Role)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao montar menu", nil)
		return
	}

	WriteJSON(w, http.StatusOK, options)
}

// PermissionsMatrix devolve a grade papel × opção completa.
func (h *Handler) PermissionsMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.menus.Matrix(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao montar matriz de permissões", nil)
		return
	}
	WriteJSON(w, http.StatusOK, matrix)
}

type setPermissionsRequest struct {
	Permissions []menu.PermissionEntry `json:"permissions"`
}

// SetPermissions substitui atomicamente as permissões do papel.
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	role, valid := repo.ParseRole(chi.URLParam(r, "role"))
	if !valid {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "papel desconhecido", nil)
		return
	}

	var req setPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	if err := h.menus.SetPermissions(r.Context(), role, req.Permissions); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, menu.ErrUnknownRole), errors.Is(err, menu.ErrUnknownOption):
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.As(err, &pgErr) && pgErr.Code == pgFKViolation:
			WriteError(w, http.StatusBadRequest, "VALIDATION", "opção de menu desconhecida", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao gravar permissões", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
