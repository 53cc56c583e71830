package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/captei/prospeccao/internal/template"
)

// ListTemplates devolve os templates de mensagem ativos.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar templates", nil)
		return
	}
	WriteJSON(w, http.StatusOK, templates)
}

// CreateTemplate insere um novo template de mensagem.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var input template.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	created, err := h.templates.Create(r.Context(), input)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// UpdateTemplate aplica alterações parciais em um template.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var input template.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	updated, err := h.templates.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "template não encontrado", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// DeleteTemplate remove um template.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.templates.Delete(r.Context(), id); err != nil {
		if errors.Is(err, template.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "template não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao excluir template", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
