package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/captei/prospeccao/internal/http/middleware"
	"github.com/captei/prospeccao/internal/repo"
	"github.com/captei/prospeccao/internal/service"
)

// userPayload é a projeção pública do usuário. O hash de senha nunca sai
// pela API.
type userPayload struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Role      repo.Role `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserPayload(u repo.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

// Register cadastra um novo usuário com papel padrão.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.Is(err, service.ErrDuplicateEmail):
			WriteError(w, http.StatusConflict, "CONFLICT", "e-mail já cadastrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao cadastrar usuário", nil)
		}
		return
	}

	WriteJSON(w, http.StatusCreated, toUserPayload(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      userPayload `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Login autentica credenciais, abre a sessão e grava o cookie de auth.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			WriteError(w, http.StatusUnauthorized, "AUTH", "credenciais inválidas", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "conta desativada", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao autenticar", nil)
		}
		return
	}

	h.setAuthCookie(w, result.Token, result.ExpiresAt)

	WriteJSON(w, http.StatusOK, loginResponse{
		User:      toUserPayload(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// Logout encerra a sessão corrente e limpa o cookie. Idempotente.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if err := h.authService.Logout(r.Context(), token); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao encerrar sessão", nil)
		return
	}

	h.clearAuthCookie(w)
	WriteJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// Me devolve o usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}
	WriteJSON(w, http.StatusOK, toUserPayload(*user))
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !h.devCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.devCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
