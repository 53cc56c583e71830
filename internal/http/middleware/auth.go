package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/captei/prospeccao/internal/repo"
)

type contextKey string

const contextKeyUser contextKey = "user"

// AuthCookieName é o cookie HTTP-only que carrega o token de sessão.
const AuthCookieName = "auth-token"

// TokenVerifier valida o token e devolve o usuário autenticado, ou nil
// para qualquer token não autenticável (assinatura, sessão ou conta).
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*repo.User, error)
}

// Auth extrai o token (header Bearer ou cookie), valida via serviço de
// autenticação e injeta o usuário no contexto. Ausência ou invalidade do
// token trata a requisição como anônima: 401.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", "erro ao validar sessão")
				return
			}
			if user == nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão inválida ou expirada")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest procura o token no header Authorization e, na
// ausência, no cookie de sessão.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
		return parts[1]
	}

	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value
	}
	return ""
}

// CurrentUser recupera o usuário autenticado do contexto.
func CurrentUser(ctx context.Context) *repo.User {
	user, _ := ctx.Value(contextKeyUser).(*repo.User)
	return user
}

// RequireAdmin garante que o usuário autenticado tem papel admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil || !user.Role.IsAdmin() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito à administração")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
