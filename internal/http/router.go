package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/captei/prospeccao/internal/campaign"
	"github.com/captei/prospeccao/internal/config"
	httpmiddleware "github.com/captei/prospeccao/internal/http/middleware"
	"github.com/captei/prospeccao/internal/menu"
	"github.com/captei/prospeccao/internal/service"
	"github.com/captei/prospeccao/internal/settings"
	"github.com/captei/prospeccao/internal/template"
)

// Handler agrega os serviços expostos pela API.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	menus         *menu.Service
	campaigns     *campaign.Service
	templates     *template.Service
	settings      *settings.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// Deps agrupa as dependências injetadas pelo processo principal.
type Deps struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Auth      *service.AuthService
	Menus     *menu.Service
	Campaigns *campaign.Service
	Templates *template.Service
	Settings  *settings.Service
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		pool:          deps.Pool,
		redis:         deps.Redis,
		authService:   deps.Auth,
		menus:         deps.Menus,
		campaigns:     deps.Campaigns,
		templates:     deps.Templates,
		settings:      deps.Settings,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Register)
			auth.Post("/login", h.Login)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(deps.Auth))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Post("/auth/logout", h.Logout)
		private.Get("/me", h.Me)
		private.Get("/menu", h.Menu)

		private.Route("/campaigns", func(c chi.Router) {
			c.Get("/", h.ListCampaigns)
			c.Post("/", h.CreateCampaign)
			c.Get("/expiring", h.ExpiringCampaigns)
			c.Delete("/{id}", h.DeactivateCampaign)
		})

		private.Get("/templates", h.ListTemplates)

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)

			admin.Route("/admin", func(a chi.Router) {
				a.Get("/users", h.ListUsers)
				a.Patch("/users/{id}/role", h.UpdateUserRole)
				a.Patch("/users/{id}/status", h.ToggleUserStatus)
				a.Delete("/users/{id}", h.DeleteUser)

				a.Get("/permissions", h.PermissionsMatrix)
				a.Put("/permissions/{role}", h.SetPermissions)

				a.Get("/settings/webhook", h.GetWebhookSettings)
				a.Put("/settings/webhook", h.UpdateWebhookSettings)
			})

			admin.Post("/templates", h.CreateTemplate)
			admin.Put("/templates/{id}", h.UpdateTemplate)
			admin.Delete("/templates/{id}", h.DeleteTemplate)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
