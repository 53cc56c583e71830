package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/captei/prospeccao/internal/auth"
	"github.com/captei/prospeccao/internal/automation"
	"github.com/captei/prospeccao/internal/campaign"
	"github.com/captei/prospeccao/internal/config"
	"github.com/captei/prospeccao/internal/db"
	internalhttp "github.com/captei/prospeccao/internal/http"
	"github.com/captei/prospeccao/internal/menu"
	"github.com/captei/prospeccao/internal/repo"
	"github.com/captei/prospeccao/internal/service"
	"github.com/captei/prospeccao/internal/settings"
	"github.com/captei/prospeccao/internal/template"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	cipher, err := settings.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("cipher: %w", err)
	}

	repository := repo.New(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(repository, jwtManager)

	menuService := menu.NewService(menu.NewRepository(pool))
	templateService := template.NewService(template.NewRepository(pool))
	settingsService := settings.NewService(settings.NewRepository(pool), cipher, cfg.Webhook.URL)

	gatewayClient := automation.New(cfg.Webhook.Timeout, cfg.Webhook.Source, cfg.Webhook.Platform)
	dispatchGuard := automation.NewDispatchGuard(redisClient)
	campaignService := campaign.NewService(campaign.NewRepository(pool), gatewayClient, dispatchGuard, settingsService)

	var notifier campaign.Notifier
	if wn := campaign.NewWebhookNotifier(cfg.AlertWebhookURL); wn != nil {
		notifier = wn
	}
	reconciler := campaign.NewReconciler(campaignService, cfg.ReconcileInterval, notifier, log.Logger)
	reconciler.Start(ctx)
	defer reconciler.Stop()

	janitorCtx, janitorCancel := context.WithCancel(ctx)
	defer janitorCancel()
	go purgeSessionsLoop(janitorCtx, authService, cfg.ReconcileInterval)

	handler := internalhttp.NewRouter(cfg, internalhttp.Deps{
		Pool:      pool,
		Redis:     redisClient,
		Auth:      authService,
		Menus:     menuService,
		Campaigns: campaignService,
		Templates: templateService,
		Settings:  settingsService,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeSessionsLoop remove sessões vencidas periodicamente. Sessão expirada
// já não autentica; a limpeza só contém o crescimento da tabela.
func purgeSessionsLoop(ctx context.Context, authService *service.AuthService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := authService.PurgeExpiredSessions(ctx); err != nil {
				log.Warn().Err(err).Msg("limpeza de sessões falhou")
			}
		}
	}
}
