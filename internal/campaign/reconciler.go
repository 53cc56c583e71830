package campaign

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Reconciler roda a reconciliação periódica de campanhas: encerra as
// ativas vencidas e alerta sobre as que vencem nas próximas 24 horas.
type Reconciler struct {
	service  *Service
	interval time.Duration
	notifier Notifier
	logger   zerolog.Logger

	once   sync.Once
	cancel context.CancelFunc
}

// NewReconciler cria o reconciliador. notifier pode ser nil (sem alertas).
func NewReconciler(service *Service, interval time.Duration, notifier Notifier, logger zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Reconciler{service: service, interval: interval, notifier: notifier, logger: logger}
}

// Start inicia o loop periódico. Safe para chamar múltiplas vezes.
func (r *Reconciler) Start(parent context.Context) {
	r.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		r.cancel = cancel
		go r.runLoop(ctx)
	})
}

// Stop encerra o loop periódico.
func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Reconciler) runLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("reconciliação: loop iniciado")

	if err := r.RunOnce(ctx); err != nil {
		r.logger.Error().Err(err).Msg("reconciliação: primeira execução falhou")
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("reconciliação: loop encerrado")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error().Err(err).Msg("reconciliação: execução periódica falhou")
			}
		}
	}
}

// RunOnce executa uma passada de reconciliação. Cada transição de linha é
// independente; progresso parcial é aceitável e a repetição é inócua.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	completed, expiring, err := r.service.ReconcileExpired(ctx)
	if err != nil {
		return err
	}

	if completed > 0 {
		r.logger.Info().Int64("completed", completed).Msg("reconciliação: campanhas encerradas")
	}

	if len(expiring) > 0 && r.notifier != nil {
		for _, c := range expiring {
			text := fmt.Sprintf("Campanha %q (%s) expira em menos de 24h", c.Name, c.ID)
			if err := r.notifier.Notify(ctx, text); err != nil {
				r.logger.Warn().Err(err).Str("campaign_id", c.ID).Msg("reconciliação: alerta falhou")
			}
		}
	}

	return nil
}
