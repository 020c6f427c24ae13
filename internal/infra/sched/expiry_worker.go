package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"companion-marketplace/internal/infra/metrics"
	"companion-marketplace/internal/usecase"
)

// ExpiryWorker periodically finishes expired subscriptions via the use case.
type ExpiryWorker struct {
	interval time.Duration
	subUC    usecase.SubscriptionUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, subUC usecase.SubscriptionUseCase, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		subUC:    subUC,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once on startup, then on every tick.
	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	n, err := w.subUC.FinishExpired(ctx, time.Now(), 500)
	if err != nil {
		metrics.IncJobRun("subscription_expiry", "error")
		w.log.Error().Err(err).Msg("expiry worker error")
		return
	}
	metrics.IncJobRun("subscription_expiry", "ok")
	if n > 0 {
		w.log.Info().Int("count", n).Msg("expired subscriptions finished")
	}
}
