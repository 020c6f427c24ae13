package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/ports/adapter"
	"companion-marketplace/internal/infra/metrics"
	"companion-marketplace/internal/usecase"
)

// PaymentReconciler periodically scans for stale pending payments and asks
// the provider for their authoritative state, then finalizes them. This
// covers checkouts whose callback never arrived or where the process crashed
// mid-confirm.
type PaymentReconciler struct {
	paymentUC  usecase.PaymentUseCase
	gateway    adapter.PaymentGateway
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	log        *zerolog.Logger
}

func NewPaymentReconciler(paymentUC usecase.PaymentUseCase, gateway adapter.PaymentGateway, interval, staleAfter time.Duration, batchSize int, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	recLog := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{
		paymentUC:  paymentUC,
		gateway:    gateway,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		log:        &recLog,
	}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconciler")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.paymentUC.PendingOlderThan(ctx, cutoff, w.batchSize)
	if err != nil {
		metrics.IncJobRun("payment_reconcile", "error")
		w.log.Error().Err(err).Msg("list stale pending payments failed")
		return
	}

	for _, p := range pending {
		payload, err := w.gateway.ValidateTransaction(ctx, p.TransactionID)
		if err != nil {
			// Provider has no record yet; the checkout may still be open.
			if errors.Is(err, domain.ErrPaymentNotFound) {
				continue
			}
			w.log.Warn().Err(err).Str("payment_id", p.ID).Str("transaction_id", p.TransactionID).Msg("validate transaction failed")
			continue
		}

		res, err := w.paymentUC.Finalize(ctx, *payload)
		if err != nil {
			// A concurrent callback settled the row first, nothing to do.
			if errors.Is(err, domain.ErrAlreadyProcessed) {
				continue
			}
			w.log.Error().Err(err).Str("payment_id", p.ID).Msg("finalize failed")
			continue
		}
		w.log.Info().
			Str("payment_id", p.ID).
			Bool("succeeded", res.Succeeded).
			Bool("replayed", res.Replayed).
			Msg("stale payment reconciled")
	}
	metrics.IncJobRun("payment_reconcile", "ok")
}
