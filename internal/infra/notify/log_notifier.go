package notify

import (
	"context"

	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/adapter"
)

// LogNotifier is the default notifier: it records the event in the service
// log. Delivery channels (mail, push) can replace it behind the same port.
type LogNotifier struct {
	log *zerolog.Logger
}

var _ adapter.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	nLog := logger.With().Str("component", "Notifier").Logger()
	return &LogNotifier{log: &nLog}
}

func (n *LogNotifier) PaymentConfirmed(ctx context.Context, explorerID string, plan model.PlanName) error {
	n.log.Info().
		Str("explorer_id", explorerID).
		Str("plan", string(plan)).
		Msg("payment confirmed, subscription active")
	return nil
}

func (n *LogNotifier) SubscriptionExpired(ctx context.Context, explorerID string, plan model.PlanName) error {
	n.log.Info().
		Str("explorer_id", explorerID).
		Str("plan", string(plan)).
		Msg("subscription expired")
	return nil
}
