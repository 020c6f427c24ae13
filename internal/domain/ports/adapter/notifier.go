package adapter

import (
	"context"

	"companion-marketplace/internal/domain/model"
)

// Notifier is the best-effort side channel for confirmations. Failures are
// logged by callers and never roll back the durable state that triggered
// them.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, explorerID string, plan model.PlanName) error
	SubscriptionExpired(ctx context.Context, explorerID string, plan model.PlanName) error
}
