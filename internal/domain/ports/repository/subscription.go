package repository

import (
	"context"
	"time"

	"companion-marketplace/internal/domain/model"
)

// SubscriptionRepository is the port for explorer subscriptions. The table
// is unique by explorer id; Upsert replaces the previous validity window.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByExplorer(ctx context.Context, tx Tx, explorerID string) (*model.Subscription, error)
	// ListActiveExpired returns still-active rows whose end date passed asOf.
	ListActiveExpired(ctx context.Context, tx Tx, asOf time.Time, limit int) ([]*model.Subscription, error)
	Deactivate(ctx context.Context, tx Tx, id string) error
}
