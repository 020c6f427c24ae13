package repository

import (
	"context"
	"time"

	"companion-marketplace/internal/domain/model"
)

// PaymentRepository is the port for payments. Rows are never deleted;
// FindByTransactionID acquires a row lock when called with a live tx.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	// UpdateStatusIfPending moves the payment to status only if it is still
	// PENDING, merging raw into the audit payload. Returns false when the
	// row was already terminal, which is how a replay loser finds out.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus, raw map[string]any) (bool, error)
	// AttachGatewayResponse merges the checkout response into the audit
	// payload without touching status.
	AttachGatewayResponse(ctx context.Context, tx Tx, id string, raw map[string]any) error
	// ListPendingOlderThan feeds the stale-payment reconciler.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}
