package model

import (
	"time"

	"companion-marketplace/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // checkout created; awaiting gateway confirmation
	PaymentStatusPaid    PaymentStatus = "PAID"    // confirmed and reconciled, immutable
	PaymentStatusFailed  PaymentStatus = "FAILED"  // gateway failure, tamper detection, or explicit decline
)

// Terminal reports whether the payment can no longer change status.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Payment records one checkout attempt against the external gateway.
// TransactionID is our reference handed to the gateway and is the sole
// idempotency key for reconciliation. RawResponse is an opaque, append-only
// audit payload; nothing beyond the four contract fields ever drives logic.
type Payment struct {
	ID            string // UUID
	ExplorerID    string
	PlanName      PlanName
	Amount        int64 // minor units, always the catalog price
	Currency      string
	TransactionID string // ULID, unique
	Gateway       string
	Status        PaymentStatus
	RawResponse   map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment constructs a pending payment for one checkout attempt.
func NewPayment(id, explorerID string, plan Plan, transactionID, gateway string) (*Payment, error) {
	if id == "" || explorerID == "" || transactionID == "" || gateway == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !plan.Payable() {
		return nil, domain.ErrPlanNotPayable
	}
	now := time.Now()
	return &Payment{
		ID:            id,
		ExplorerID:    explorerID,
		PlanName:      plan.Name,
		Amount:        plan.Price,
		Currency:      Currency,
		TransactionID: transactionID,
		Gateway:       gateway,
		Status:        PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
