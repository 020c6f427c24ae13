package model

import (
	"time"

	"companion-marketplace/internal/domain"
)

// Subscription is the durable record of an explorer's paid plan and its
// validity window. At most one row exists per explorer; activation always
// replaces the previous window.
type Subscription struct {
	ID         string // UUID
	ExplorerID string // unique
	PlanName   PlanName
	StartDate  time.Time
	EndDate    time.Time
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSubscription constructs an active subscription starting at start; the
// end date is derived from the plan's validity window, never stored freely.
func NewSubscription(id, explorerID string, plan Plan, start time.Time) (*Subscription, error) {
	if id == "" || explorerID == "" || plan.Name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:         id,
		ExplorerID: explorerID,
		PlanName:   plan.Name,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, plan.DurationDays),
		IsActive:   true,
		CreatedAt:  start,
		UpdatedAt:  start,
	}, nil
}

// ValidAt reports whether the subscription grants entitlement at t.
func (s *Subscription) ValidAt(t time.Time) bool {
	return s != nil && s.IsActive && !t.Before(s.StartDate) && t.Before(s.EndDate)
}
