package model

import (
	"time"

	"companion-marketplace/internal/domain"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// Review is one rating per match per reviewer, only possible once both the
// match and its trip reached COMPLETED.
type Review struct {
	ID         string // UUID
	MatchID    string
	ReviewerID string // explorer id
	Rating     int    // 1..5
	Comment    string
	Status     ReviewStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReview validates and constructs an approved review.
func NewReview(id, matchID, reviewerID string, rating int, comment string) (*Review, error) {
	if id == "" || matchID == "" || reviewerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Review{
		ID:         id,
		MatchID:    matchID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
		Status:     ReviewStatusApproved,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
