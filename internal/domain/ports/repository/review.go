package repository

import (
	"context"

	"companion-marketplace/internal/domain/model"
)

// ReviewRepository is the port for reviews. Uniqueness per (match, reviewer)
// is enforced by the store; Save surfaces a duplicate as a conflict.
type ReviewRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Review) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Review, error)
	FindByMatchAndReviewer(ctx context.Context, tx Tx, matchID, reviewerID string) (*model.Review, error)
	Update(ctx context.Context, tx Tx, r *model.Review) error
	Delete(ctx context.Context, tx Tx, id string) error
	ListByReviewer(ctx context.Context, tx Tx, reviewerID string, q ReviewQuery) ([]*model.Review, int, error)
	List(ctx context.Context, tx Tx, q ReviewQuery) ([]*model.Review, int, error)
	// AverageRatingByReviewer returns 0 when the reviewer has no reviews.
	AverageRatingByReviewer(ctx context.Context, tx Tx, reviewerID string) (float64, error)
	// CountByRating returns review counts keyed by rating value.
	CountByRating(ctx context.Context, tx Tx) (map[int]int, error)
}
