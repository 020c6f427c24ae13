package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/infra/logging"
)

// Compile-time check
var _ ReviewUseCase = (*reviewUC)(nil)

// ReviewUseCase gates reviews behind completed journeys: only a participant
// of a COMPLETED match on a COMPLETED trip may leave one, once.
type ReviewUseCase interface {
	Create(ctx context.Context, reviewerID, matchID string, rating int, comment string) (*model.Review, error)
	GetByID(ctx context.Context, reviewID string) (*model.Review, error)
	// Update lets the author revise rating and comment.
	Update(ctx context.Context, explorerID, reviewID string, rating int, comment string) (*model.Review, error)
	// Delete removes the author's review.
	Delete(ctx context.Context, explorerID, reviewID string) error
	ListMine(ctx context.Context, explorerID string, q repository.ReviewQuery) ([]*model.Review, int, error)
	List(ctx context.Context, q repository.ReviewQuery) ([]*model.Review, int, error)
	// Moderate sets the moderation status. Callers restrict this to admins.
	Moderate(ctx context.Context, reviewID string, status model.ReviewStatus) (*model.Review, error)
}

type reviewUC struct {
	reviews repository.ReviewRepository
	matches repository.MatchRepository
	trips   repository.TripRepository
	log     *zerolog.Logger
}

func NewReviewUseCase(
	reviews repository.ReviewRepository,
	matches repository.MatchRepository,
	trips repository.TripRepository,
	logger *zerolog.Logger,
) *reviewUC {
	return &reviewUC{reviews: reviews, matches: matches, trips: trips, log: logger}
}

func (u *reviewUC) Create(ctx context.Context, reviewerID, matchID string, rating int, comment string) (*model.Review, error) {
	defer logging.TraceDuration(u.log, "ReviewUC.Create")()

	m, err := u.matches.FindByID(ctx, repository.NoTX, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMatchNotFound
	}
	if !allowed(OpReviewCreate, matchRoles(reviewerID, m)) {
		return nil, domain.ErrNotParticipant
	}
	if m.Status != model.MatchStatusCompleted {
		return nil, domain.ErrMatchNotCompleted
	}
	trip, err := u.trips.FindByID(ctx, repository.NoTX, m.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, domain.ErrTripNotFound
	}
	if trip.Status != model.TripStatusCompleted {
		return nil, domain.ErrTripNotCompleted
	}

	if existing, err := u.reviews.FindByMatchAndReviewer(ctx, repository.NoTX, matchID, reviewerID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrAlreadyReviewed
	}

	r, err := model.NewReview(uuid.NewString(), matchID, reviewerID, rating, comment)
	if err != nil {
		return nil, err
	}
	// The unique (match, reviewer) constraint backstops the check above;
	// Save surfaces a racing duplicate as the same conflict.
	if err := u.reviews.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (u *reviewUC) GetByID(ctx context.Context, reviewID string) (*model.Review, error) {
	r, err := u.reviews.FindByID(ctx, repository.NoTX, reviewID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrReviewNotFound
	}
	return r, nil
}

func (u *reviewUC) Update(ctx context.Context, explorerID, reviewID string, rating int, comment string) (*model.Review, error) {
	r, err := u.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.ReviewerID != explorerID {
		return nil, domain.ErrNotReviewOwner
	}
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidArgument
	}
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now()
	if err := u.reviews.Update(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (u *reviewUC) Delete(ctx context.Context, explorerID, reviewID string) error {
	r, err := u.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if r.ReviewerID != explorerID {
		return domain.ErrNotReviewOwner
	}
	return u.reviews.Delete(ctx, repository.NoTX, reviewID)
}

func (u *reviewUC) ListMine(ctx context.Context, explorerID string, q repository.ReviewQuery) ([]*model.Review, int, error) {
	return u.reviews.ListByReviewer(ctx, repository.NoTX, explorerID, q)
}

func (u *reviewUC) List(ctx context.Context, q repository.ReviewQuery) ([]*model.Review, int, error) {
	return u.reviews.List(ctx, repository.NoTX, q)
}

func (u *reviewUC) Moderate(ctx context.Context, reviewID string, status model.ReviewStatus) (*model.Review, error) {
	switch status {
	case model.ReviewStatusPending, model.ReviewStatusApproved, model.ReviewStatusRejected:
	default:
		return nil, domain.ErrInvalidArgument
	}
	r, err := u.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	if err := u.reviews.Update(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	return r, nil
}
