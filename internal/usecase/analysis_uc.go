package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/infra/logging"
)

// Compile-time check
var _ AnalysisUseCase = (*analysisUC)(nil)

// ExplorerAnalysis summarizes one explorer's marketplace activity.
type ExplorerAnalysis struct {
	AcceptedMatches int
	CompletedTrips  int
	AverageRating   float64
}

// AdminAnalysis aggregates platform-wide figures for the moderation view.
type AdminAnalysis struct {
	Explorers          int
	CompletedTrips     int
	RatingDistribution map[int]int
}

// AnalysisUseCase serves the read-only statistics endpoints. Figures are
// computed per request; nothing here mutates state, so no transaction.
type AnalysisUseCase interface {
	ForExplorer(ctx context.Context, explorerID string) (*ExplorerAnalysis, error)
	Admin(ctx context.Context) (*AdminAnalysis, error)
}

type analysisUC struct {
	explorers repository.ExplorerRepository
	trips     repository.TripRepository
	matches   repository.MatchRepository
	reviews   repository.ReviewRepository
	log       *zerolog.Logger
}

func NewAnalysisUseCase(
	explorers repository.ExplorerRepository,
	trips repository.TripRepository,
	matches repository.MatchRepository,
	reviews repository.ReviewRepository,
	logger *zerolog.Logger,
) *analysisUC {
	return &analysisUC{explorers: explorers, trips: trips, matches: matches, reviews: reviews, log: logger}
}

func (u *analysisUC) ForExplorer(ctx context.Context, explorerID string) (*ExplorerAnalysis, error) {
	defer logging.TraceDuration(u.log, "AnalysisUC.ForExplorer")()

	accepted, err := u.matches.CountByParticipantAndStatus(ctx, repository.NoTX, explorerID, model.MatchStatusAccepted)
	if err != nil {
		return nil, err
	}
	completed, err := u.trips.CountByCreatorAndStatus(ctx, repository.NoTX, explorerID, model.TripStatusCompleted)
	if err != nil {
		return nil, err
	}
	avg, err := u.reviews.AverageRatingByReviewer(ctx, repository.NoTX, explorerID)
	if err != nil {
		return nil, err
	}
	return &ExplorerAnalysis{
		AcceptedMatches: accepted,
		CompletedTrips:  completed,
		AverageRating:   avg,
	}, nil
}

func (u *analysisUC) Admin(ctx context.Context) (*AdminAnalysis, error) {
	defer logging.TraceDuration(u.log, "AnalysisUC.Admin")()

	explorers, err := u.explorers.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	completed, err := u.trips.CountByStatus(ctx, repository.NoTX, model.TripStatusCompleted)
	if err != nil {
		return nil, err
	}
	dist, err := u.reviews.CountByRating(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &AdminAnalysis{
		Explorers:          explorers,
		CompletedTrips:     completed,
		RatingDistribution: dist,
	}, nil
}
