package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/infra/logging"
	"companion-marketplace/internal/infra/metrics"
)

// Compile-time check
var _ MatchUseCase = (*matchUC)(nil)

// MatchUseCase drives the connection-request lifecycle. Every transition
// runs inside one transaction with the match (and, where it changes, the
// trip) row-locked, so two concurrent callers serialize and the loser sees
// the winner's state as a conflict.
type MatchUseCase interface {
	// Request opens a PENDING match from requesterID toward the creator of
	// tripID and locks the trip against further requests.
	Request(ctx context.Context, requesterID, tripID string) (*model.Match, error)
	// Accept moves PENDING → ACCEPTED. Recipient only.
	Accept(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	// Reject moves PENDING → REJECTED and reopens the trip. Recipient only.
	Reject(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	// Cancel moves PENDING or ACCEPTED → CANCELLED and reopens the trip.
	// Requester only.
	Cancel(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	// Complete moves ACCEPTED → COMPLETED, once the owning trip itself has
	// completed. Either participant.
	Complete(ctx context.Context, explorerID, matchID string) (*model.Match, error)

	// GetByID returns the match, participants only.
	GetByID(ctx context.Context, explorerID, matchID string) (*model.Match, error)
	// ListMine returns every match the explorer participates in.
	ListMine(ctx context.Context, explorerID string) ([]*model.Match, error)
	// List pages over all matches, optionally filtered by status.
	List(ctx context.Context, q repository.MatchQuery) ([]*model.Match, int, error)
}

type matchUC struct {
	matches repository.MatchRepository
	trips   repository.TripRepository
	subs    SubscriptionUseCase
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewMatchUseCase(
	matches repository.MatchRepository,
	trips repository.TripRepository,
	subs SubscriptionUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *matchUC {
	return &matchUC{matches: matches, trips: trips, subs: subs, tm: tm, log: logger}
}

func (u *matchUC) Request(ctx context.Context, requesterID, tripID string) (*model.Match, error) {
	defer logging.TraceDuration(u.log, "MatchUC.Request")()

	var created *model.Match
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		trip, err := u.trips.FindByID(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return domain.ErrTripNotFound
		}
		if trip.CreatorID == requesterID {
			return domain.ErrOwnTrip
		}
		if trip.MatchCompleted || trip.Status.Terminal() {
			return domain.ErrTripLocked
		}

		// A pair is matched at most once per trip, in either direction.
		existing, err := u.matches.FindForTripPair(ctx, tx, tripID, requesterID, trip.CreatorID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateMatch
		}

		plan, err := u.subs.EntitlementFor(ctx, tx, requesterID)
		if err != nil {
			return err
		}
		open, err := u.matches.CountOpenByExplorer(ctx, tx, requesterID)
		if err != nil {
			return err
		}
		if open >= plan.AllowedMatches {
			return domain.ErrMatchLimitReached
		}

		m, err := model.NewMatch(uuid.NewString(), requesterID, trip.CreatorID, tripID)
		if err != nil {
			return err
		}
		if err := u.matches.Save(ctx, tx, m); err != nil {
			return err
		}
		if err := u.trips.SetMatchCompleted(ctx, tx, tripID, true); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMatchCreated()
	return created, nil
}

func (u *matchUC) Accept(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	return u.transition(ctx, explorerID, matchID, model.MatchStatusAccepted, OpMatchDecide)
}

func (u *matchUC) Reject(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	return u.transition(ctx, explorerID, matchID, model.MatchStatusRejected, OpMatchDecide)
}

func (u *matchUC) Cancel(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	return u.transition(ctx, explorerID, matchID, model.MatchStatusCancelled, OpMatchCancel)
}

func (u *matchUC) Complete(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	return u.transition(ctx, explorerID, matchID, model.MatchStatusCompleted, OpMatchComplete)
}

// transition applies one edge of the match graph. Role check before state
// check, so an outsider always gets a permission error rather than learning
// the match's state.
func (u *matchUC) transition(ctx context.Context, explorerID, matchID string, to model.MatchStatus, op Op) (*model.Match, error) {
	defer logging.TraceDuration(u.log, "MatchUC.transition")()

	var out *model.Match
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.matches.FindByID(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMatchNotFound
		}
		if !allowed(op, matchRoles(explorerID, m)) {
			if !m.Participant(explorerID) {
				return domain.ErrNotParticipant
			}
			return domain.ErrForbidden
		}
		if m.Status.Terminal() {
			return domain.ErrTerminalState
		}
		if !m.Status.CanTransition(to) {
			return domain.ErrTerminalState
		}
		switch to {
		case model.MatchStatusAccepted, model.MatchStatusCompleted:
			trip, err := u.trips.FindByID(ctx, tx, m.TripID)
			if err != nil {
				return err
			}
			if trip == nil {
				return domain.ErrTripNotFound
			}
			// A request left pending on a trip that already closed can no
			// longer be accepted; completion needs the trip completed.
			if to == model.MatchStatusAccepted && trip.Status.Terminal() {
				return domain.ErrTripLocked
			}
			if to == model.MatchStatusCompleted && trip.Status != model.TripStatusCompleted {
				return domain.ErrTripNotCompleted
			}
		}

		if err := u.matches.UpdateStatus(ctx, tx, m.ID, to); err != nil {
			return err
		}
		// Losing a match reopens the trip; completing or accepting keeps it
		// closed.
		if to == model.MatchStatusRejected || to == model.MatchStatusCancelled {
			if err := u.trips.SetMatchCompleted(ctx, tx, m.TripID, false); err != nil {
				return err
			}
		}
		m.Status = to
		m.UpdatedAt = time.Now()
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMatchTransition(string(to))
	return out, nil
}

func (u *matchUC) GetByID(ctx context.Context, explorerID, matchID string) (*model.Match, error) {
	m, err := u.matches.FindByID(ctx, repository.NoTX, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMatchNotFound
	}
	if !m.Participant(explorerID) {
		return nil, domain.ErrNotParticipant
	}
	return m, nil
}

func (u *matchUC) ListMine(ctx context.Context, explorerID string) ([]*model.Match, error) {
	return u.matches.ListByParticipant(ctx, repository.NoTX, explorerID)
}

func (u *matchUC) List(ctx context.Context, q repository.MatchQuery) ([]*model.Match, int, error) {
	return u.matches.List(ctx, repository.NoTX, q)
}
