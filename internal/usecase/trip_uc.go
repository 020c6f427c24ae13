package usecase

import (
	"context"
	"strings"
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
var _ TripUseCase = (*tripUC)(nil)

// TripInput carries the caller-editable trip fields.
type TripInput struct {
	Title             string
	Destination       string
	DepartureLocation string
	StartDate         time.Time
	EndDate           time.Time
	Description       string
	Budget            string
	Image             string
	JourneyType       []string
	Duration          string
	Languages         []string
}

// TripUseCase owns the trip lifecycle: CRUD for the creator, listings for
// everyone, and the terminal status change that cascades into matches.
type TripUseCase interface {
	Create(ctx context.Context, creatorID string, in TripInput) (*model.Trip, error)
	Update(ctx context.Context, explorerID, tripID string, in TripInput) (*model.Trip, error)
	Delete(ctx context.Context, explorerID, tripID string) error
	GetByID(ctx context.Context, tripID string) (*model.Trip, error)

	List(ctx context.Context, q repository.TripQuery) ([]*model.Trip, int, error)
	ListMine(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error)
	// ListAvailable returns trips the explorer could still request: open,
	// not their own, and not already matched with them.
	ListAvailable(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error)

	// UpdateStatus moves the trip to COMPLETED or CANCELLED and cascades
	// the trip's ACCEPTED matches to the same terminal status.
	UpdateStatus(ctx context.Context, explorerID, tripID string, to model.TripStatus) (*model.Trip, error)
}

type tripUC struct {
	trips   repository.TripRepository
	matches repository.MatchRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewTripUseCase(
	trips repository.TripRepository,
	matches repository.MatchRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *tripUC {
	return &tripUC{trips: trips, matches: matches, tm: tm, log: logger}
}

func (u *tripUC) Create(ctx context.Context, creatorID string, in TripInput) (*model.Trip, error) {
	defer logging.TraceDuration(u.log, "TripUC.Create")()

	t, err := model.NewTrip(uuid.NewString(), creatorID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Destination))
	if err != nil {
		return nil, err
	}
	applyInput(t, in)
	if err := u.trips.Save(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	metrics.IncTripCreated()
	return t, nil
}

func (u *tripUC) Update(ctx context.Context, explorerID, tripID string, in TripInput) (*model.Trip, error) {
	var out *model.Trip
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.trips.FindByID(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTripNotFound
		}
		if !allowed(OpTripUpdate, tripRoles(explorerID, t, nil)) {
			return domain.ErrForbidden
		}
		if t.Status.Terminal() {
			return domain.ErrTerminalState
		}
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Destination) == "" {
			return domain.ErrInvalidArgument
		}
		t.Title = strings.TrimSpace(in.Title)
		t.Destination = strings.TrimSpace(in.Destination)
		applyInput(t, in)
		t.UpdatedAt = time.Now()
		if err := u.trips.Save(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *tripUC) Delete(ctx context.Context, explorerID, tripID string) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.trips.FindByID(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTripNotFound
		}
		if !allowed(OpTripDelete, tripRoles(explorerID, t, nil)) {
			return domain.ErrForbidden
		}
		// An engaged trip stays for its matches' sake; close it instead.
		if t.MatchCompleted {
			return domain.ErrTripLocked
		}
		return u.trips.Delete(ctx, tx, tripID)
	})
}

func (u *tripUC) GetByID(ctx context.Context, tripID string) (*model.Trip, error) {
	t, err := u.trips.FindByID(ctx, repository.NoTX, tripID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTripNotFound
	}
	return t, nil
}

func (u *tripUC) List(ctx context.Context, q repository.TripQuery) ([]*model.Trip, int, error) {
	return u.trips.List(ctx, repository.NoTX, q)
}

func (u *tripUC) ListMine(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	return u.trips.ListByCreator(ctx, repository.NoTX, explorerID, q)
}

func (u *tripUC) ListAvailable(ctx context.Context, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	return u.trips.ListAvailable(ctx, repository.NoTX, explorerID, q)
}

func (u *tripUC) UpdateStatus(ctx context.Context, explorerID, tripID string, to model.TripStatus) (*model.Trip, error) {
	defer logging.TraceDuration(u.log, "TripUC.UpdateStatus")()

	if to != model.TripStatusCompleted && to != model.TripStatusCancelled {
		return nil, domain.ErrInvalidArgument
	}

	var out *model.Trip
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.trips.FindByID(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrTripNotFound
		}
		accepted, err := u.matches.ListByTripAndStatus(ctx, tx, tripID, model.MatchStatusAccepted)
		if err != nil {
			return err
		}
		if !allowed(OpTripStatus, tripRoles(explorerID, t, accepted)) {
			return domain.ErrForbidden
		}
		if t.Status.Terminal() {
			return domain.ErrTerminalState
		}
		// A trip only completes when somebody actually travelled together.
		if to == model.TripStatusCompleted && len(accepted) == 0 {
			return domain.ErrNoAcceptedMatches
		}

		cascadeTo := model.MatchStatusCompleted
		if to == model.TripStatusCancelled {
			cascadeTo = model.MatchStatusCancelled
		}
		moved, err := u.matches.CascadeStatus(ctx, tx, tripID, model.MatchStatusAccepted, cascadeTo)
		if err != nil {
			return err
		}
		if err := u.trips.UpdateStatus(ctx, tx, tripID, to, true); err != nil {
			return err
		}
		u.log.Info().Str("trip_id", tripID).Str("status", string(to)).Int("cascaded", moved).Msg("trip closed")
		t.Status = to
		t.MatchCompleted = true
		t.UpdatedAt = time.Now()
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncTripClosed(string(to))
	return out, nil
}

func applyInput(t *model.Trip, in TripInput) {
	t.DepartureLocation = in.DepartureLocation
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	t.Description = in.Description
	t.Budget = in.Budget
	t.Image = in.Image
	t.JourneyType = in.JourneyType
	t.Duration = in.Duration
	t.Languages = in.Languages
}
