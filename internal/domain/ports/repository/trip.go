package repository

import (
	"context"

	"companion-marketplace/internal/domain/model"
)

// TripRepository is the port for trips. FindByID acquires a row lock when
// called with a live tx.
type TripRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Trip) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Trip, error)
	Delete(ctx context.Context, tx Tx, id string) error
	// SetMatchCompleted raises or lowers the "closed for new requests" lock.
	SetMatchCompleted(ctx context.Context, tx Tx, id string, locked bool) error
	// UpdateStatus writes the terminal status together with the lock flag.
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.TripStatus, matchCompleted bool) error

	List(ctx context.Context, tx Tx, q TripQuery) ([]*model.Trip, int, error)
	ListByCreator(ctx context.Context, tx Tx, creatorID string, q TripQuery) ([]*model.Trip, int, error)
	// ListAvailable returns unlocked trips not created by explorerID and
	// with no existing match involving explorerID.
	ListAvailable(ctx context.Context, tx Tx, explorerID string, q TripQuery) ([]*model.Trip, int, error)

	CountByStatus(ctx context.Context, tx Tx, status model.TripStatus) (int, error)
	CountByCreatorAndStatus(ctx context.Context, tx Tx, creatorID string, status model.TripStatus) (int, error)
}
