package repository

import (
	"context"

	"companion-marketplace/internal/domain/model"
)

// ExplorerRepository is the port for explorer profiles.
type ExplorerRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Explorer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Explorer, error)
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Explorer, error)
	// SetPremium flips the denormalized premium flag kept in step with the
	// subscription row.
	SetPremium(ctx context.Context, tx Tx, id string, premium bool) error
	Count(ctx context.Context, tx Tx) (int, error)
}
