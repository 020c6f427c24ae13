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
)

// Compile-time check
var _ ExplorerUseCase = (*explorerUC)(nil)

// ExplorerUseCase resolves and maintains explorer profiles. Auth hands us
// an account user id; everything downstream keys on the explorer id.
type ExplorerUseCase interface {
	// RegisterOrFetch returns the profile for userID, creating it on first
	// contact.
	RegisterOrFetch(ctx context.Context, userID, fullName string) (*model.Explorer, error)
	GetByID(ctx context.Context, explorerID string) (*model.Explorer, error)
	// UpdateProfile updates the caller's own display fields.
	UpdateProfile(ctx context.Context, explorerID, fullName, profilePicture string) (*model.Explorer, error)
}

type explorerUC struct {
	explorers repository.ExplorerRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewExplorerUseCase(explorers repository.ExplorerRepository, tm repository.TransactionManager, logger *zerolog.Logger) *explorerUC {
	return &explorerUC{explorers: explorers, tm: tm, log: logger}
}

func (u *explorerUC) RegisterOrFetch(ctx context.Context, userID, fullName string) (*model.Explorer, error) {
	var out *model.Explorer
	// Find and create as one atomic step so two first requests for the same
	// account cannot both insert.
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		e, err := u.explorers.FindByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if e != nil {
			out = e
			return nil
		}
		e, err = model.NewExplorer(uuid.NewString(), userID, fullName)
		if err != nil {
			return err
		}
		if err := u.explorers.Save(ctx, tx, e); err != nil {
			return err
		}
		u.log.Info().Str("explorer_id", e.ID).Msg("explorer profile created")
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *explorerUC) GetByID(ctx context.Context, explorerID string) (*model.Explorer, error) {
	e, err := u.explorers.FindByID(ctx, repository.NoTX, explorerID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrExplorerNotFound
	}
	return e, nil
}

func (u *explorerUC) UpdateProfile(ctx context.Context, explorerID, fullName, profilePicture string) (*model.Explorer, error) {
	e, err := u.GetByID(ctx, explorerID)
	if err != nil {
		return nil, err
	}
	if fullName == "" {
		return nil, domain.ErrInvalidArgument
	}
	e.FullName = fullName
	e.ProfilePicture = profilePicture
	e.UpdatedAt = time.Now()
	if err := u.explorers.Save(ctx, repository.NoTX, e); err != nil {
		return nil, err
	}
	return e, nil
}
