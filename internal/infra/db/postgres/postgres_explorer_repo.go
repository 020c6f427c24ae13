package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
)

var _ repository.ExplorerRepository = (*explorerRepo)(nil)

type explorerRepo struct{ pool *pgxpool.Pool }

func NewExplorerRepo(pool *pgxpool.Pool) *explorerRepo {
	return &explorerRepo{pool: pool}
}

const explorerColumns = `id, user_id, full_name, profile_picture, is_premium, created_at, updated_at`

func (r *explorerRepo) Save(ctx context.Context, tx repository.Tx, e *model.Explorer) error {
	const q = `
INSERT INTO explorers (id, user_id, full_name, profile_picture, is_premium, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  full_name=$3, profile_picture=$4, is_premium=$5, updated_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.FullName, e.ProfilePicture, e.IsPremium, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *explorerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Explorer, error) {
	q := `SELECT ` + explorerColumns + ` FROM explorers WHERE id=$1`
	return r.findOne(ctx, tx, forUpdate(q, tx)+";", id)
}

func (r *explorerRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Explorer, error) {
	q := `SELECT ` + explorerColumns + ` FROM explorers WHERE user_id=$1`
	return r.findOne(ctx, tx, forUpdate(q, tx)+";", userID)
}

func (r *explorerRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Explorer, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	e := &model.Explorer{}
	if err := row.Scan(&e.ID, &e.UserID, &e.FullName, &e.ProfilePicture, &e.IsPremium, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}

func (r *explorerRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM explorers;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *explorerRepo) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	const q = `UPDATE explorers SET is_premium=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, premium)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
