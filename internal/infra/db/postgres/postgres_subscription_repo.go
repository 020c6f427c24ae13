package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, explorer_id, plan_name, start_date, end_date, is_active, created_at, updated_at`

// Upsert replaces the explorer's validity window; the table is unique on
// explorer_id so a repurchase can never stack rows.
func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (id, explorer_id, plan_name, start_date, end_date, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (explorer_id) DO UPDATE SET
  plan_name=$3, start_date=$4, end_date=$5, is_active=$6, updated_at=$8;`

	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.ExplorerID, s.PlanName, s.StartDate, s.EndDate, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByExplorer(ctx context.Context, tx repository.Tx, explorerID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE explorer_id=$1`
	row, err := pickRow(ctx, r.pool, tx, forUpdate(q, tx)+";", explorerID)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.ExplorerID, &s.PlanName, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *subscriptionRepo) ListActiveExpired(ctx context.Context, tx repository.Tx, asOf time.Time, limit int) ([]*model.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + subscriptionColumns + ` FROM subscriptions
WHERE is_active = TRUE AND end_date < $1 ORDER BY end_date ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, asOf, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s := &model.Subscription{}
		if err := rows.Scan(&s.ID, &s.ExplorerID, &s.PlanName, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *subscriptionRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE subscriptions SET is_active=FALSE, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
