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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, explorer_id, plan_name, amount, currency, transaction_id, gateway, status, raw_response, created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, explorer_id, plan_name, amount, currency, transaction_id, gateway, status, raw_response, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.ExplorerID, p.PlanName, p.Amount, p.Currency, p.TransactionID, p.Gateway, p.Status, p.RawResponse, p.CreatedAt, p.UpdatedAt)
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

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	return r.findOne(ctx, tx, forUpdate(q, tx)+";", id)
}

func (r *paymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id=$1`
	return r.findOne(ctx, tx, forUpdate(q, tx)+";", transactionID)
}

func (r *paymentRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.ExplorerID, &p.PlanName, &p.Amount, &p.Currency, &p.TransactionID, &p.Gateway, &p.Status, &p.RawResponse, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

// UpdateStatusIfPending atomically settles the payment only while it is
// still PENDING; the row count tells a replay loser it lost.
func (r *paymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, raw map[string]any) (bool, error) {
	const q = `
UPDATE payments
   SET status=$2,
       raw_response = COALESCE(raw_response, '{}'::jsonb) || COALESCE($3::jsonb, '{}'::jsonb),
       updated_at = NOW()
 WHERE id=$1
   AND status='PENDING';`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, status, raw)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) AttachGatewayResponse(ctx context.Context, tx repository.Tx, id string, raw map[string]any) error {
	const q = `
UPDATE payments
   SET raw_response = COALESCE(raw_response, '{}'::jsonb) || COALESCE($2::jsonb, '{}'::jsonb),
       updated_at = NOW()
 WHERE id=$1;`

	_, err := execSQL(ctx, r.pool, tx, q, id, raw)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments
WHERE status='PENDING' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p := &model.Payment{}
		if err := rows.Scan(&p.ID, &p.ExplorerID, &p.PlanName, &p.Amount, &p.Currency, &p.TransactionID, &p.Gateway, &p.Status, &p.RawResponse, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}
