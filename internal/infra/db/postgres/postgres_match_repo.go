package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"companion-marketplace/internal/domain"
	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
)

var _ repository.MatchRepository = (*matchRepo)(nil)

type matchRepo struct{ pool *pgxpool.Pool }

func NewMatchRepo(pool *pgxpool.Pool) *matchRepo {
	return &matchRepo{pool: pool}
}

const matchColumns = `id, requester_id, recipient_id, trip_id, status, created_at, updated_at`

func (r *matchRepo) Save(ctx context.Context, tx repository.Tx, m *model.Match) error {
	const q = `
INSERT INTO matches (id, requester_id, recipient_id, trip_id, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET status=$5, updated_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.RequesterID, m.RecipientID, m.TripID, m.Status, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMatch
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *matchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches WHERE id=$1`
	row, err := pickRow(ctx, r.pool, tx, forUpdate(q, tx)+";", id)
	if err != nil {
		return nil, err
	}
	return scanMatchRow(row)
}

func (r *matchRepo) FindForTripPair(ctx context.Context, tx repository.Tx, tripID, a, b string) (*model.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches
WHERE trip_id=$1 AND ((requester_id=$2 AND recipient_id=$3) OR (requester_id=$3 AND recipient_id=$2)) LIMIT 1`
	row, err := pickRow(ctx, r.pool, tx, forUpdate(q, tx)+";", tripID, a, b)
	if err != nil {
		return nil, err
	}
	return scanMatchRow(row)
}

func (r *matchRepo) CountOpenByExplorer(ctx context.Context, tx repository.Tx, explorerID string) (int, error) {
	const q = `SELECT COUNT(*) FROM matches WHERE requester_id=$1 AND status IN ('PENDING','ACCEPTED');`
	row, err := pickRow(ctx, r.pool, tx, q, explorerID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *matchRepo) ListByTripAndStatus(ctx context.Context, tx repository.Tx, tripID string, status model.MatchStatus) ([]*model.Match, error) {
	const q = `SELECT ` + matchColumns + ` FROM matches WHERE trip_id=$1 AND status=$2 ORDER BY created_at;`
	return r.list(ctx, tx, q, tripID, status)
}

func (r *matchRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.MatchStatus) error {
	const q = `UPDATE matches SET status=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *matchRepo) CascadeStatus(ctx context.Context, tx repository.Tx, tripID string, from, to model.MatchStatus) (int, error) {
	const q = `UPDATE matches SET status=$3, updated_at=NOW() WHERE trip_id=$1 AND status=$2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, tripID, from, to)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}

func (r *matchRepo) CountByParticipantAndStatus(ctx context.Context, tx repository.Tx, explorerID string, status model.MatchStatus) (int, error) {
	const q = `SELECT COUNT(*) FROM matches WHERE (requester_id=$1 OR recipient_id=$1) AND status=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, explorerID, status)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *matchRepo) ListByParticipant(ctx context.Context, tx repository.Tx, explorerID string) ([]*model.Match, error) {
	const q = `SELECT ` + matchColumns + ` FROM matches WHERE requester_id=$1 OR recipient_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, explorerID)
}

func (r *matchRepo) List(ctx context.Context, tx repository.Tx, q repository.MatchQuery) ([]*model.Match, int, error) {
	var where string
	var args []interface{}
	if q.Status != "" {
		where = " WHERE status=$1"
		args = append(args, q.Status)
	}

	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM matches`+where+";", args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	_, limit, offset := q.Normalize()
	args = append(args, limit, offset)
	listQ := fmt.Sprintf(`SELECT %s FROM matches%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		matchColumns, where, len(args)-1, len(args))
	out, err := r.list(ctx, tx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *matchRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Match, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Match
	for rows.Next() {
		m := &model.Match{}
		if err := rows.Scan(&m.ID, &m.RequesterID, &m.RecipientID, &m.TripID, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, nil
}

func scanMatchRow(row pgx.Row) (*model.Match, error) {
	m := &model.Match{}
	if err := row.Scan(&m.ID, &m.RequesterID, &m.RecipientID, &m.TripID, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}
