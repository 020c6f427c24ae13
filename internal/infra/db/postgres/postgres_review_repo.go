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

var _ repository.ReviewRepository = (*reviewRepo)(nil)

type reviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepo(pool *pgxpool.Pool) *reviewRepo {
	return &reviewRepo{pool: pool}
}

const reviewColumns = `id, match_id, reviewer_id, rating, comment, status, created_at, updated_at`

func (r *reviewRepo) Save(ctx context.Context, tx repository.Tx, rv *model.Review) error {
	const q = `
INSERT INTO reviews (id, match_id, reviewer_id, rating, comment, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q, rv.ID, rv.MatchID, rv.ReviewerID, rv.Rating, rv.Comment, rv.Status, rv.CreatedAt, rv.UpdatedAt)
	if err != nil {
		// unique (match_id, reviewer_id)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReviewed
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reviewRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id=$1`
	return r.findOne(ctx, tx, forUpdate(q, tx)+";", id)
}

func (r *reviewRepo) FindByMatchAndReviewer(ctx context.Context, tx repository.Tx, matchID, reviewerID string) (*model.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE match_id=$1 AND reviewer_id=$2`
	return r.findOne(ctx, tx, forUpdate(q, tx)+";", matchID, reviewerID)
}

func (r *reviewRepo) findOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Review, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	rv := &model.Review{}
	if err := row.Scan(&rv.ID, &rv.MatchID, &rv.ReviewerID, &rv.Rating, &rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return rv, nil
}

func (r *reviewRepo) Update(ctx context.Context, tx repository.Tx, rv *model.Review) error {
	const q = `UPDATE reviews SET rating=$2, comment=$3, status=$4, updated_at=$5 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, rv.ID, rv.Rating, rv.Comment, rv.Status, rv.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reviewRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM reviews WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *reviewRepo) ListByReviewer(ctx context.Context, tx repository.Tx, reviewerID string, q repository.ReviewQuery) ([]*model.Review, int, error) {
	where := []string{"reviewer_id=$1"}
	args := []interface{}{reviewerID}
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	return r.page(ctx, tx, where, args, q.Page)
}

func (r *reviewRepo) List(ctx context.Context, tx repository.Tx, q repository.ReviewQuery) ([]*model.Review, int, error) {
	var where []string
	var args []interface{}
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	return r.page(ctx, tx, where, args, q.Page)
}

func (r *reviewRepo) AverageRatingByReviewer(ctx context.Context, tx repository.Tx, reviewerID string) (float64, error) {
	const q = `SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE reviewer_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, reviewerID)
	if err != nil {
		return 0, err
	}
	var avg float64
	if err := row.Scan(&avg); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return avg, nil
}

func (r *reviewRepo) CountByRating(ctx context.Context, tx repository.Tx) (map[int]int, error) {
	const q = `SELECT rating, COUNT(*) FROM reviews GROUP BY rating;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	dist := map[int]int{}
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		dist[rating] = n
	}
	return dist, nil
}

func (r *reviewRepo) page(ctx context.Context, tx repository.Tx, where []string, args []interface{}, p repository.Page) ([]*model.Review, int, error) {
	clause := ""
	for i, w := range where {
		if i == 0 {
			clause = " WHERE " + w
		} else {
			clause += " AND " + w
		}
	}

	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM reviews`+clause+";", args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	_, limit, offset := p.Normalize()
	args = append(args, limit, offset)
	listQ := fmt.Sprintf(`SELECT %s FROM reviews%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		reviewColumns, clause, len(args)-1, len(args))
	rows, err := queryRows(ctx, r.pool, tx, listQ, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, 0, err
		}
		return nil, 0, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Review
	for rows.Next() {
		rv := &model.Review{}
		if err := rows.Scan(&rv.ID, &rv.MatchID, &rv.ReviewerID, &rv.Rating, &rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		out = append(out, rv)
	}
	return out, total, nil
}
