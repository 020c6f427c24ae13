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

var _ repository.TripRepository = (*tripRepo)(nil)

type tripRepo struct{ pool *pgxpool.Pool }

func NewTripRepo(pool *pgxpool.Pool) *tripRepo {
	return &tripRepo{pool: pool}
}

const tripColumns = `id, creator_id, title, destination, departure_location, start_date, end_date, description, budget, image, journey_type, duration, languages, status, match_completed, created_at, updated_at`

func (r *tripRepo) Save(ctx context.Context, tx repository.Tx, t *model.Trip) error {
	const q = `
INSERT INTO trips (
  id, creator_id, title, destination, departure_location, start_date, end_date,
  description, budget, image, journey_type, duration, languages, status, match_completed, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
) ON CONFLICT (id) DO UPDATE SET
  title=$3, destination=$4, departure_location=$5, start_date=$6, end_date=$7,
  description=$8, budget=$9, image=$10, journey_type=$11, duration=$12, languages=$13,
  status=$14, match_completed=$15, updated_at=$17;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.CreatorID, t.Title, t.Destination, t.DepartureLocation, t.StartDate, t.EndDate,
		t.Description, t.Budget, t.Image, t.JourneyType, t.Duration, t.Languages, t.Status, t.MatchCompleted, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tripRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id=$1`
	row, err := pickRow(ctx, r.pool, tx, forUpdate(q, tx)+";", id)
	if err != nil {
		return nil, err
	}
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *tripRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM trips WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tripRepo) SetMatchCompleted(ctx context.Context, tx repository.Tx, id string, locked bool) error {
	const q = `UPDATE trips SET match_completed=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, locked)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tripRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.TripStatus, matchCompleted bool) error {
	const q = `UPDATE trips SET status=$2, match_completed=$3, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, matchCompleted)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tripRepo) List(ctx context.Context, tx repository.Tx, q repository.TripQuery) ([]*model.Trip, int, error) {
	where, args := tripFilters(q, nil)
	return r.page(ctx, tx, where, args, q.Page)
}

func (r *tripRepo) ListByCreator(ctx context.Context, tx repository.Tx, creatorID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	where, args := tripFilters(q, []interface{}{creatorID})
	where = append([]string{"creator_id=$1"}, where...)
	return r.page(ctx, tx, where, args, q.Page)
}

func (r *tripRepo) ListAvailable(ctx context.Context, tx repository.Tx, explorerID string, q repository.TripQuery) ([]*model.Trip, int, error) {
	where, args := tripFilters(q, []interface{}{explorerID})
	where = append([]string{
		"creator_id <> $1",
		"match_completed = FALSE",
		"status = 'PLANNED'",
		"NOT EXISTS (SELECT 1 FROM matches m WHERE m.trip_id = trips.id AND (m.requester_id=$1 OR m.recipient_id=$1))",
	}, where...)
	return r.page(ctx, tx, where, args, q.Page)
}

func (r *tripRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.TripStatus) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM trips WHERE status=$1;`, status)
}

func (r *tripRepo) CountByCreatorAndStatus(ctx context.Context, tx repository.Tx, creatorID string, status model.TripStatus) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM trips WHERE creator_id=$1 AND status=$2;`, creatorID, status)
}

func (r *tripRepo) count(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

// tripFilters translates the typed listing spec into WHERE fragments; args
// grows in step so placeholders stay aligned.
func tripFilters(q repository.TripQuery, args []interface{}) ([]string, []interface{}) {
	var where []string
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR destination ILIKE $%d)", n, n))
	}
	if q.Destination != "" {
		args = append(args, q.Destination)
		where = append(where, fmt.Sprintf("destination=$%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	return where, args
}

func (r *tripRepo) page(ctx context.Context, tx repository.Tx, where []string, args []interface{}, p repository.Page) ([]*model.Trip, int, error) {
	clause := ""
	for i, w := range where {
		if i == 0 {
			clause = " WHERE " + w
		} else {
			clause += " AND " + w
		}
	}

	countQ := `SELECT COUNT(*) FROM trips` + clause + ";"
	row, err := pickRow(ctx, r.pool, tx, countQ, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	_, limit, offset := p.Normalize()
	args = append(args, limit, offset)
	listQ := fmt.Sprintf(`SELECT %s FROM trips%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		tripColumns, clause, len(args)-1, len(args))
	rows, err := queryRows(ctx, r.pool, tx, listQ, args...)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, 0, err
		}
		return nil, 0, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, total, nil
}

func scanTrip(row pgx.Row) (*model.Trip, error) {
	t := &model.Trip{}
	if err := row.Scan(
		&t.ID, &t.CreatorID, &t.Title, &t.Destination, &t.DepartureLocation, &t.StartDate, &t.EndDate,
		&t.Description, &t.Budget, &t.Image, &t.JourneyType, &t.Duration, &t.Languages,
		&t.Status, &t.MatchCompleted, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return t, nil
}
