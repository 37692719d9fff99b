package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
)

type Repository interface {
	GetByCourt(ctx context.Context, courtID string) ([]Schedule, error)
	GetByID(ctx context.Context, id string) (*Schedule, error)
	Create(ctx context.Context, s *Schedule) error
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id string) error

	// WithCourtLock runs fn in one transaction holding an exclusive lock on the
	// schedules of courtID, so a sibling check and the write that follows it
	// cannot interleave with another writer on the same court.
	WithCourtLock(ctx context.Context, courtID string, fn func(tx Repository) error) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, q: pool}
}

func (r *pgxRepository) WithCourtLock(ctx context.Context, courtID string, fn func(tx Repository) error) error {
	// Already inside a transaction.
	if r.pool == nil {
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", "schedules|"+courtID); err != nil {
			return fmt.Errorf("lock schedules of %s: %w", courtID, err)
		}
		return fn(&pgxRepository{q: tx})
	})
}

// price_slot is read as text so it round-trips through decimal.Decimal exactly.
var scheduleColumns = []string{
	"id", "court_id", "days_of_week", "start_time", "end_time",
	"price_slot::text", "status", "created_at", "updated_at",
}

func scanSchedule(row pgx.Row) (Schedule, error) {
	var (
		s          Schedule
		days       []int32
		start, end pgtype.Time
		price      string
	)
	if err := row.Scan(&s.ID, &s.CourtID, &days, &start, &end, &price, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Schedule{}, err
	}

	var err error
	if s.StartTime, err = timeofday.FromPgTime(start); err != nil {
		return Schedule{}, err
	}
	if s.EndTime, err = timeofday.FromPgTime(end); err != nil {
		return Schedule{}, err
	}
	if s.PriceSlot, err = decimal.NewFromString(price); err != nil {
		return Schedule{}, fmt.Errorf("parse price_slot: %w", err)
	}
	s.DaysOfWeek = make([]int, len(days))
	for i, d := range days {
		s.DaysOfWeek[i] = int(d)
	}
	return s, nil
}

func toInt32s(days []int) []int32 {
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}

func (r *pgxRepository) GetByCourt(ctx context.Context, courtID string) ([]Schedule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(scheduleColumns...).
		From("public.court_schedules").
		Where(squirrel.Eq{"court_id": courtID}).
		OrderBy("start_time", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list schedules query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules failed: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule failed: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Schedule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(scheduleColumns...).
		From("public.court_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get schedule query failed: %w", err)
	}

	s, err := scanSchedule(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) Create(ctx context.Context, s *Schedule) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.court_schedules").
		Columns("court_id", "days_of_week", "start_time", "end_time", "price_slot", "status").
		Values(s.CourtID, toInt32s(s.DaysOfWeek), s.StartTime.PgTime(), s.EndTime.PgTime(), s.PriceSlot.String(), s.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create schedule query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return mapWriteError(err, "create schedule failed")
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, s *Schedule) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.court_schedules").
		Set("days_of_week", toInt32s(s.DaysOfWeek)).
		Set("start_time", s.StartTime.PgTime()).
		Set("end_time", s.EndTime.PgTime()).
		Set("price_slot", s.PriceSlot.String()).
		Set("status", s.Status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update schedule query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return mapWriteError(err, "update schedule failed")
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.court_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete schedule query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete schedule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return court.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
