package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
)

// DayKey identifies the unit of booking serialization: one court on one date.
type DayKey struct {
	CourtID string
	Date    time.Time
}

func (k DayKey) String() string {
	return k.CourtID + "|" + k.Date.Format("2006-01-02")
}

// SortKeys returns the distinct keys in lock order.
func SortKeys(keys []DayKey) []DayKey {
	seen := make(map[string]bool, len(keys))
	out := make([]DayKey, 0, len(keys))
	for _, k := range keys {
		k.Date = dateOnly(k.Date)
		if !seen[k.String()] {
			seen[k.String()] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// TxRepository is the view of the store available inside WithCourtDays.
type TxRepository interface {
	GetInRange(ctx context.Context, courtID string, from, to time.Time) ([]Occupied, error)
	Add(ctx context.Context, b *Booking) error
	AddDetails(ctx context.Context, b *Booking, details []Detail) error
	Update(ctx context.Context, b *Booking) error
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// GetInRange returns the non-cancelled details of a court dated within [from, to].
	GetInRange(ctx context.Context, courtID string, from, to time.Time) ([]Occupied, error)

	// Update persists status, note and totals. It fails with ErrRetryable when the
	// booking changed since b was read.
	Update(ctx context.Context, b *Booking) error

	// WithCourtDays runs fn in one transaction holding an exclusive lock on every key.
	// Nothing fn wrote survives if it returns an error.
	WithCourtDays(ctx context.Context, keys []DayKey, fn func(tx TxRepository) error) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

type txRepository struct {
	q querier
}

func (r *pgxRepository) WithCourtDays(ctx context.Context, keys []DayKey, fn func(tx TxRepository) error) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		for _, k := range SortKeys(keys) {
			if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", k.String()); err != nil {
				return fmt.Errorf("lock %s: %w", k, err)
			}
		}
		return fn(&txRepository{q: tx})
	})
	return mapWriteError(err)
}

func (r *pgxRepository) GetInRange(ctx context.Context, courtID string, from, to time.Time) ([]Occupied, error) {
	return getInRange(ctx, r.pool, courtID, from, to)
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return updateBooking(ctx, tx, b)
	})
	return mapWriteError(err)
}

func (t *txRepository) GetInRange(ctx context.Context, courtID string, from, to time.Time) ([]Occupied, error) {
	return getInRange(ctx, t.q, courtID, from, to)
}

func (t *txRepository) Add(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("id", "user_id", "booking_date", "status", "note", "total_price", "total_time_minutes", "version").
		Values(b.ID, b.UserID, b.BookingDate, b.Status, b.Note, b.TotalPrice.String(), minutes(b.TotalTime), 1).
		Suffix("RETURNING version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := t.q.QueryRow(ctx, query, args...).Scan(&b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapWriteError(fmt.Errorf("create booking failed: %w", err))
	}
	return insertDetails(ctx, t.q, b.BookingDate, b.Details)
}

func (t *txRepository) AddDetails(ctx context.Context, b *Booking, details []Detail) error {
	return insertDetails(ctx, t.q, b.BookingDate, details)
}

func (t *txRepository) Update(ctx context.Context, b *Booking) error {
	return updateBooking(ctx, t.q, b)
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}

func insertDetails(ctx context.Context, q querier, date time.Time, details []Detail) error {
	if len(details) == 0 {
		return nil
	}
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	insert := psql.Insert("public.booking_details").
		Columns("id", "booking_id", "court_id", "booking_date", "start_time", "end_time", "total_price")
	for _, d := range details {
		insert = insert.Values(d.ID, d.BookingID, d.CourtID, date, d.StartTime.PgTime(), d.EndTime.PgTime(), d.TotalPrice.String())
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert details query failed: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return mapWriteError(fmt.Errorf("insert booking details failed: %w", err))
	}
	return nil
}

func updateBooking(ctx context.Context, q querier, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("note", b.Note).
		Set("total_price", b.TotalPrice.String()).
		Set("total_time_minutes", minutes(b.TotalTime)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "version": b.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&b.Version, &b.UpdatedAt); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update booking failed: %w", err)
		}
		var exists bool
		if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM public.bookings WHERE id = $1)", b.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check booking exists failed: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrRetryable
	}

	// Cancelled details stop occupying their slots, which releases the exclusion constraint.
	if _, err := q.Exec(ctx,
		"UPDATE public.booking_details SET active = $1 WHERE booking_id = $2",
		b.Status.Occupies(), b.ID,
	); err != nil {
		return fmt.Errorf("update booking details failed: %w", err)
	}
	return nil
}

func getInRange(ctx context.Context, q querier, courtID string, from, to time.Time) ([]Occupied, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"d.booking_id", "b.user_id", "d.court_id", "d.booking_date", "d.start_time", "d.end_time",
	).
		From("public.booking_details d").
		Join("public.bookings b ON b.id = d.booking_id").
		Where(squirrel.Eq{"d.court_id": courtID, "d.active": true}).
		Where(squirrel.GtOrEq{"d.booking_date": dateOnly(from)}).
		Where(squirrel.LtOrEq{"d.booking_date": dateOnly(to)}).
		OrderBy("d.booking_date", "d.start_time", "d.booking_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build occupied query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list occupied failed: %w", err)
	}
	defer rows.Close()

	var out []Occupied
	for rows.Next() {
		var (
			o          Occupied
			start, end pgtype.Time
		)
		if err := rows.Scan(&o.BookingID, &o.UserID, &o.CourtID, &o.Date, &start, &end); err != nil {
			return nil, fmt.Errorf("scan occupied failed: %w", err)
		}
		if o.StartTime, err = timeofday.FromPgTime(start); err != nil {
			return nil, err
		}
		if o.EndTime, err = timeofday.FromPgTime(end); err != nil {
			return nil, err
		}
		o.Date = dateOnly(o.Date)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occupied failed: %w", err)
	}
	return out, nil
}

var bookingColumns = []string{
	"b.id", "b.user_id", "b.booking_date", "b.status", "b.note",
	"b.total_price::text", "b.total_time_minutes", "b.version", "b.created_at", "b.updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b            Booking
		price        string
		totalMinutes int
	)
	dest := append([]any{
		&b.ID, &b.UserID, &b.BookingDate, &b.Status, &b.Note,
		&price, &totalMinutes, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse total_price: %w", err)
	}
	b.TotalPrice = p
	b.TotalTime = time.Duration(totalMinutes) * time.Minute
	b.BookingDate = dateOnly(b.BookingDate)
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}

	details, err := r.detailsFor(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Details = details[b.ID]
	return b, nil
}

var sortableColumns = map[string]string{
	"booking_date": "b.booking_date",
	"created_at":   "b.created_at",
	"status":       "b.status",
	"total_price":  "b.total_price",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings b")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.CourtID != "" {
		query = query.Where("EXISTS (SELECT 1 FROM public.booking_details d WHERE d.booking_id = b.id AND d.court_id = ?)", filter.CourtID)
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.booking_date": dateOnly(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.booking_date": dateOnly(*filter.DateTo)})
	}

	orderBy, ok := sortableColumns[filter.SortBy]
	if !ok {
		orderBy = "b.booking_date"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "b.id")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		bookings []*Booking
		ids      []string
		total    int
	)
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return bookings, total, nil
	}
	details, err := r.detailsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, b := range bookings {
		b.Details = details[b.ID]
	}
	return bookings, total, nil
}

func (r *pgxRepository) detailsFor(ctx context.Context, bookingIDs []string) (map[string][]Detail, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "booking_id", "court_id", "start_time", "end_time", "total_price::text").
		From("public.booking_details").
		Where(squirrel.Eq{"booking_id": bookingIDs}).
		OrderBy("booking_id", "start_time", "court_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list details query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list booking details failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Detail, len(bookingIDs))
	for rows.Next() {
		var (
			d          Detail
			start, end pgtype.Time
			price      string
		)
		if err := rows.Scan(&d.ID, &d.BookingID, &d.CourtID, &start, &end, &price); err != nil {
			return nil, fmt.Errorf("scan booking detail failed: %w", err)
		}
		if d.StartTime, err = timeofday.FromPgTime(start); err != nil {
			return nil, err
		}
		if d.EndTime, err = timeofday.FromPgTime(end); err != nil {
			return nil, err
		}
		if d.TotalPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse detail price: %w", err)
		}
		out[d.BookingID] = append(out[d.BookingID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking details failed: %w", err)
	}
	return out, nil
}

// mapWriteError turns constraint and concurrency failures into domain errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return apperror.Wrap(ErrConflict, err)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return apperror.Wrap(ErrRetryable, err)
	case pgerrcode.ForeignKeyViolation:
		return apperror.Wrap(court.ErrNotFound, err)
	}
	return err
}
