package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
)

type Repository interface {
	// GetValidForCourt returns the court's promotions whose window intersects [from, to].
	GetValidForCourt(ctx context.Context, courtID string, from, to time.Time) ([]Promotion, error)
	GetByCourt(ctx context.Context, courtID string) ([]Promotion, error)
	GetByID(ctx context.Context, id string) (*Promotion, error)
	Create(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var promotionColumns = []string{
	"id", "court_id", "description", "discount_type", "discount_value::text",
	"valid_from", "valid_to", "created_at", "updated_at",
}

func scanPromotion(row pgx.Row) (Promotion, error) {
	var (
		p     Promotion
		value string
	)
	if err := row.Scan(&p.ID, &p.CourtID, &p.Description, &p.DiscountType, &value,
		&p.ValidFrom, &p.ValidTo, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Promotion{}, err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return Promotion{}, fmt.Errorf("parse discount_value: %w", err)
	}
	p.DiscountValue = v
	p.ValidFrom = dateOnly(p.ValidFrom)
	p.ValidTo = dateOnly(p.ValidTo)
	return p, nil
}

func (r *pgxRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]Promotion, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(promotionColumns...).
		From("public.court_promotions").
		Where(where).
		OrderBy("valid_from DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list promotions query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list promotions failed: %w", err)
	}
	defer rows.Close()

	var out []Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) GetValidForCourt(ctx context.Context, courtID string, from, to time.Time) ([]Promotion, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"court_id": courtID},
		squirrel.LtOrEq{"valid_from": dateOnly(to)},
		squirrel.GtOrEq{"valid_to": dateOnly(from)},
	})
}

func (r *pgxRepository) GetByCourt(ctx context.Context, courtID string) ([]Promotion, error) {
	return r.list(ctx, squirrel.Eq{"court_id": courtID})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Promotion, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(promotionColumns...).
		From("public.court_promotions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get promotion query failed: %w", err)
	}

	p, err := scanPromotion(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get promotion failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Promotion) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.court_promotions").
		Columns("court_id", "description", "discount_type", "discount_value", "valid_from", "valid_to").
		Values(p.CourtID, p.Description, p.DiscountType, p.DiscountValue.String(), p.ValidFrom, p.ValidTo).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create promotion query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return court.ErrNotFound
		}
		return fmt.Errorf("create promotion failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, p *Promotion) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.court_promotions").
		Set("description", p.Description).
		Set("discount_type", p.DiscountType).
		Set("discount_value", p.DiscountValue.String()).
		Set("valid_from", p.ValidFrom).
		Set("valid_to", p.ValidTo).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update promotion query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update promotion failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.court_promotions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete promotion query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete promotion failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
