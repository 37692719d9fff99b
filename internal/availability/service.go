package availability

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/metrics"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

// OccupiedReader is the slice of booking.Repository the timetable needs.
type OccupiedReader interface {
	GetInRange(ctx context.Context, courtID string, from, to time.Time) ([]booking.Occupied, error)
}

type Service interface {
	Compute(ctx context.Context, courtID string, start, end time.Time) (*Timetable, error)
}

type service struct {
	courts    court.Repository
	schedules schedule.Repository
	promos    promotion.Repository
	bookings  OccupiedReader
	cache     Cache
	tracer    trace.Tracer
}

// NewService wires the availability service. cache may be nil.
func NewService(
	courts court.Repository,
	schedules schedule.Repository,
	promos promotion.Repository,
	bookings OccupiedReader,
	cache Cache,
) Service {
	return &service{
		courts:    courts,
		schedules: schedules,
		promos:    promos,
		bookings:  bookings,
		cache:     cache,
		tracer:    otel.Tracer("github.com/SCRMS-FPT/court-booking-service/internal/availability"),
	}
}

func (s *service) Compute(ctx context.Context, courtID string, start, end time.Time) (_ *Timetable, err error) {
	ctx, span := s.tracer.Start(ctx, "availability.Compute", trace.WithAttributes(
		attribute.String("court.id", courtID),
		attribute.String("availability.start", start.Format(request.DateLayout)),
		attribute.String("availability.end", end.Format(request.DateLayout)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return nil, err
	}
	start, end = dateOnly(start), dateOnly(end)
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	version := ""
	if s.cache != nil {
		cached, v, err := s.cache.Get(ctx, courtID, start, end)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("court_id", courtID).Msg("availability cache read failed")
		case cached != nil:
			metrics.RecordAvailabilityQuery("hit")
			span.SetAttributes(attribute.Bool("availability.cache_hit", true))
			return cached, nil
		default:
			version = v
		}
	}

	var (
		schedules []schedule.Schedule
		promos    []promotion.Promotion
		occupied  []booking.Occupied
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schedules, err = s.schedules.GetByCourt(gctx, courtID)
		return err
	})
	g.Go(func() error {
		var err error
		promos, err = s.promos.GetValidForCourt(gctx, courtID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		occupied, err = s.bookings.GetInRange(gctx, courtID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t, err := Calculate(c, schedules, promos, occupied, start, end)
	if err != nil {
		return nil, err
	}

	if s.cache == nil {
		metrics.RecordAvailabilityQuery("off")
		return t, nil
	}
	metrics.RecordAvailabilityQuery("miss")
	// A failed read leaves version empty; skip the write rather than guess.
	if version != "" {
		if err := s.cache.Set(ctx, version, t, start, end); err != nil {
			log.Warn().Err(err).Str("court_id", courtID).Msg("availability cache write failed")
		}
	}
	return t, nil
}
