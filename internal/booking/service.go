package booking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/metrics"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

// Routing keys of published booking events.
const (
	EventCreated       = "booking.created"
	EventStatusChanged = "booking.status_changed"
	EventDetailsAdded  = "booking.details_added"
)

type DetailRequest struct {
	CourtID   string
	StartTime timeofday.TimeOfDay
	EndTime   timeofday.TimeOfDay
}

type CreateRequest struct {
	UserID  string
	Date    time.Time
	Note    string
	Details []DetailRequest
}

// Actor is the caller of a booking command.
type Actor struct {
	UserID    string
	IsManager bool
}

func (a Actor) canAccess(b *Booking) bool {
	return a.IsManager || a.UserID == b.UserID
}

// Quote is the price a booking request would have if placed now.
type Quote struct {
	Date       time.Time
	Details    []Detail
	TotalPrice decimal.Decimal
	TotalTime  time.Duration
}

// Invalidator drops cached availability for a court.
type Invalidator interface {
	Invalidate(ctx context.Context, courtID string) error
}

// Publisher delivers domain events.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Event is the payload of every booking event.
type Event struct {
	BookingID        string          `json:"booking_id"`
	UserID           string          `json:"user_id"`
	BookingDate      string          `json:"booking_date"`
	Status           string          `json:"status"`
	PreviousStatus   string          `json:"previous_status,omitempty"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	TotalTimeMinutes int             `json:"total_time_minutes"`
	CourtIDs         []string        `json:"court_ids"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Quote(ctx context.Context, date time.Time, details []DetailRequest) (*Quote, error)
	GetByID(ctx context.Context, id string, actor Actor) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, id string, to Status, actor Actor) (*Booking, error)
	UpdateNote(ctx context.Context, id string, note string, actor Actor) (*Booking, error)
	AddDetails(ctx context.Context, id string, details []DetailRequest, actor Actor) (*Booking, error)
}

type service struct {
	repo      Repository
	courts    court.Repository
	schedules schedule.Repository
	promos    promotion.Repository
	cache     Invalidator
	events    Publisher
	tracer    trace.Tracer
	now       func() time.Time
}

// NewService wires the booking service. cache and events may be nil.
func NewService(
	repo Repository,
	courts court.Repository,
	schedules schedule.Repository,
	promos promotion.Repository,
	cache Invalidator,
	events Publisher,
) Service {
	return &service{
		repo:      repo,
		courts:    courts,
		schedules: schedules,
		promos:    promos,
		cache:     cache,
		events:    events,
		tracer:    otel.Tracer("github.com/SCRMS-FPT/court-booking-service/internal/booking"),
		now:       time.Now,
	}
}

// courtContext is everything pricing and validation need to know about one court.
type courtContext struct {
	court     *court.Court
	schedules []schedule.Schedule
	promos    []promotion.Promotion
}

func (s *service) Create(ctx context.Context, req CreateRequest) (_ *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Create")
	defer func() { finish(span, "create", err) }()

	if len(req.Details) == 0 {
		return nil, ErrEmptyDetails
	}
	date := dateOnly(req.Date)
	if err := s.checkNotPast(date); err != nil {
		return nil, err
	}

	proposals := toProposals(date, req.Details)
	courtIDs := distinctCourts(proposals)
	span.SetAttributes(
		attribute.String("booking.date", date.Format(request.DateLayout)),
		attribute.StringSlice("booking.court_ids", courtIDs),
	)

	contexts, err := s.loadCourts(ctx, courtIDs, date)
	if err != nil {
		return nil, err
	}

	var created Booking
	err = s.repo.WithCourtDays(ctx, dayKeys(proposals), func(tx TxRepository) error {
		occupied, err := occupiedOn(ctx, tx, courtIDs, date)
		if err != nil {
			return err
		}
		details, err := validateAndPrice(contexts, proposals, occupied, date)
		if err != nil {
			return err
		}

		b, err := New(req.UserID, date, req.Note, details)
		if err != nil {
			return err
		}
		if err := tx.Add(ctx, &b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", created.ID).
		Str("user_id", created.UserID).
		Str("date", date.Format(request.DateLayout)).
		Int("details", len(created.Details)).
		Msg("booking created")

	s.afterWrite(ctx, EventCreated, &created, "", created.CourtIDs())
	return &created, nil
}

func (s *service) Quote(ctx context.Context, date time.Time, details []DetailRequest) (_ *Quote, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.Quote")
	defer func() { finish(span, "quote", err) }()

	if len(details) == 0 {
		return nil, ErrEmptyDetails
	}
	date = dateOnly(date)
	if err := s.checkNotPast(date); err != nil {
		return nil, err
	}

	proposals := toProposals(date, details)
	courtIDs := distinctCourts(proposals)
	contexts, err := s.loadCourts(ctx, courtIDs, date)
	if err != nil {
		return nil, err
	}
	occupied, err := occupiedOn(ctx, s.repo, courtIDs, date)
	if err != nil {
		return nil, err
	}

	priced, err := validateAndPrice(contexts, proposals, occupied, date)
	if err != nil {
		return nil, err
	}

	q := &Quote{Date: date, Details: priced, TotalPrice: decimal.Zero}
	for _, d := range priced {
		q.TotalPrice = q.TotalPrice.Add(d.TotalPrice)
		q.TotalTime += d.Duration()
	}
	return q, nil
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateStatus(ctx context.Context, id string, to Status, actor Actor) (_ *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.UpdateStatus")
	defer func() { finish(span, "update_status", err) }()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) {
		return nil, ErrPermissionDenied
	}
	// Owners may only cancel; confirmation and completion come from managers.
	if !actor.IsManager && to != StatusCancelled {
		return nil, ErrPermissionDenied
	}

	updated, err := b.TransitionTo(to)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	metrics.RecordTransition(string(to))

	var touched []string
	if !to.Occupies() {
		touched = updated.CourtIDs()
	}
	s.afterWrite(ctx, EventStatusChanged, &updated, b.Status, touched)
	return &updated, nil
}

func (s *service) UpdateNote(ctx context.Context, id string, note string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) {
		return nil, ErrPermissionDenied
	}

	updated := b.WithNote(note)
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *service) AddDetails(ctx context.Context, id string, details []DetailRequest, actor Actor) (_ *Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.AddDetails")
	defer func() { finish(span, "add_details", err) }()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) {
		return nil, ErrPermissionDenied
	}
	if b.Status != StatusPending {
		return nil, ErrNotPending
	}
	if len(details) == 0 {
		return nil, ErrEmptyDetails
	}
	if err := s.checkNotPast(b.BookingDate); err != nil {
		return nil, err
	}

	proposals := toProposals(b.BookingDate, details)
	courtIDs := distinctCourts(proposals)
	contexts, err := s.loadCourts(ctx, courtIDs, b.BookingDate)
	if err != nil {
		return nil, err
	}

	var updated Booking
	err = s.repo.WithCourtDays(ctx, dayKeys(proposals), func(tx TxRepository) error {
		// The booking's own details are part of occupied, so overlaps with them conflict too.
		occupied, err := occupiedOn(ctx, tx, courtIDs, b.BookingDate)
		if err != nil {
			return err
		}
		priced, err := validateAndPrice(contexts, proposals, occupied, b.BookingDate)
		if err != nil {
			return err
		}

		u, err := b.WithDetails(priced)
		if err != nil {
			return err
		}
		if err := tx.AddDetails(ctx, &u, u.Details[len(b.Details):]); err != nil {
			return err
		}
		if err := tx.Update(ctx, &u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, EventDetailsAdded, &updated, "", courtIDs)
	return &updated, nil
}

func (s *service) checkNotPast(date time.Time) error {
	if date.Before(dateOnly(s.now().UTC())) {
		return ErrPastDate
	}
	return nil
}

// loadCourts reads court, schedules and promotions for every court concurrently.
// Courts that are not open for booking are rejected.
func (s *service) loadCourts(ctx context.Context, courtIDs []string, date time.Time) (map[string]courtContext, error) {
	loaded := make([]courtContext, len(courtIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range courtIDs {
		g.Go(func() error {
			c, err := s.courts.GetByID(gctx, id)
			if err != nil {
				return err
			}
			if !c.Bookable() {
				return ErrScheduleUnavailable
			}
			schedules, err := s.schedules.GetByCourt(gctx, id)
			if err != nil {
				return err
			}
			promos, err := s.promos.GetValidForCourt(gctx, id, date, date)
			if err != nil {
				return err
			}
			loaded[i] = courtContext{court: c, schedules: schedules, promos: promos}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]courtContext, len(courtIDs))
	for i, id := range courtIDs {
		out[id] = loaded[i]
	}
	return out, nil
}

type occupiedReader interface {
	GetInRange(ctx context.Context, courtID string, from, to time.Time) ([]Occupied, error)
}

func occupiedOn(ctx context.Context, r occupiedReader, courtIDs []string, date time.Time) ([]Occupied, error) {
	var out []Occupied
	for _, id := range courtIDs {
		occ, err := r.GetInRange(ctx, id, date, date)
		if err != nil {
			return nil, err
		}
		out = append(out, occ...)
	}
	return out, nil
}

// validateAndPrice runs the conflict validator over the whole request, then prices each proposal.
func validateAndPrice(contexts map[string]courtContext, proposals []Proposal, occupied []Occupied, date time.Time) ([]Detail, error) {
	schedules := make(map[string][]schedule.Schedule, len(contexts))
	for id, cc := range contexts {
		schedules[id] = cc.schedules
	}
	if err := ValidateProposals(proposals, occupied, schedules); err != nil {
		return nil, err
	}

	details := make([]Detail, 0, len(proposals))
	for _, p := range proposals {
		cc := contexts[p.CourtID]
		price, err := PriceDetail(cc.court, cc.schedules, cc.promos, date, p.Range())
		if err != nil {
			return nil, err
		}
		details = append(details, Detail{
			CourtID:    p.CourtID,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
			TotalPrice: price,
		})
	}
	return details, nil
}

func toProposals(date time.Time, details []DetailRequest) []Proposal {
	out := make([]Proposal, len(details))
	for i, d := range details {
		out[i] = Proposal{CourtID: d.CourtID, Date: date, StartTime: d.StartTime, EndTime: d.EndTime}
	}
	return out
}

func distinctCourts(proposals []Proposal) []string {
	seen := make(map[string]bool, len(proposals))
	var out []string
	for _, p := range proposals {
		if !seen[p.CourtID] {
			seen[p.CourtID] = true
			out = append(out, p.CourtID)
		}
	}
	return out
}

func dayKeys(proposals []Proposal) []DayKey {
	keys := make([]DayKey, len(proposals))
	for i, p := range proposals {
		keys[i] = DayKey{CourtID: p.CourtID, Date: p.Date}
	}
	return keys
}

// afterWrite runs the post-commit side effects. Failures are logged, never returned.
func (s *service) afterWrite(ctx context.Context, key string, b *Booking, prev Status, courtIDs []string) {
	if s.cache != nil {
		for _, id := range courtIDs {
			if err := s.cache.Invalidate(ctx, id); err != nil {
				log.Warn().Err(err).Str("court_id", id).Msg("failed to invalidate availability cache")
			}
		}
	}

	if s.events == nil {
		return
	}
	ev := Event{
		BookingID:        b.ID,
		UserID:           b.UserID,
		BookingDate:      b.BookingDate.Format(request.DateLayout),
		Status:           string(b.Status),
		PreviousStatus:   string(prev),
		TotalPrice:       b.TotalPrice,
		TotalTimeMinutes: minutes(b.TotalTime),
		CourtIDs:         b.CourtIDs(),
		OccurredAt:       s.now().UTC(),
	}
	if err := s.events.PublishJSON(ctx, key, ev); err != nil {
		log.Error().Err(err).Str("booking_id", b.ID).Str("event", key).Msg("failed to publish booking event")
	}
}

func finish(span trace.Span, operation string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	metrics.RecordBookingCommand(operation, outcome(err))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return "error"
}
