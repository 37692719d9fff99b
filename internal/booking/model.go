package booking

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, apperror.KindNotFound, "booking not found")
	ErrConflict            = apperror.New(http.StatusConflict, apperror.KindConflict, "time slot already booked")
	ErrScheduleUnavailable = apperror.New(http.StatusUnprocessableEntity, apperror.KindScheduleUnavailable, "requested time is outside the court's active schedule")
	ErrInvalidDuration     = apperror.New(http.StatusBadRequest, apperror.KindInvalidDuration, "duration must be a positive multiple of the court's slot duration")
	ErrMisalignedSlot      = apperror.New(http.StatusBadRequest, apperror.KindInvalidDuration, "requested time does not start on a slot boundary")
	ErrInvalidTimeRange    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start time must be before end time")
	ErrEmptyDetails        = apperror.New(http.StatusBadRequest, apperror.KindValidation, "a booking needs at least one detail")
	ErrPastDate            = apperror.New(http.StatusBadRequest, apperror.KindValidation, "cannot create booking in the past")
	ErrInvalidTransition   = apperror.New(http.StatusConflict, apperror.KindConflict, "booking status transition not allowed")
	ErrNotPending          = apperror.New(http.StatusConflict, apperror.KindConflict, "details can only be added to a pending booking")
	ErrPermissionDenied    = apperror.New(http.StatusForbidden, apperror.KindForbidden, "permission denied")
	ErrRetryable           = apperror.New(http.StatusServiceUnavailable, apperror.KindRetryable, "booking could not be saved because of concurrent changes, retry the request")
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Occupies reports whether a booking in this status holds its slots.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

// Detail is one court and time range within a booking. It shares the booking's date.
type Detail struct {
	ID         string
	BookingID  string
	CourtID    string
	StartTime  timeofday.TimeOfDay
	EndTime    timeofday.TimeOfDay
	TotalPrice decimal.Decimal
}

func (d Detail) Range() timeofday.Range {
	return timeofday.NewRange(d.StartTime, d.EndTime)
}

func (d Detail) Duration() time.Duration {
	return d.Range().Duration()
}

// Booking is a reservation of one or more court ranges on a single date.
// Values are immutable; every mutation returns a modified copy.
type Booking struct {
	ID          string
	UserID      string
	BookingDate time.Time
	Status      Status
	Note        string
	TotalPrice  decimal.Decimal
	TotalTime   time.Duration
	Details     []Detail
	// Version increases with every persisted change.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds a pending booking. Detail prices must already be computed.
func New(userID string, date time.Time, note string, details []Detail) (Booking, error) {
	if len(details) == 0 {
		return Booking{}, ErrEmptyDetails
	}
	b := Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		BookingDate: dateOnly(date),
		Status:      StatusPending,
		Note:        note,
	}
	return b.withAddedDetails(details)
}

// TransitionTo returns a copy of b in status next.
func (b Booking) TransitionTo(next Status) (Booking, error) {
	if !b.Status.CanTransitionTo(next) {
		return Booking{}, ErrInvalidTransition
	}
	b.Details = cloneDetails(b.Details)
	b.Status = next
	return b, nil
}

// WithNote returns a copy of b carrying note.
func (b Booking) WithNote(note string) Booking {
	b.Details = cloneDetails(b.Details)
	b.Note = note
	return b
}

// WithDetails returns a copy of b with extra details appended. Only pending bookings accept new details.
func (b Booking) WithDetails(extra []Detail) (Booking, error) {
	if b.Status != StatusPending {
		return Booking{}, ErrNotPending
	}
	if len(extra) == 0 {
		return Booking{}, ErrEmptyDetails
	}
	return b.withAddedDetails(extra)
}

func (b Booking) withAddedDetails(extra []Detail) (Booking, error) {
	all := cloneDetails(b.Details)
	for _, d := range extra {
		if !d.Range().Valid() {
			return Booking{}, ErrInvalidTimeRange
		}
		for _, other := range all {
			if other.CourtID == d.CourtID && other.Range().Overlaps(d.Range()) {
				return Booking{}, ErrConflict
			}
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		d.BookingID = b.ID
		all = append(all, d)
	}

	b.Details = all
	b.TotalPrice = decimal.Zero
	b.TotalTime = 0
	for _, d := range all {
		b.TotalPrice = b.TotalPrice.Add(d.TotalPrice)
		b.TotalTime += d.Duration()
	}
	return b, nil
}

// CourtIDs lists the distinct courts the booking touches, in detail order.
func (b Booking) CourtIDs() []string {
	seen := make(map[string]bool, len(b.Details))
	var out []string
	for _, d := range b.Details {
		if !seen[d.CourtID] {
			seen[d.CourtID] = true
			out = append(out, d.CourtID)
		}
	}
	return out
}

func cloneDetails(in []Detail) []Detail {
	if in == nil {
		return nil
	}
	out := make([]Detail, len(in))
	copy(out, in)
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}

// Occupied is a non-cancelled detail as seen by conflict checks and the availability grid.
type Occupied struct {
	BookingID string
	UserID    string
	CourtID   string
	Date      time.Time
	StartTime timeofday.TimeOfDay
	EndTime   timeofday.TimeOfDay
}

func (o Occupied) Range() timeofday.Range {
	return timeofday.NewRange(o.StartTime, o.EndTime)
}

// Proposal is a requested detail before it is validated and priced.
type Proposal struct {
	CourtID   string
	Date      time.Time
	StartTime timeofday.TimeOfDay
	EndTime   timeofday.TimeOfDay
}

func (p Proposal) Range() timeofday.Range {
	return timeofday.NewRange(p.StartTime, p.EndTime)
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID    string
	CourtID   string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
