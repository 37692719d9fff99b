package schedule

import (
	"net/http"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, apperror.KindNotFound, "schedule not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, apperror.KindValidation, "start time must be before end time")
	ErrInvalidDays      = apperror.New(http.StatusBadRequest, apperror.KindValidation, "days of week must be a non-empty set of codes 1 (Monday) to 7 (Sunday)")
	ErrNegativePrice    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "slot price must not be negative")
	ErrInvalidStatus    = apperror.New(http.StatusBadRequest, apperror.KindValidation, "invalid schedule status")
	ErrOverlap          = apperror.New(http.StatusConflict, apperror.KindConflict, "schedule overlaps another schedule of the court on a shared weekday")
)

type Status string

const (
	StatusActive      Status = "Active"
	StatusMaintenance Status = "Maintenance"
	StatusInactive    Status = "Inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// WeekdayOf returns the weekday code of d: 1 for Monday through 7 for Sunday.
func WeekdayOf(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Schedule is a weekly recurring block of bookable time on one court.
// Values are immutable; Update returns a modified copy.
type Schedule struct {
	ID         string
	CourtID    string
	DaysOfWeek []int
	StartTime  timeofday.TimeOfDay
	EndTime    timeofday.TimeOfDay
	PriceSlot  decimal.Decimal
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Params are the mutable attributes of a schedule. They are always replaced together.
type Params struct {
	DaysOfWeek []int
	StartTime  timeofday.TimeOfDay
	EndTime    timeofday.TimeOfDay
	PriceSlot  decimal.Decimal
	Status     Status
}

// New validates p and builds an unsaved schedule for courtID.
func New(courtID string, p Params) (Schedule, error) {
	s := Schedule{CourtID: courtID}
	return s.apply(p)
}

// Update returns a copy of s with every attribute in p applied.
func (s Schedule) Update(p Params) (Schedule, error) {
	return s.apply(p)
}

func (s Schedule) apply(p Params) (Schedule, error) {
	days, err := normalizeDays(p.DaysOfWeek)
	if err != nil {
		return Schedule{}, err
	}
	if !timeofday.NewRange(p.StartTime, p.EndTime).Valid() {
		return Schedule{}, ErrInvalidTimeRange
	}
	if p.PriceSlot.IsNegative() {
		return Schedule{}, ErrNegativePrice
	}
	status := p.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return Schedule{}, ErrInvalidStatus
	}

	s.DaysOfWeek = days
	s.StartTime = p.StartTime
	s.EndTime = p.EndTime
	s.PriceSlot = p.PriceSlot
	s.Status = status
	return s, nil
}

func normalizeDays(in []int) ([]int, error) {
	if len(in) == 0 {
		return nil, ErrInvalidDays
	}
	out := make([]int, 0, len(in))
	for _, d := range in {
		if d < 1 || d > 7 {
			return nil, ErrInvalidDays
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s Schedule) Range() timeofday.Range {
	return timeofday.NewRange(s.StartTime, s.EndTime)
}

func (s Schedule) RunsOn(weekday int) bool {
	return slices.Contains(s.DaysOfWeek, weekday)
}

// Slots slices the block into consecutive slots of length step.
func (s Schedule) Slots(step time.Duration) []timeofday.Range {
	return s.Range().Split(step)
}

// Conflicts reports whether s and o would both be expanded on some weekday
// with overlapping hours. Inactive schedules never conflict.
func (s Schedule) Conflicts(o Schedule) bool {
	if s.Status == StatusInactive || o.Status == StatusInactive {
		return false
	}
	if !s.Range().Overlaps(o.Range()) {
		return false
	}
	for _, d := range s.DaysOfWeek {
		if o.RunsOn(d) {
			return true
		}
	}
	return false
}

// ForWeekday returns the non-inactive schedules running on weekday, ordered by
// start time then ID.
func ForWeekday(schedules []Schedule, weekday int) []Schedule {
	var out []Schedule
	for _, s := range schedules {
		if s.Status != StatusInactive && s.RunsOn(weekday) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}
