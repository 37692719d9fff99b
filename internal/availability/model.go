package availability

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
)

// MaxRangeDays bounds end_date - start_date of a single query.
const MaxRangeDays = 31

var ErrInvalidRange = apperror.New(http.StatusBadRequest, apperror.KindInvalidRange,
	"end_date must not be before start_date and the range may span at most 31 days")

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "AVAILABLE"
	SlotBooked      SlotStatus = "BOOKED"
	SlotMaintenance SlotStatus = "MAINTENANCE"
)

// Slot is one bookable increment of a schedule block on a concrete date.
type Slot struct {
	StartTime timeofday.TimeOfDay   `json:"start_time"`
	EndTime   timeofday.TimeOfDay   `json:"end_time"`
	Status    SlotStatus            `json:"status"`
	Price     decimal.Decimal       `json:"price"`
	Promotion *promotion.Descriptor `json:"promotion,omitempty"`
	BookedBy  string                `json:"booked_by,omitempty"`
}

type Day struct {
	Date      time.Time `json:"date"`
	DayOfWeek int       `json:"day_of_week"`
	TimeSlots []Slot    `json:"time_slots"`
}

// Timetable is the computed availability of one court over a date range.
type Timetable struct {
	CourtID string `json:"court_id"`
	Days    []Day  `json:"days"`
}

// ValidateRange checks start <= end and the span limit. Both are calendar dates.
func ValidateRange(start, end time.Time) error {
	if end.Before(start) || end.Sub(start) > MaxRangeDays*24*time.Hour {
		return ErrInvalidRange
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
