package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

type ScheduleResponse struct {
	ID         string          `json:"id"`
	CourtID    string          `json:"court_id"`
	DaysOfWeek []int           `json:"days_of_week"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	PriceSlot  decimal.Decimal `json:"price_slot"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func NewScheduleResponse(s *schedule.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:         s.ID,
		CourtID:    s.CourtID,
		DaysOfWeek: s.DaysOfWeek,
		StartTime:  s.StartTime.String(),
		EndTime:    s.EndTime.String(),
		PriceSlot:  s.PriceSlot,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// ScheduleBody is the full replacement body for both create and update.
type ScheduleBody struct {
	DaysOfWeek []int            `json:"days_of_week" binding:"required,min=1,max=7,dive,weekday"`
	StartTime  string           `json:"start_time" binding:"required,hhmm"`
	EndTime    string           `json:"end_time" binding:"required,hhmm"`
	PriceSlot  *decimal.Decimal `json:"price_slot" binding:"required"`
	Status     string           `json:"status" binding:"omitempty,oneof=Active Maintenance Inactive"`
}

// Params converts the body into domain parameters.
func (b *ScheduleBody) Params() (schedule.Params, error) {
	start, err := timeofday.Parse(b.StartTime)
	if err != nil {
		return schedule.Params{}, err
	}
	end, err := timeofday.Parse(b.EndTime)
	if err != nil {
		return schedule.Params{}, err
	}
	return schedule.Params{
		DaysOfWeek: b.DaysOfWeek,
		StartTime:  start,
		EndTime:    end,
		PriceSlot:  *b.PriceSlot,
		Status:     schedule.Status(b.Status),
	}, nil
}
