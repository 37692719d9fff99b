package http

import (
	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/availability"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	promHttp "github.com/SCRMS-FPT/court-booking-service/internal/promotion/http"
)

type AvailabilityRequest struct {
	StartDate string `form:"start_date" binding:"required,isodate"`
	EndDate   string `form:"end_date" binding:"required,isodate"`
}

type SlotResponse struct {
	StartTime string                 `json:"start_time"`
	EndTime   string                 `json:"end_time"`
	Status    string                 `json:"status"`
	Price     decimal.Decimal        `json:"price"`
	Promotion *promHttp.PromotionTag `json:"promotion"`
	BookedBy  *string                `json:"booked_by"`
}

type DayResponse struct {
	Date      string         `json:"date"`
	DayOfWeek int            `json:"day_of_week"`
	TimeSlots []SlotResponse `json:"time_slots"`
}

type TimetableResponse struct {
	CourtID  string        `json:"court_id"`
	Schedule []DayResponse `json:"schedule"`
}

func NewTimetableResponse(t *availability.Timetable) TimetableResponse {
	resp := TimetableResponse{CourtID: t.CourtID, Schedule: make([]DayResponse, len(t.Days))}
	for i, d := range t.Days {
		day := DayResponse{
			Date:      d.Date.Format(request.DateLayout),
			DayOfWeek: d.DayOfWeek,
			TimeSlots: make([]SlotResponse, len(d.TimeSlots)),
		}
		for j, s := range d.TimeSlots {
			slot := SlotResponse{
				StartTime: s.StartTime.String(),
				EndTime:   s.EndTime.String(),
				Status:    string(s.Status),
				Price:     s.Price,
				Promotion: promHttp.NewPromotionTag(s.Promotion),
			}
			if s.BookedBy != "" {
				slot.BookedBy = &s.BookedBy
			}
			day.TimeSlots[j] = slot
		}
		resp.Schedule[i] = day
	}
	return resp
}
