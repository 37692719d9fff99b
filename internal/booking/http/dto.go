package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	CourtID  string `form:"court_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=Pending Confirmed Cancelled Completed"`
	DateFrom string `form:"date_from" binding:"omitempty,isodate"`
	DateTo   string `form:"date_to" binding:"omitempty,isodate"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=booking_date created_at status total_price"`
}

// Filter converts the query into a repository filter.
func (r *ListBookingsRequest) Filter() (booking.Filter, error) {
	f := booking.Filter{
		UserID:   r.UserID,
		CourtID:  r.CourtID,
		Status:   r.Status,
		Page:     r.Page,
		PageSize: r.PageSize,
		SortBy:   r.SortBy,
	}
	f.SortOrder = strings.ToUpper(r.SortOrder)
	if r.DateFrom != "" {
		d, err := request.ParseDate(r.DateFrom)
		if err != nil {
			return f, err
		}
		f.DateFrom = &d
	}
	if r.DateTo != "" {
		d, err := request.ParseDate(r.DateTo)
		if err != nil {
			return f, err
		}
		f.DateTo = &d
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return f, booking.ErrInvalidTimeRange
	}
	return f, nil
}

type DetailBody struct {
	CourtID   string `json:"court_id" binding:"required,uuid"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm"`
}

func (b DetailBody) request() (booking.DetailRequest, error) {
	start, err := timeofday.Parse(b.StartTime)
	if err != nil {
		return booking.DetailRequest{}, err
	}
	end, err := timeofday.Parse(b.EndTime)
	if err != nil {
		return booking.DetailRequest{}, err
	}
	return booking.DetailRequest{CourtID: b.CourtID, StartTime: start, EndTime: end}, nil
}

func detailRequests(bodies []DetailBody) ([]booking.DetailRequest, error) {
	out := make([]booking.DetailRequest, len(bodies))
	for i, b := range bodies {
		d, err := b.request()
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

type CreateBookingBody struct {
	BookingDate string       `json:"date" binding:"required,isodate"`
	Note        string       `json:"note" binding:"max=500"`
	Details     []DetailBody `json:"details" binding:"required,min=1,dive"`
}

// QuoteBody prices a prospective booking without storing it.
type QuoteBody struct {
	BookingDate string       `json:"date" binding:"required,isodate"`
	Details     []DetailBody `json:"details" binding:"required,min=1,dive"`
}

type AddDetailsBody struct {
	Details []DetailBody `json:"details" binding:"required,min=1,dive"`
}

type UpdateStatusBody struct {
	Status string `json:"status" binding:"required,oneof=Confirmed Cancelled Completed"`
}

type UpdateNoteBody struct {
	Note *string `json:"note" binding:"required,max=500"`
}

type CreateBookingResponse struct {
	BookingID  string          `json:"booking_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	TotalTime  int             `json:"total_time"`
	Status     string          `json:"status"`
}

type DetailResponse struct {
	ID         string          `json:"id,omitempty"`
	CourtID    string          `json:"court_id"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func newDetailResponses(details []booking.Detail) []DetailResponse {
	out := make([]DetailResponse, len(details))
	for i, d := range details {
		out[i] = DetailResponse{
			ID:         d.ID,
			CourtID:    d.CourtID,
			StartTime:  d.StartTime.String(),
			EndTime:    d.EndTime.String(),
			TotalPrice: d.TotalPrice,
		}
	}
	return out
}

type BookingResponse struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	BookingDate string           `json:"booking_date"`
	Status      string           `json:"status"`
	Note        string           `json:"note"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	TotalTime   int              `json:"total_time"`
	Details     []DetailResponse `json:"details"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		BookingDate: b.BookingDate.Format(request.DateLayout),
		Status:      string(b.Status),
		Note:        b.Note,
		TotalPrice:  b.TotalPrice,
		TotalTime:   int(b.TotalTime / time.Minute),
		Details:     newDetailResponses(b.Details),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type QuoteResponse struct {
	BookingDate string           `json:"booking_date"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	TotalTime   int              `json:"total_time"`
	Details     []DetailResponse `json:"details"`
}

func NewQuoteResponse(q *booking.Quote) QuoteResponse {
	return QuoteResponse{
		BookingDate: q.Date.Format(request.DateLayout),
		TotalPrice:  q.TotalPrice,
		TotalTime:   int(q.TotalTime / time.Minute),
		Details:     newDetailResponses(q.Details),
	}
}
