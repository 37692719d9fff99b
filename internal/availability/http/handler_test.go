package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCRMS-FPT/court-booking-service/internal/availability"
	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
)

const courtID = "0b8e7a4c-5d6f-4a1b-8c9d-1e2f3a4b5c6d"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := request.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubService struct {
	t   *availability.Timetable
	err error

	gotStart, gotEnd time.Time
}

func (s *stubService) Compute(_ context.Context, _ string, start, end time.Time) (*availability.Timetable, error) {
	s.gotStart, s.gotEnd = start, end
	return s.t, s.err
}

func serve(svc availability.Service, target string) *httptest.ResponseRecorder {
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetRendersTimetable(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	svc := &stubService{t: &availability.Timetable{
		CourtID: courtID,
		Days: []availability.Day{{
			Date:      monday,
			DayOfWeek: 1,
			TimeSlots: []availability.Slot{
				{
					StartTime: timeofday.MustParse("08:00"),
					EndTime:   timeofday.MustParse("09:00"),
					Status:    availability.SlotBooked,
					Price:     decimal.NewFromInt(150),
					Promotion: &promotion.Descriptor{DiscountType: promotion.DiscountPercentage, DiscountValue: decimal.NewFromInt(20)},
					BookedBy:  "U",
				},
				{
					StartTime: timeofday.MustParse("09:00"),
					EndTime:   timeofday.MustParse("10:00"),
					Status:    availability.SlotAvailable,
					Price:     decimal.NewFromInt(150),
				},
			},
		}},
	}}

	w := serve(svc, "/v1/courts/"+courtID+"/availability?start_date=2026-03-02&end_date=2026-03-02")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"court_id": "`+courtID+`",
		"schedule": [{
			"date": "2026-03-02",
			"day_of_week": 1,
			"time_slots": [
				{"start_time": "08:00", "end_time": "09:00", "status": "BOOKED", "price": 150,
				 "promotion": {"discount_type": "Percentage", "discount_value": 20}, "booked_by": "U"},
				{"start_time": "09:00", "end_time": "10:00", "status": "AVAILABLE", "price": 150,
				 "promotion": null, "booked_by": null}
			]
		}]
	}`, w.Body.String())
	assert.Equal(t, monday, svc.gotStart)
}

func TestGetValidation(t *testing.T) {
	svc := &stubService{}

	assert.Equal(t, http.StatusBadRequest, serve(svc, "/v1/courts/"+courtID+"/availability?start_date=2026-03-02").Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, "/v1/courts/"+courtID+"/availability?start_date=03-02-2026&end_date=2026-03-02").Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, "/v1/courts/nope/availability?start_date=2026-03-02&end_date=2026-03-02").Code)
}

func TestGetMapsErrors(t *testing.T) {
	w := serve(&stubService{err: court.ErrNotFound}, "/v1/courts/"+courtID+"/availability?start_date=2026-03-02&end_date=2026-03-02")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(&stubService{err: availability.ErrInvalidRange}, "/v1/courts/"+courtID+"/availability?start_date=2026-03-02&end_date=2026-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "InvalidRangeError")
}
