package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SCRMS-FPT/court-booking-service/internal/auth"
	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
)

const (
	userID    = "6f1c2f0e-3a53-4c4e-9a57-0c3f1f0d2b11"
	courtID   = "0b8e7a4c-5d6f-4a1b-8c9d-1e2f3a4b5c6d"
	bookingID = "2d3e4f50-6172-4839-a4b5-c6d7e8f90a1b"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := request.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) Quote(ctx context.Context, date time.Time, details []booking.DetailRequest) (*booking.Quote, error) {
	args := m.Called(ctx, date, details)
	q, _ := args.Get(0).(*booking.Quote)
	return q, args.Error(1)
}

func (m *mockService) GetByID(ctx context.Context, id string, actor booking.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, actor)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) List(ctx context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, filter)
	bs, _ := args.Get(0).([]*booking.Booking)
	return bs, args.Int(1), args.Error(2)
}

func (m *mockService) UpdateStatus(ctx context.Context, id string, to booking.Status, actor booking.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, to, actor)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) UpdateNote(ctx context.Context, id string, note string, actor booking.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, note, actor)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

func (m *mockService) AddDetails(ctx context.Context, id string, details []booking.DetailRequest, actor booking.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, details, actor)
	b, _ := args.Get(0).(*booking.Booking)
	return b, args.Error(1)
}

type harness struct {
	router *gin.Engine
	svc    *mockService
	jwt    *auth.JWTManager
}

func newHarness() *harness {
	svc := &mockService{}
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	r := gin.New()
	noLimit := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), auth.AuthRequired(jwt), noLimit)
	return &harness{router: r, svc: svc, jwt: jwt}
}

func (h *harness) do(t *testing.T, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	token, err := h.jwt.GenerateAccessToken(userID, "player@example.com", role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:          bookingID,
		UserID:      userID,
		BookingDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Status:      booking.StatusPending,
		TotalPrice:  decimal.RequireFromString("240"),
		TotalTime:   2 * time.Hour,
		Details: []booking.Detail{{
			ID:         "d1",
			CourtID:    courtID,
			StartTime:  timeofday.MustParse("08:00"),
			EndTime:    timeofday.MustParse("10:00"),
			TotalPrice: decimal.RequireFromString("240"),
		}},
	}
}

func TestCreate(t *testing.T) {
	h := newHarness()
	want := booking.CreateRequest{
		UserID: userID,
		Date:   time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Note:   "doubles",
		Details: []booking.DetailRequest{{
			CourtID:   courtID,
			StartTime: timeofday.MustParse("08:00"),
			EndTime:   timeofday.MustParse("10:00"),
		}},
	}
	h.svc.On("Create", mock.Anything, want).Return(sampleBooking(), nil)

	w := h.do(t, http.MethodPost, "/v1/bookings", auth.RoleUser, gin.H{
		"date":    "2026-11-02",
		"note":    "doubles",
		"details": []gin.H{{"court_id": courtID, "start_time": "08:00", "end_time": "10:00"}},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, bookingID, resp.BookingID)
	assert.Equal(t, 120, resp.TotalTime)
	assert.Equal(t, "Pending", resp.Status)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(240)))
	assert.Contains(t, w.Body.String(), `"total_price":240`)
	h.svc.AssertExpectations(t)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{name: "no details", body: gin.H{"date": "2026-11-02", "details": []gin.H{}}},
		{name: "bad date", body: gin.H{"date": "02/11/2026", "details": []gin.H{{"court_id": courtID, "start_time": "08:00", "end_time": "09:00"}}}},
		{name: "bad time", body: gin.H{"date": "2026-11-02", "details": []gin.H{{"court_id": courtID, "start_time": "8am", "end_time": "09:00"}}}},
		{name: "bad court id", body: gin.H{"date": "2026-11-02", "details": []gin.H{{"court_id": "court", "start_time": "08:00", "end_time": "09:00"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			w := h.do(t, http.MethodPost, "/v1/bookings", auth.RoleUser, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			h.svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{err: booking.ErrConflict, code: http.StatusConflict, kind: "ConflictError"},
		{err: booking.ErrScheduleUnavailable, code: http.StatusUnprocessableEntity, kind: "ScheduleUnavailableError"},
		{err: booking.ErrInvalidDuration, code: http.StatusBadRequest, kind: "InvalidDurationError"},
		{err: booking.ErrRetryable, code: http.StatusServiceUnavailable, kind: "RetryableError"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			h := newHarness()
			h.svc.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := h.do(t, http.MethodPost, "/v1/bookings", auth.RoleUser, gin.H{
				"date":    "2026-11-02",
				"details": []gin.H{{"court_id": courtID, "start_time": "08:00", "end_time": "09:00"}},
			})

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.kind)
		})
	}
}

func TestListScopesRegularUsers(t *testing.T) {
	h := newHarness()
	h.svc.On("List", mock.Anything, mock.MatchedBy(func(f booking.Filter) bool {
		return f.UserID == userID && f.Status == "Pending" && f.Page == 1 && f.PageSize == 20
	})).Return([]*booking.Booking{sampleBooking()}, 1, nil)

	w := h.do(t, http.MethodGet, "/v1/bookings?status=Pending&user_id="+courtID, auth.RoleUser, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":1`)
	h.svc.AssertExpectations(t)
}

func TestListManagersMayFilterByUser(t *testing.T) {
	h := newHarness()
	h.svc.On("List", mock.Anything, mock.MatchedBy(func(f booking.Filter) bool {
		return f.UserID == courtID && f.DateFrom != nil && f.SortOrder == "ASC"
	})).Return(nil, 0, nil)

	w := h.do(t, http.MethodGet, "/v1/bookings?user_id="+courtID+"&date_from=2026-11-01&sort_order=asc", auth.RoleAdmin, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"items":[]`)
	h.svc.AssertExpectations(t)
}

func TestListRejectsInvertedDates(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodGet, "/v1/bookings?date_from=2026-11-05&date_to=2026-11-01", auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusPassesActor(t *testing.T) {
	h := newHarness()
	cancelled := sampleBooking()
	cancelled.Status = booking.StatusCancelled
	h.svc.On("UpdateStatus", mock.Anything, bookingID, booking.StatusCancelled,
		booking.Actor{UserID: userID, IsManager: true}).Return(cancelled, nil)

	w := h.do(t, http.MethodPatch, "/v1/bookings/"+bookingID+"/status", auth.RoleCourtOwner, gin.H{"status": "Cancelled"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"Cancelled"`)
	h.svc.AssertExpectations(t)
}

func TestUpdateStatusRejectsPending(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodPatch, "/v1/bookings/"+bookingID+"/status", auth.RoleAdmin, gin.H{"status": "Pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateNoteRequiresField(t *testing.T) {
	h := newHarness()
	w := h.do(t, http.MethodPatch, "/v1/bookings/"+bookingID+"/note", auth.RoleUser, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.svc.On("UpdateNote", mock.Anything, bookingID, "", booking.Actor{UserID: userID}).Return(sampleBooking(), nil)
	w = h.do(t, http.MethodPatch, "/v1/bookings/"+bookingID+"/note", auth.RoleUser, gin.H{"note": ""})
	assert.Equal(t, http.StatusOK, w.Code, "an empty note clears it")
}

func TestGetForbidden(t *testing.T) {
	h := newHarness()
	h.svc.On("GetByID", mock.Anything, bookingID, booking.Actor{UserID: userID}).Return(nil, booking.ErrPermissionDenied)

	w := h.do(t, http.MethodGet, "/v1/bookings/"+bookingID, auth.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(t, http.MethodGet, "/v1/bookings/not-a-uuid", auth.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuote(t *testing.T) {
	h := newHarness()
	b := sampleBooking()
	h.svc.On("Quote", mock.Anything, b.BookingDate, mock.Anything).Return(&booking.Quote{
		Date: b.BookingDate, Details: b.Details, TotalPrice: b.TotalPrice, TotalTime: b.TotalTime,
	}, nil)

	w := h.do(t, http.MethodPost, "/v1/bookings/quote", auth.RoleUser, gin.H{
		"date":    "2026-11-02",
		"details": []gin.H{{"court_id": courtID, "start_time": "08:00", "end_time": "10:00"}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 120, resp.TotalTime)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "08:00", resp.Details[0].StartTime)
}

func TestAddDetails(t *testing.T) {
	h := newHarness()
	h.svc.On("AddDetails", mock.Anything, bookingID, mock.Anything, booking.Actor{UserID: userID}).Return(nil, booking.ErrNotPending)

	w := h.do(t, http.MethodPost, "/v1/bookings/"+bookingID+"/details", auth.RoleUser, gin.H{
		"details": []gin.H{{"court_id": courtID, "start_time": "10:00", "end_time": "11:00"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
