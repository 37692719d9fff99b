package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SCRMS-FPT/court-booking-service/internal/availability"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var q AvailabilityRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	start, err := request.ParseDate(q.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date", err)
		return
	}
	end, err := request.ParseDate(q.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid end_date", err)
		return
	}

	t, err := h.service.Compute(c.Request.Context(), uri.ID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTimetableResponse(t))
}
