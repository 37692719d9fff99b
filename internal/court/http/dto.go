package http

import (
	"time"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/request"
)

type ListCourtsRequest struct {
	request.ListParams
	SportCenterID string `form:"sport_center_id" binding:"omitempty,uuid"`
	SportID       string `form:"sport_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=Open Closed Maintenance"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type CourtResponse struct {
	ID                  string    `json:"id"`
	SportCenterID       string    `json:"sport_center_id"`
	SportID             string    `json:"sport_id"`
	Name                string    `json:"name"`
	SlotDurationMinutes int       `json:"slot_duration_minutes"`
	Status              string    `json:"status"`
	CourtType           string    `json:"court_type"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewCourtResponse(c *court.Court) CourtResponse {
	return CourtResponse{
		ID:                  c.ID,
		SportCenterID:       c.SportCenterID,
		SportID:             c.SportID,
		Name:                c.Name,
		SlotDurationMinutes: int(c.SlotDuration / time.Minute),
		Status:              string(c.Status),
		CourtType:           string(c.CourtType),
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}
