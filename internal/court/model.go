package court

import (
	"net/http"
	"time"

	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/apperror"
)

var ErrNotFound = apperror.New(http.StatusNotFound, apperror.KindNotFound, "court not found")

type Status string

const (
	StatusOpen        Status = "Open"
	StatusClosed      Status = "Closed"
	StatusMaintenance Status = "Maintenance"
)

type Type string

const (
	TypeIndoor  Type = "Indoor"
	TypeOutdoor Type = "Outdoor"
)

// Court is a bookable playing surface. Courts are created by facility
// management elsewhere; this service only reads them.
type Court struct {
	ID            string
	SportCenterID string
	SportID       string
	Name          string
	SlotDuration  time.Duration
	Status        Status
	CourtType     Type
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Bookable reports whether new reservations may be placed on the court.
func (c *Court) Bookable() bool {
	return c.Status == StatusOpen
}

// Filter defines parameters for listing courts.
type Filter struct {
	SportCenterID string
	SportID       string
	Status        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
