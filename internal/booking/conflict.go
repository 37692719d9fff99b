package booking

import (
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

// ValidateProposals checks a whole request at once. It fails with ErrConflict when a
// proposal overlaps an occupied range or an earlier proposal on the same court and
// date, and with ErrScheduleUnavailable when a proposal is not fully covered by Active
// schedule blocks for its weekday or touches a Maintenance block. schedules is keyed
// by court ID.
func ValidateProposals(proposals []Proposal, occupied []Occupied, schedules map[string][]schedule.Schedule) error {
	if len(proposals) == 0 {
		return ErrEmptyDetails
	}

	for i, p := range proposals {
		r := p.Range()
		if !r.Valid() {
			return ErrInvalidTimeRange
		}

		for _, o := range occupied {
			if o.CourtID == p.CourtID && sameDate(o.Date, p.Date) && o.Range().Overlaps(r) {
				return ErrConflict
			}
		}
		for _, prev := range proposals[:i] {
			if prev.CourtID == p.CourtID && sameDate(prev.Date, p.Date) && prev.Range().Overlaps(r) {
				return ErrConflict
			}
		}

		day := schedule.ForWeekday(schedules[p.CourtID], schedule.WeekdayOf(p.Date))
		if !coveredByActive(r, day) {
			return ErrScheduleUnavailable
		}
	}
	return nil
}

func coveredByActive(r timeofday.Range, day []schedule.Schedule) bool {
	var active []timeofday.Range
	for _, s := range day {
		switch s.Status {
		case schedule.StatusMaintenance:
			if s.Range().Overlaps(r) {
				return false
			}
		case schedule.StatusActive:
			active = append(active, s.Range())
		}
	}
	for _, block := range timeofday.Merge(active) {
		if block.Contains(r) {
			return true
		}
	}
	return false
}
