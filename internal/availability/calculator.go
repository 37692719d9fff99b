package availability

import (
	"time"

	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

// Calculate expands the weekly schedules of c into dated slots for every date in
// [start, end] and overlays promotions and occupied intervals. It has no side effects.
func Calculate(
	c *court.Court,
	schedules []schedule.Schedule,
	promotions []promotion.Promotion,
	occupied []booking.Occupied,
	start, end time.Time,
) (*Timetable, error) {
	start, end = dateOnly(start), dateOnly(end)
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	byDate := make(map[time.Time][]booking.Occupied)
	for _, o := range occupied {
		if o.CourtID != c.ID {
			continue
		}
		d := dateOnly(o.Date)
		byDate[d] = append(byDate[d], o)
	}

	t := &Timetable{CourtID: c.ID}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekday := schedule.WeekdayOf(d)
		day := Day{Date: d, DayOfWeek: weekday, TimeSlots: []Slot{}}
		var promo *promotion.Descriptor
		if p, ok := promotion.Best(promotions, d); ok {
			desc := p.Descriptor()
			promo = &desc
		}
		for _, s := range schedule.ForWeekday(schedules, weekday) {
			day.TimeSlots = append(day.TimeSlots, expand(c, s, promo, byDate[d])...)
		}
		t.Days = append(t.Days, day)
	}
	return t, nil
}

func expand(c *court.Court, s schedule.Schedule, promo *promotion.Descriptor, occupied []booking.Occupied) []Slot {
	ranges := s.Slots(c.SlotDuration)
	out := make([]Slot, 0, len(ranges))
	for _, r := range ranges {
		slot := Slot{
			StartTime: r.Start,
			EndTime:   r.End,
			Status:    SlotAvailable,
			Price:     s.PriceSlot,
			Promotion: promo,
		}
		if s.Status == schedule.StatusMaintenance {
			slot.Status = SlotMaintenance
		} else {
			for _, o := range occupied {
				if o.Range().Overlaps(r) {
					slot.Status = SlotBooked
					slot.BookedBy = o.UserID
					break
				}
			}
		}
		out = append(out, slot)
	}
	return out
}
