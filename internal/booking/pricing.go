package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

// PriceDetail prices one range on date. Every slot-sized increment must be a slot of an
// Active schedule; the promotion selected for date is applied to the sum, which is then
// rounded half away from zero to cents.
func PriceDetail(c *court.Court, schedules []schedule.Schedule, promotions []promotion.Promotion, date time.Time, r timeofday.Range) (decimal.Decimal, error) {
	if !r.Valid() {
		return decimal.Zero, ErrInvalidTimeRange
	}
	step := c.SlotDuration
	if step <= 0 || r.Duration()%step != 0 {
		return decimal.Zero, ErrInvalidDuration
	}

	day := schedule.ForWeekday(schedules, schedule.WeekdayOf(date))
	subtotal := decimal.Zero
	for _, inc := range r.Split(step) {
		price, err := slotPrice(day, inc, step)
		if err != nil {
			return decimal.Zero, err
		}
		subtotal = subtotal.Add(price)
	}

	if p, ok := promotion.Best(promotions, date); ok {
		subtotal = p.Apply(subtotal)
	}
	return subtotal.Round(2), nil
}

// slotPrice finds the first Active schedule whose slot grid contains inc.
func slotPrice(day []schedule.Schedule, inc timeofday.Range, step time.Duration) (decimal.Decimal, error) {
	covered := false
	for _, s := range day {
		if s.Status != schedule.StatusActive || !s.Range().Contains(inc) {
			continue
		}
		covered = true
		if inc.Start.Sub(s.StartTime)%step == 0 {
			return s.PriceSlot, nil
		}
	}
	if covered {
		return decimal.Zero, ErrMisalignedSlot
	}
	return decimal.Zero, ErrScheduleUnavailable
}
