package availability

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SCRMS-FPT/court-booking-service/internal/booking"
	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/pkg/timeofday"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

var weekdays = []int{1, 2, 3, 4, 5}

func hourly() *court.Court {
	return &court.Court{ID: "court-1", SlotDuration: time.Hour, Status: court.StatusOpen}
}

func sched(id string, days []int, start, end string, price int64, status schedule.Status) schedule.Schedule {
	return schedule.Schedule{
		ID:         id,
		CourtID:    "court-1",
		DaysOfWeek: days,
		StartTime:  timeofday.MustParse(start),
		EndTime:    timeofday.MustParse(end),
		PriceSlot:  decimal.NewFromInt(price),
		Status:     status,
	}
}

func occupied(userID, start, end string, date time.Time) booking.Occupied {
	return booking.Occupied{
		BookingID: "b-" + userID,
		UserID:    userID,
		CourtID:   "court-1",
		Date:      date,
		StartTime: timeofday.MustParse(start),
		EndTime:   timeofday.MustParse(end),
	}
}

func percentOff(id, value string, from, to time.Time) promotion.Promotion {
	p, err := promotion.New("court-1", promotion.Params{
		DiscountType:  promotion.DiscountPercentage,
		DiscountValue: decimal.RequireFromString(value),
		ValidFrom:     from,
		ValidTo:       to,
	})
	if err != nil {
		panic(err)
	}
	p.ID = id
	return p
}

func slotTimes(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime.String() + "-" + s.EndTime.String() + " " + string(s.Status)
	}
	return out
}

func TestCalculateExpandsWeekdaySchedule(t *testing.T) {
	schedules := []schedule.Schedule{sched("s1", weekdays, "08:00", "10:00", 150, schedule.StatusActive)}

	tt, err := Calculate(hourly(), schedules, nil, nil, monday, monday)
	require.NoError(t, err)
	require.Len(t, tt.Days, 1)

	day := tt.Days[0]
	assert.Equal(t, monday, day.Date)
	assert.Equal(t, 1, day.DayOfWeek)
	assert.Equal(t, []string{"08:00-09:00 AVAILABLE", "09:00-10:00 AVAILABLE"}, slotTimes(day.TimeSlots))
	for _, s := range day.TimeSlots {
		assert.True(t, s.Price.Equal(decimal.NewFromInt(150)))
		assert.Nil(t, s.Promotion)
	}
}

func TestCalculateMarksBookedSlots(t *testing.T) {
	schedules := []schedule.Schedule{sched("s1", weekdays, "08:00", "10:00", 150, schedule.StatusActive)}
	occ := []booking.Occupied{occupied("U", "08:00", "09:00", monday)}

	tt, err := Calculate(hourly(), schedules, nil, occ, monday, monday)
	require.NoError(t, err)

	slots := tt.Days[0].TimeSlots
	assert.Equal(t, SlotBooked, slots[0].Status)
	assert.Equal(t, "U", slots[0].BookedBy)
	assert.Equal(t, SlotAvailable, slots[1].Status)
	assert.Empty(t, slots[1].BookedBy)
}

func TestCalculateAttachesPromotion(t *testing.T) {
	schedules := []schedule.Schedule{sched("s1", weekdays, "08:00", "10:00", 150, schedule.StatusActive)}
	promos := []promotion.Promotion{percentOff("p1", "20", monday, monday)}

	tt, err := Calculate(hourly(), schedules, promos, nil, monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, tt.Days, 2)

	for _, s := range tt.Days[0].TimeSlots {
		require.NotNil(t, s.Promotion)
		assert.Equal(t, promotion.DiscountPercentage, s.Promotion.DiscountType)
		assert.True(t, s.Promotion.DiscountValue.Equal(decimal.NewFromInt(20)))
	}
	for _, s := range tt.Days[1].TimeSlots {
		assert.Nil(t, s.Promotion, "promotion ends on monday")
	}
}

func TestCalculatePicksLargerPercentage(t *testing.T) {
	schedules := []schedule.Schedule{sched("s1", weekdays, "08:00", "09:00", 100, schedule.StatusActive)}
	promos := []promotion.Promotion{
		percentOff("p-small", "10", monday, monday),
		percentOff("p-big", "30", monday, monday),
	}

	tt, err := Calculate(hourly(), schedules, promos, nil, monday, monday)
	require.NoError(t, err)
	assert.True(t, tt.Days[0].TimeSlots[0].Promotion.DiscountValue.Equal(decimal.NewFromInt(30)))
}

func TestCalculateUsesOnePromotionPerDate(t *testing.T) {
	schedules := []schedule.Schedule{
		sched("s1", weekdays, "08:00", "11:00", 100, schedule.StatusActive),
		sched("s2", weekdays, "18:00", "19:00", 300, schedule.StatusActive),
	}
	fixed, err := promotion.New("court-1", promotion.Params{
		DiscountType:  promotion.DiscountFixed,
		DiscountValue: decimal.NewFromInt(30),
		ValidFrom:     monday,
		ValidTo:       monday,
	})
	require.NoError(t, err)
	fixed.ID = "p-fixed"
	promos := []promotion.Promotion{fixed, percentOff("p-pct", "20", monday, monday)}

	tt, err := Calculate(hourly(), schedules, promos, nil, monday, monday)
	require.NoError(t, err)

	slots := tt.Days[0].TimeSlots
	require.Len(t, slots, 4)
	for _, s := range slots {
		require.NotNil(t, s.Promotion)
		assert.Equal(t, promotion.DiscountPercentage, s.Promotion.DiscountType, s.StartTime.String())
		assert.True(t, s.Promotion.DiscountValue.Equal(decimal.NewFromInt(20)))
	}

	// The charged price applies the promotion the timetable shows.
	price, err := booking.PriceDetail(hourly(), schedules, promos, monday,
		timeofday.NewRange(timeofday.MustParse("08:00"), timeofday.MustParse("11:00")))
	require.NoError(t, err)
	assert.Equal(t, "240", price.String())
}

func TestCalculateMaintenanceOverridesBooking(t *testing.T) {
	schedules := []schedule.Schedule{
		sched("s1", weekdays, "08:00", "10:00", 150, schedule.StatusMaintenance),
		sched("s2", weekdays, "10:00", "11:00", 150, schedule.StatusActive),
	}
	occ := []booking.Occupied{occupied("U", "08:00", "09:00", monday)}

	tt, err := Calculate(hourly(), schedules, nil, occ, monday, monday)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"08:00-09:00 MAINTENANCE",
		"09:00-10:00 MAINTENANCE",
		"10:00-11:00 AVAILABLE",
	}, slotTimes(tt.Days[0].TimeSlots))
	assert.Empty(t, tt.Days[0].TimeSlots[0].BookedBy)
}

func TestCalculateSkipsInactiveAndOtherWeekdays(t *testing.T) {
	schedules := []schedule.Schedule{
		sched("s1", []int{6, 7}, "08:00", "10:00", 150, schedule.StatusActive),
		sched("s2", weekdays, "12:00", "14:00", 150, schedule.StatusInactive),
	}

	tt, err := Calculate(hourly(), schedules, nil, nil, monday, monday.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, tt.Days, 7)

	for _, d := range tt.Days {
		if d.DayOfWeek >= 6 {
			assert.Len(t, d.TimeSlots, 2, d.Date)
			continue
		}
		assert.NotNil(t, d.TimeSlots)
		assert.Empty(t, d.TimeSlots, d.Date)
	}
	assert.Equal(t, 7, tt.Days[6].DayOfWeek, "sunday is 7")
}

func TestCalculateDropsShortRemainder(t *testing.T) {
	schedules := []schedule.Schedule{sched("s1", weekdays, "08:00", "10:30", 150, schedule.StatusActive)}

	tt, err := Calculate(hourly(), schedules, nil, nil, monday, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00-09:00 AVAILABLE", "09:00-10:00 AVAILABLE"}, slotTimes(tt.Days[0].TimeSlots))
}

func TestCalculateOrdersByStartTime(t *testing.T) {
	schedules := []schedule.Schedule{
		sched("s-late", weekdays, "18:00", "19:00", 200, schedule.StatusActive),
		sched("s-early", weekdays, "07:00", "08:00", 100, schedule.StatusActive),
	}

	tt, err := Calculate(hourly(), schedules, nil, nil, monday, monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"07:00-08:00 AVAILABLE", "18:00-19:00 AVAILABLE"}, slotTimes(tt.Days[0].TimeSlots))
}

func TestCalculateIgnoresOtherDatesAndCourts(t *testing.T) {
	schedules := []schedule.Schedule{sched("s1", weekdays, "08:00", "09:00", 150, schedule.StatusActive)}
	other := occupied("V", "08:00", "09:00", monday)
	other.CourtID = "court-2"
	occ := []booking.Occupied{
		other,
		occupied("W", "08:00", "09:00", monday.AddDate(0, 0, 1)),
	}

	tt, err := Calculate(hourly(), schedules, nil, occ, monday, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, SlotAvailable, tt.Days[0].TimeSlots[0].Status)
	assert.Equal(t, SlotBooked, tt.Days[1].TimeSlots[0].Status)
	assert.Equal(t, "W", tt.Days[1].TimeSlots[0].BookedBy)
}

func TestCalculateRange(t *testing.T) {
	tests := []struct {
		name    string
		end     time.Time
		wantErr bool
	}{
		{name: "single day", end: monday},
		{name: "31 days", end: monday.AddDate(0, 0, MaxRangeDays)},
		{name: "32 days", end: monday.AddDate(0, 0, MaxRangeDays+1), wantErr: true},
		{name: "end before start", end: monday.AddDate(0, 0, -1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(hourly(), nil, nil, nil, monday, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Days, int(tt.end.Sub(monday)/(24*time.Hour))+1)
		})
	}
}

// Slots of one schedule tile its block without gaps or overlap, and every slot
// has exactly the court's slot duration.
func TestCalculateSlotsTileBlock(t *testing.T) {
	c := &court.Court{ID: "court-1", SlotDuration: 45 * time.Minute, Status: court.StatusOpen}
	schedules := []schedule.Schedule{sched("s1", weekdays, "06:00", "22:00", 90, schedule.StatusActive)}

	tt, err := Calculate(c, schedules, nil, nil, monday, monday)
	require.NoError(t, err)

	slots := tt.Days[0].TimeSlots
	require.NotEmpty(t, slots)
	assert.Equal(t, timeofday.MustParse("06:00"), slots[0].StartTime)
	for i, s := range slots {
		assert.Equal(t, 45*time.Minute, s.EndTime.Sub(s.StartTime))
		assert.LessOrEqual(t, int(s.EndTime), int(timeofday.MustParse("22:00")))
		if i > 0 {
			assert.Equal(t, slots[i-1].EndTime, s.StartTime)
		}
	}
	assert.Len(t, slots, 21)
}
