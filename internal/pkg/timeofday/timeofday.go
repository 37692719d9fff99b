package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// MinutesPerDay is the exclusive upper bound of a time of day. It is still accepted
// as a value ("24:00") so that a block may end at midnight.
const MinutesPerDay = 24 * 60

var ErrInvalidFormat = errors.New("time of day must be in HH:MM or HH:MM:SS format")

// TimeOfDay is a wall-clock time without a date, stored as minutes since midnight.
type TimeOfDay int

// New builds a TimeOfDay from hours and minutes.
func New(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Parse accepts "HH:MM" and "HH:MM:SS". Seconds must be zero.
func Parse(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidFormat
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 {
			return 0, ErrInvalidFormat
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, ErrInvalidFormat
		}
		nums[i] = n
	}

	if len(nums) == 3 && nums[2] != 0 {
		return 0, ErrInvalidFormat
	}
	if nums[1] > 59 {
		return 0, ErrInvalidFormat
	}

	t := New(nums[0], nums[1])
	if t > MinutesPerDay {
		return 0, ErrInvalidFormat
	}
	return t, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String formats as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t < o
}

func (t TimeOfDay) After(o TimeOfDay) bool {
	return t > o
}

// Add moves the time forward by d, truncated to whole minutes.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Minute)
}

// Sub returns the duration t-o.
func (t TimeOfDay) Sub(o TimeOfDay) time.Duration {
	return time.Duration(t-o) * time.Minute
}

// On places the time of day on the calendar date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location()).Add(time.Duration(t) * time.Minute)
}

// PgTime converts to the pgx representation of a TIME column.
func (t TimeOfDay) PgTime() pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * int64(time.Minute/time.Microsecond), Valid: true}
}

// FromPgTime converts a scanned TIME column. Sub-minute precision is dropped.
func FromPgTime(p pgtype.Time) (TimeOfDay, error) {
	if !p.Valid {
		return 0, errors.New("time of day is null")
	}
	return TimeOfDay(p.Microseconds / int64(time.Minute/time.Microsecond)), nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
