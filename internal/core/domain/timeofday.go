package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time within a single calendar day, stored as
// seconds since midnight. Values never wrap past midnight.
type TimeOfDay int

const (
	Midnight TimeOfDay = 0
	// EndOfDay is the terminal instant a booking or slot may end at.
	EndOfDay TimeOfDay = 23*3600 + 59*60 + 59
	// DayBoundary is 24:00:00. It is only valid as a closing time in venue
	// configuration and is clamped to EndOfDay when slots are produced.
	DayBoundary TimeOfDay = 24 * 3600
)

const DateLayout = "2006-01-02"

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// ParseTimeOfDay accepts HH:MM:SS or HH:MM. 24:00[:00] is accepted and
// returned as DayBoundary.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		nums[i] = n
	}

	h, m, sec := nums[0], nums[1], nums[2]
	if h == 24 && m == 0 && sec == 0 {
		return DayBoundary, nil
	}
	if h > 23 || m > 59 || sec > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	return NewTimeOfDay(h, m, sec), nil
}

func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return t + TimeOfDay(d/time.Second)
}

// Minutes returns whole minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t) / 60
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value stores the time as a Postgres TIME literal.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
		return nil
	case nil:
		return fmt.Errorf("time of day is null")
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d.UTC(), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return FormatDate(a) == FormatDate(b)
}
