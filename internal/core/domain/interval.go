package domain

import "fmt"

// Interval is a half-open [Start, End) range within one calendar day.
type Interval struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

func NewInterval(start, end TimeOfDay) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// ParseInterval parses two HH:MM[:SS] strings into a validated interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, &ValidationError{Field: "start_time", Message: err.Error()}
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, &ValidationError{Field: "end_time", Message: err.Error()}
	}
	return NewInterval(s, e)
}

func (iv Interval) Validate() error {
	if iv.Start < Midnight || iv.End > EndOfDay {
		return &ValidationError{Field: "end_time", Message: "interval must stay within one calendar day (ends at 23:59:59 at the latest)"}
	}
	if iv.Start >= iv.End {
		return &ValidationError{Field: "end_time", Message: "end time must be after start time"}
	}
	return nil
}

// Overlaps reports whether two half-open intervals share any instant.
// Adjacent intervals (one ends exactly where the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s-%s", iv.Start, iv.End)
}
