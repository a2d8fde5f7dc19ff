package domain

import "fmt"

// TimeSlot is a derived, unpersisted candidate interval.
type TimeSlot struct {
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

func (s TimeSlot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// OperatingHours is the daily bookable window of the venue. Close may be
// DayBoundary (24:00:00); the terminal slot is then clamped to EndOfDay.
type OperatingHours struct {
	Open  TimeOfDay
	Close TimeOfDay
}

func (h OperatingHours) Validate() error {
	if h.Open < Midnight || h.Close > DayBoundary || h.Open >= h.Close {
		return &ConfigurationError{Message: fmt.Sprintf("invalid operating hours %s-%s", h.Open, h.Close)}
	}
	if h.Open%60 != 0 || h.Close%60 != 0 {
		return &ConfigurationError{Message: "operating hours must be whole minutes"}
	}
	return nil
}

// WindowMinutes is the length of the operating window in minutes.
func (h OperatingHours) WindowMinutes() int {
	return h.Close.Minutes() - h.Open.Minutes()
}

// GenerateSlots produces the ordered, contiguous slots of one day. A slot is
// unavailable when it overlaps any active booking in bookings; bookings in
// other statuses are ignored. The output depends only on the arguments.
func GenerateSlots(hours OperatingHours, durationMinutes int, bookings []Booking) ([]TimeSlot, error) {
	if err := hours.Validate(); err != nil {
		return nil, err
	}

	window := hours.WindowMinutes()
	if durationMinutes <= 0 {
		return nil, &ConfigurationError{Message: fmt.Sprintf("slot duration must be positive, got %d", durationMinutes)}
	}
	if durationMinutes > window || window%durationMinutes != 0 {
		return nil, &ConfigurationError{Message: fmt.Sprintf("slot duration %d minutes does not evenly divide the %d minute operating window", durationMinutes, window)}
	}

	active := make([]Interval, 0, len(bookings))
	for i := range bookings {
		if bookings[i].Status.IsActive() {
			active = append(active, bookings[i].Interval())
		}
	}

	step := TimeOfDay(durationMinutes * 60)
	count := window / durationMinutes
	slots := make([]TimeSlot, 0, count)

	for start := hours.Open; start < hours.Close; start += step {
		end := start + step
		if end > EndOfDay {
			end = EndOfDay
		}

		slot := TimeSlot{StartTime: start, EndTime: end, IsAvailable: true}
		for _, iv := range active {
			if slot.Interval().Overlaps(iv) {
				slot.IsAvailable = false
				break
			}
		}
		slots = append(slots, slot)
	}

	return slots, nil
}
