package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrStorageConflict is returned by the persistence layer when its own
	// exclusion or unique constraint rejected a write.
	ErrStorageConflict = errors.New("storage rejected overlapping booking")
	// ErrValidatorUnavailable means the overlap check could not run. It is
	// never equivalent to "no conflict".
	ErrValidatorUnavailable = errors.New("conflict check unavailable")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// UpstreamError wraps a failure of storage or the payment gateway.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConflictError reports the existing active bookings that block an interval
// on one station.
type ConflictError struct {
	StationID   uuid.UUID
	StationName string
	Date        string
	Requested   Interval
	Conflicts   []Booking
}

func (e *ConflictError) Error() string {
	station := e.StationName
	if station == "" {
		station = e.StationID.String()
	}
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("%s is already booked on %s during %s", station, e.Date, e.Requested)
	}
	ranges := make([]string, 0, len(e.Conflicts))
	for i := range e.Conflicts {
		ranges = append(ranges, e.Conflicts[i].Interval().String())
	}
	return fmt.Sprintf("%s is already booked on %s at %s", station, e.Date, strings.Join(ranges, ", "))
}
