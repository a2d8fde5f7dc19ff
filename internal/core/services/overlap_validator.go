package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/ports"
)

type ConflictQuery struct {
	StationID uuid.UUID
	Date      time.Time
	Interval  domain.Interval
	ExcludeID *uuid.UUID
}

type ConflictResult struct {
	Conflict  bool
	Conflicts []domain.Booking
}

// OverlapValidator is the application-layer conflict check. The storage
// exclusion constraint stays authoritative; this check only reports
// conflicts earlier and with detail.
type OverlapValidator struct {
	bookingRepo ports.BookingRepository
}

func NewOverlapValidator(bookingRepo ports.BookingRepository) *OverlapValidator {
	return &OverlapValidator{bookingRepo: bookingRepo}
}

// Check returns the active bookings overlapping q. When the lookup itself
// fails the error wraps domain.ErrValidatorUnavailable.
func (v *OverlapValidator) Check(ctx context.Context, q ConflictQuery) (ConflictResult, error) {
	if err := q.Interval.Validate(); err != nil {
		return ConflictResult{}, err
	}

	existing, err := v.bookingRepo.FindActiveOverlapping(ctx, q.StationID, q.Date, q.Interval, q.ExcludeID)
	if err != nil {
		return ConflictResult{}, fmt.Errorf("%w: %w", domain.ErrValidatorUnavailable, err)
	}

	// only active rows on the same date that overlap count as conflicts
	conflicts := make([]domain.Booking, 0, len(existing))
	for _, b := range existing {
		if q.ExcludeID != nil && b.ID == *q.ExcludeID {
			continue
		}
		if !b.Status.IsActive() || !domain.SameDate(b.Date, q.Date) {
			continue
		}
		if b.Interval().Overlaps(q.Interval) {
			conflicts = append(conflicts, b)
		}
	}

	return ConflictResult{Conflict: len(conflicts) > 0, Conflicts: conflicts}, nil
}
