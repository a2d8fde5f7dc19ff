package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/ports"
)

type SlotService struct {
	stationRepo ports.StationRepository
	bookingRepo ports.BookingRepository
	hours       domain.OperatingHours
}

func NewSlotService(stationRepo ports.StationRepository, bookingRepo ports.BookingRepository, hours domain.OperatingHours) *SlotService {
	return &SlotService{
		stationRepo: stationRepo,
		bookingRepo: bookingRepo,
		hours:       hours,
	}
}

// AvailableSlots lists the day's slots for a station from the current
// booking set. Nothing is cached between calls.
func (s *SlotService) AvailableSlots(ctx context.Context, stationID uuid.UUID, date time.Time, durationMinutes int) ([]domain.TimeSlot, error) {
	if _, err := s.stationRepo.GetByID(ctx, stationID); err != nil {
		return nil, err
	}

	// reject bad durations before touching bookings
	if _, err := domain.GenerateSlots(s.hours, durationMinutes, nil); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListByStationAndDate(ctx, stationID, date)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "list bookings", Err: err}
	}

	return domain.GenerateSlots(s.hours, durationMinutes, bookings)
}
