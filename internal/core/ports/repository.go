package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turf45/courtbook/internal/core/domain"
)

type StationRepository interface {
	GetByID(ctx context.Context, stationID uuid.UUID) (*domain.Station, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
}

type BookingRepository interface {
	// FindActiveOverlapping returns confirmed/in-progress bookings of the
	// station on date whose interval overlaps iv, skipping excludeID.
	FindActiveOverlapping(ctx context.Context, stationID uuid.UUID, date time.Time, iv domain.Interval, excludeID *uuid.UUID) ([]domain.Booking, error)
	ListByStationAndDate(ctx context.Context, stationID uuid.UUID, date time.Time) ([]domain.Booking, error)
	// CreateBookings inserts all rows in one transaction. A storage-level
	// overlap rejection is reported as domain.ErrStorageConflict.
	CreateBookings(ctx context.Context, bookings []domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) error
	Reschedule(ctx context.Context, bookingID uuid.UUID, date time.Time, iv domain.Interval) error
	// ListActiveByCreation returns all active bookings ordered by created_at, id.
	ListActiveByCreation(ctx context.Context) ([]domain.Booking, error)
	// DeleteByIDs removes the listed bookings that are still active and
	// returns the ids actually deleted.
	DeleteByIDs(ctx context.Context, bookingIDs []uuid.UUID) ([]uuid.UUID, error)
	PurgeInactiveBefore(ctx context.Context, before time.Time) (int64, error)
	ListPendingPayments(ctx context.Context, limit int) ([]domain.PendingPayment, error)
	// ResolvePayment moves every still-pending booking of orderID to status.
	// Failed payments also cancel the bookings. Returns affected rows.
	ResolvePayment(ctx context.Context, orderID string, status domain.PaymentStatus, paymentRef string) (int64, error)
	// MarkEventProcessed records a payment event id; false when already seen.
	MarkEventProcessed(ctx context.Context, eventID, orderID string) (bool, error)
}
