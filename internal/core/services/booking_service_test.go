package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/ports/mocks"
	"github.com/turf45/courtbook/internal/core/services"
)

type bookingFixture struct {
	stations  *mocks.StationRepository
	customers *mocks.CustomerRepository
	bookings  *mocks.BookingRepository
	publisher *mocks.EventPublisher
}

func newBookingFixture(t *testing.T) *bookingFixture {
	return &bookingFixture{
		stations:  mocks.NewStationRepository(t),
		customers: mocks.NewCustomerRepository(t),
		bookings:  mocks.NewBookingRepository(t),
		publisher: mocks.NewEventPublisher(t),
	}
}

func (f *bookingFixture) service(strict bool) *services.BookingService {
	return services.NewBookingService(f.stations, f.customers, f.bookings, f.publisher, zap.NewNop(), services.BookingOptions{StrictPrecheck: strict})
}

func newStation(name string) *domain.Station {
	return &domain.Station{ID: uuid.New(), Name: name, Category: domain.CategoryTurf, HourlyRate: 1200}
}

func existingBooking(stationID uuid.UUID, start, end string, status domain.BookingStatus) domain.Booking {
	date, _ := domain.ParseDate("2024-06-01")
	iv, _ := domain.ParseInterval(start, end)
	return domain.Booking{
		ID:        uuid.New(),
		StationID: stationID,
		Date:      date,
		StartTime: iv.Start,
		EndTime:   iv.End,
		Status:    status,
		CreatedAt: time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
	}
}

func bookingRequest(start, end string, stations ...*domain.Station) services.CreateBookingRequest {
	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		ids = append(ids, s.ID.String())
	}
	return services.CreateBookingRequest{
		CustomerInfo:     services.CustomerInfo{Name: "Asha", Phone: "+91 98765-43210"},
		SelectedStations: ids,
		SelectedDate:     "2024-06-01",
		SelectedSlot:     services.SelectedSlot{StartTime: start, EndTime: end},
		OriginalPrice:    1200,
		FinalPrice:       1200,
	}
}

var knownCustomer = &domain.Customer{ID: uuid.New(), Name: "Asha", Phone: "+919876543210"}

func TestCreateBooking_Success_AdjacentIsNotConflict(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	// the repository may over-return; an adjacent 14:00-15:00 row must not block 15:00-16:00
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.Booking{existingBooking(s1.ID, "14:00:00", "15:00:00", domain.BookingConfirmed)}, nil)
	f.bookings.On("CreateBookings", ctx, mock.MatchedBy(func(bs []domain.Booking) bool {
		return len(bs) == 1 &&
			bs[0].StationID == s1.ID &&
			bs[0].CustomerID == knownCustomer.ID &&
			bs[0].Status == domain.BookingConfirmed &&
			bs[0].PaymentStatus == domain.PaymentNotRequired &&
			bs[0].Interval().String() == "15:00:00-16:00:00"
	})).Return(nil)
	f.publisher.On("PublishJSON", ctx, "booking.created", mock.Anything).Return(nil)

	resp, err := f.service(true).CreateBooking(ctx, bookingRequest("15:00", "16:00", s1))

	require.NoError(t, err)
	assert.NotEmpty(t, resp.BookingID)
	assert.Equal(t, []string{resp.BookingID}, resp.BookingIDs)
	assert.Equal(t, knownCustomer.ID.String(), resp.CustomerID)
}

func TestCreateBooking_Fail_Overlap(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.Booking{existingBooking(s1.ID, "14:00:00", "15:00:00", domain.BookingConfirmed)}, nil)

	resp, err := f.service(true).CreateBooking(ctx, bookingRequest("14:30:00", "15:30:00", s1))

	assert.Nil(t, resp)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "14:00:00-15:00:00")
	assert.Equal(t, "2024-06-01", conflict.Date)
	f.bookings.AssertNotCalled(t, "CreateBookings", mock.Anything, mock.Anything)
}

func TestCreateBooking_CancelledBookingDoesNotBlock(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.Booking{existingBooking(s1.ID, "14:00:00", "15:00:00", domain.BookingCancelled)}, nil)
	f.bookings.On("CreateBookings", ctx, mock.Anything).Return(nil)
	f.publisher.On("PublishJSON", ctx, "booking.created", mock.Anything).Return(nil)

	_, err := f.service(true).CreateBooking(ctx, bookingRequest("14:00", "15:00", s1))
	assert.NoError(t, err)
}

func TestCreateBooking_MultiStation_AllOrNothing(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1, s2 := newStation("Turf A"), newStation("Turf B")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.stations.On("GetByID", ctx, s2.ID).Return(s2, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return(nil, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s2.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.Booking{existingBooking(s2.ID, "18:00:00", "19:00:00", domain.BookingInProgress)}, nil)

	_, err := f.service(true).CreateBooking(ctx, bookingRequest("18:00", "19:00", s1, s2))

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, s2.ID, conflict.StationID)
	assert.Contains(t, err.Error(), "Turf B")
	f.bookings.AssertNotCalled(t, "CreateBookings", mock.Anything, mock.Anything)
}

func TestCreateBooking_SplitsPricesAcrossStations(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1, s2 := newStation("Turf A"), newStation("Turf B")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.stations.On("GetByID", ctx, s2.ID).Return(s2, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	f.bookings.On("FindActiveOverlapping", ctx, mock.Anything, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return(nil, nil)

	var created []domain.Booking
	f.bookings.On("CreateBookings", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).([]domain.Booking)
	}).Return(nil)
	f.publisher.On("PublishJSON", ctx, "booking.created", mock.Anything).Return(nil)

	req := bookingRequest("10:00", "11:00", s1, s2)
	req.OriginalPrice = 1000.01
	req.FinalPrice = 1000.01
	req.AppliedCoupons = map[string]string{s2.ID.String(): "WEEKEND10"}

	_, err := f.service(true).CreateBooking(ctx, req)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 500.0, created[0].FinalPrice)
	assert.Equal(t, 500.01, created[1].FinalPrice)
	assert.Empty(t, created[0].CouponCode)
	assert.Equal(t, "WEEKEND10", created[1].CouponCode)
	assert.Equal(t, created[0].CreatedAt, created[1].CreatedAt)
}

func TestCreateBooking_StorageConflictAfterPrecheck(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")
	winner := existingBooking(s1.ID, "14:00:00", "15:00:00", domain.BookingConfirmed)

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return(nil, nil).Once()
	f.bookings.On("CreateBookings", ctx, mock.Anything).
		Return(fmt.Errorf("insert booking for station %s: %w", s1.ID, domain.ErrStorageConflict))
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
		Return([]domain.Booking{winner}, nil).Once()

	_, err := f.service(true).CreateBooking(ctx, bookingRequest("14:00", "15:00", s1))

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, winner.ID, conflict.Conflicts[0].ID)
	f.publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_PrecheckUnavailable(t *testing.T) {
	t.Run("strict mode fails the request", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := context.Background()
		s1 := newStation("Turf A")

		f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
		f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
		f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
			Return(nil, errors.New("connection refused"))

		_, err := f.service(true).CreateBooking(ctx, bookingRequest("14:00", "15:00", s1))

		assert.ErrorIs(t, err, domain.ErrValidatorUnavailable)
		f.bookings.AssertNotCalled(t, "CreateBookings", mock.Anything, mock.Anything)
	})

	t.Run("lenient mode defers to storage", func(t *testing.T) {
		f := newBookingFixture(t)
		ctx := context.Background()
		s1 := newStation("Turf A")

		f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
		f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
		f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).
			Return(nil, errors.New("connection refused"))
		f.bookings.On("CreateBookings", ctx, mock.Anything).Return(nil)
		f.publisher.On("PublishJSON", ctx, "booking.created", mock.Anything).Return(nil)

		_, err := f.service(false).CreateBooking(ctx, bookingRequest("14:00", "15:00", s1))
		assert.NoError(t, err)
	})
}

func TestCreateBooking_RazorpayOrder(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(knownCustomer, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return(nil, nil)
	f.bookings.On("CreateBookings", ctx, mock.MatchedBy(func(bs []domain.Booking) bool {
		return bs[0].PaymentMode == domain.PaymentRazorpay &&
			bs[0].PaymentStatus == domain.PaymentPending &&
			bs[0].PaymentTxnID == "order_Nx1"
	})).Return(nil)
	// publishing failures never fail a booking
	f.publisher.On("PublishJSON", ctx, "booking.created", mock.Anything).Return(errors.New("broker down"))

	req := bookingRequest("14:00", "15:00", s1)
	req.PaymentMode = "razorpay"
	req.OrderID = "order_Nx1"

	resp, err := f.service(true).CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentPending), resp.PaymentStatus)
}

func TestCreateBooking_InvalidInput(t *testing.T) {
	s1 := newStation("Turf A")

	tests := []struct {
		name  string
		tweak func(*services.CreateBookingRequest)
	}{
		{"no stations", func(r *services.CreateBookingRequest) { r.SelectedStations = nil }},
		{"bad station id", func(r *services.CreateBookingRequest) { r.SelectedStations = []string{"court-1"} }},
		{"bad date", func(r *services.CreateBookingRequest) { r.SelectedDate = "01/06/2024" }},
		{"end before start", func(r *services.CreateBookingRequest) { r.SelectedSlot = services.SelectedSlot{StartTime: "15:00", EndTime: "14:00"} }},
		{"zero length", func(r *services.CreateBookingRequest) { r.SelectedSlot = services.SelectedSlot{StartTime: "15:00", EndTime: "15:00"} }},
		{"online without order", func(r *services.CreateBookingRequest) { r.PaymentMode = "razorpay" }},
		{"unknown payment mode", func(r *services.CreateBookingRequest) { r.PaymentMode = "cheque" }},
		{"negative price", func(r *services.CreateBookingRequest) { r.FinalPrice = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			req := bookingRequest("14:00", "15:00", s1)
			tt.tweak(&req)

			_, err := f.service(true).CreateBooking(context.Background(), req)

			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestCreateBooking_UnknownStation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")

	f.stations.On("GetByID", ctx, s1.ID).Return(nil, &domain.NotFoundError{Resource: "station", ID: s1.ID.String()})

	_, err := f.service(true).CreateBooking(ctx, bookingRequest("14:00", "15:00", s1))

	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCreateBooking_NewCustomer(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")

	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.customers.On("FindByPhone", ctx, "+919876543210").Return(nil, &domain.NotFoundError{Resource: "customer", ID: "+919876543210"})
	f.customers.On("Create", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Name == "Asha" && c.Phone == "+919876543210"
	})).Return(nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, (*uuid.UUID)(nil)).Return(nil, nil)
	f.bookings.On("CreateBookings", ctx, mock.Anything).Return(nil)
	f.publisher.On("PublishJSON", ctx, "booking.created", mock.Anything).Return(nil)

	resp, err := f.service(true).CreateBooking(ctx, bookingRequest("14:00", "15:00", s1))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil.String(), resp.CustomerID)
}

func TestReschedule_IgnoresItself(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")
	own := existingBooking(s1.ID, "14:00:00", "15:00:00", domain.BookingConfirmed)

	f.bookings.On("GetByID", ctx, own.ID).Return(&own, nil)
	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, &own.ID).
		Return([]domain.Booking{own}, nil)
	f.bookings.On("Reschedule", ctx, own.ID, mock.Anything, mock.Anything).Return(nil)

	got, err := f.service(true).Reschedule(ctx, own.ID, services.RescheduleRequest{Date: "2024-06-01", StartTime: "14:30", EndTime: "15:30"})

	require.NoError(t, err)
	assert.Equal(t, "14:30:00-15:30:00", got.Interval().String())
}

func TestReschedule_Conflict(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	s1 := newStation("Turf A")
	own := existingBooking(s1.ID, "10:00:00", "11:00:00", domain.BookingConfirmed)
	other := existingBooking(s1.ID, "14:00:00", "15:00:00", domain.BookingConfirmed)

	f.bookings.On("GetByID", ctx, own.ID).Return(&own, nil)
	f.stations.On("GetByID", ctx, s1.ID).Return(s1, nil)
	f.bookings.On("FindActiveOverlapping", ctx, s1.ID, mock.Anything, mock.Anything, &own.ID).
		Return([]domain.Booking{other}, nil)

	_, err := f.service(true).Reschedule(ctx, own.ID, services.RescheduleRequest{Date: "2024-06-01", StartTime: "14:30", EndTime: "15:30"})

	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
	f.bookings.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed transition", func(t *testing.T) {
		f := newBookingFixture(t)
		b := existingBooking(uuid.New(), "10:00", "11:00", domain.BookingConfirmed)
		f.bookings.On("GetByID", ctx, b.ID).Return(&b, nil)
		f.bookings.On("UpdateStatus", ctx, b.ID, domain.BookingConfirmed, domain.BookingCancelled).Return(nil)

		got, err := f.service(true).UpdateStatus(ctx, b.ID, domain.BookingCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, got.Status)
	})

	t.Run("terminal status cannot be reactivated", func(t *testing.T) {
		f := newBookingFixture(t)
		b := existingBooking(uuid.New(), "10:00", "11:00", domain.BookingCancelled)
		f.bookings.On("GetByID", ctx, b.ID).Return(&b, nil)

		_, err := f.service(true).UpdateStatus(ctx, b.ID, domain.BookingConfirmed)
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.service(true).UpdateStatus(ctx, uuid.New(), "archived")
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}
