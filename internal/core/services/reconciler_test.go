package services_test

import (
	"context"
	"errors"
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

var (
	t0 = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Second)
	t2 = t0.Add(2 * time.Second)
)

func slotBooking(stationID uuid.UUID, start, end string, created time.Time) domain.Booking {
	b := existingBooking(stationID, start, end, domain.BookingConfirmed)
	b.CreatedAt = created
	return b
}

func TestFindDuplicateGroups_KeepsEarliest(t *testing.T) {
	s1 := uuid.New()
	b0 := slotBooking(s1, "18:00", "19:00", t0)
	b1 := slotBooking(s1, "18:00", "19:00", t1)
	b2 := slotBooking(s1, "18:00", "19:00", t2)
	other := slotBooking(s1, "19:00", "20:00", t0)

	groups := services.FindDuplicateGroups([]domain.Booking{b2, other, b0, b1})

	require.Len(t, groups, 1)
	assert.Equal(t, b0.ID, groups[0].Keep.ID)
	require.Len(t, groups[0].Remove, 2)
	assert.Equal(t, b1.ID, groups[0].Remove[0].ID)
	assert.Equal(t, b2.ID, groups[0].Remove[1].ID)
}

func TestFindDuplicateGroups_TieBreakOnID(t *testing.T) {
	s1 := uuid.New()
	a := slotBooking(s1, "18:00", "19:00", t0)
	b := slotBooking(s1, "18:00", "19:00", t0)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	groups := services.FindDuplicateGroups([]domain.Booking{b, a})

	require.Len(t, groups, 1)
	assert.Equal(t, a.ID, groups[0].Keep.ID)
}

func TestFindDuplicateGroups_IgnoresInactive(t *testing.T) {
	s1 := uuid.New()
	active := slotBooking(s1, "18:00", "19:00", t1)
	cancelled := slotBooking(s1, "18:00", "19:00", t0)
	cancelled.Status = domain.BookingCancelled

	assert.Empty(t, services.FindDuplicateGroups([]domain.Booking{active, cancelled}))
}

func newReconciler(t *testing.T) (*services.Reconciler, *mocks.BookingRepository, *mocks.PaymentGateway, *mocks.EventPublisher) {
	repo := mocks.NewBookingRepository(t)
	gateway := mocks.NewPaymentGateway(t)
	publisher := mocks.NewEventPublisher(t)
	r := services.NewReconciler(repo, gateway, publisher, zap.NewNop(), services.ReconcilerConfig{PaymentExpiry: 30 * time.Minute, BatchSize: 10})
	return r, repo, gateway, publisher
}

func TestCleanupDuplicates_DeletesAllButEarliest(t *testing.T) {
	r, repo, _, publisher := newReconciler(t)
	ctx := context.Background()
	s1 := uuid.New()
	b0 := slotBooking(s1, "18:00", "19:00", t0)
	b1 := slotBooking(s1, "18:00", "19:00", t1)
	b2 := slotBooking(s1, "18:00", "19:00", t2)

	repo.On("ListActiveByCreation", ctx).Return([]domain.Booking{b0, b1, b2}, nil).Once()
	repo.On("DeleteByIDs", ctx, []uuid.UUID{b1.ID, b2.ID}).Return([]uuid.UUID{b1.ID, b2.ID}, nil).Once()
	publisher.On("PublishJSON", ctx, "booking.duplicates_removed", mock.Anything).Return(nil).Once()

	res, err := r.CleanupDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.DuplicatesFound)
	assert.Equal(t, 2, res.DuplicatesDeleted)
	assert.Equal(t, 1, res.DuplicateGroups)
	assert.ElementsMatch(t, []string{b1.ID.String(), b2.ID.String()}, res.DeletedBookingIDs)

	// second pass sees only the survivor and deletes nothing
	repo.On("ListActiveByCreation", ctx).Return([]domain.Booking{b0}, nil).Once()

	res, err = r.CleanupDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DuplicatesDeleted)
	assert.NotNil(t, res.DeletedBookingIDs)
}

func TestCleanupDuplicates_GroupFailureDoesNotAbort(t *testing.T) {
	r, repo, _, publisher := newReconciler(t)
	ctx := context.Background()
	s1, s2 := uuid.New(), uuid.New()
	a0 := slotBooking(s1, "18:00", "19:00", t0)
	a1 := slotBooking(s1, "18:00", "19:00", t1)
	c0 := slotBooking(s2, "09:00", "10:00", t0)
	c1 := slotBooking(s2, "09:00", "10:00", t2)

	repo.On("ListActiveByCreation", ctx).Return([]domain.Booking{a0, c0, a1, c1}, nil)
	repo.On("DeleteByIDs", ctx, []uuid.UUID{a1.ID}).Return(nil, errors.New("deadlock detected"))
	repo.On("DeleteByIDs", ctx, []uuid.UUID{c1.ID}).Return([]uuid.UUID{c1.ID}, nil)
	publisher.On("PublishJSON", ctx, "booking.duplicates_removed", mock.Anything).Return(nil)

	res, err := r.CleanupDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DuplicateGroups)
	assert.Equal(t, 1, res.FailedGroups)
	assert.Equal(t, 1, res.DuplicatesDeleted)
	assert.Equal(t, []string{c1.ID.String()}, res.DeletedBookingIDs)
}

func TestCleanupDuplicates_ReportsOnlyDeletedRows(t *testing.T) {
	r, repo, _, publisher := newReconciler(t)
	ctx := context.Background()
	s1 := uuid.New()
	b0 := slotBooking(s1, "18:00", "19:00", t0)
	b1 := slotBooking(s1, "18:00", "19:00", t1)
	b2 := slotBooking(s1, "18:00", "19:00", t2)

	// b2 was cancelled between the scan and the delete
	repo.On("ListActiveByCreation", ctx).Return([]domain.Booking{b0, b1, b2}, nil)
	repo.On("DeleteByIDs", ctx, []uuid.UUID{b1.ID, b2.ID}).Return([]uuid.UUID{b1.ID}, nil)
	publisher.On("PublishJSON", ctx, "booking.duplicates_removed", mock.Anything).Return(nil)

	res, err := r.CleanupDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DuplicatesFound)
	assert.Equal(t, 1, res.DuplicatesDeleted)
	assert.Equal(t, []string{b1.ID.String()}, res.DeletedBookingIDs)
	assert.Len(t, res.DeletedBookingIDs, res.DuplicatesDeleted)
}

func TestCleanupDuplicates_ListFailure(t *testing.T) {
	r, repo, _, _ := newReconciler(t)
	ctx := context.Background()

	repo.On("ListActiveByCreation", ctx).Return(nil, errors.New("timeout"))

	_, err := r.CleanupDuplicates(ctx)
	var upErr *domain.UpstreamError
	assert.ErrorAs(t, err, &upErr)
}

func TestReconcilePayments(t *testing.T) {
	r, repo, gateway, publisher := newReconciler(t)
	ctx := context.Background()
	now := time.Now()

	repo.On("ListPendingPayments", ctx, 10).Return([]domain.PendingPayment{
		{OrderID: "order_paid", CreatedAt: now.Add(-5 * time.Minute)},
		{OrderID: "order_young", CreatedAt: now.Add(-5 * time.Minute)},
		{OrderID: "order_stale", CreatedAt: now.Add(-2 * time.Hour)},
		{OrderID: "order_err", CreatedAt: now.Add(-5 * time.Minute)},
		{OrderID: "order_raced", CreatedAt: now.Add(-5 * time.Minute)},
	}, nil)

	gateway.On("OrderStatus", ctx, "order_paid").Return(domain.PaymentPaid, "pay_1", nil)
	gateway.On("OrderStatus", ctx, "order_young").Return(domain.PaymentPending, "", nil)
	gateway.On("OrderStatus", ctx, "order_stale").Return(domain.PaymentPending, "", nil)
	gateway.On("OrderStatus", ctx, "order_err").Return(domain.PaymentStatus(""), "", errors.New("gateway timeout"))
	gateway.On("OrderStatus", ctx, "order_raced").Return(domain.PaymentPaid, "pay_2", nil)

	repo.On("ResolvePayment", ctx, "order_paid", domain.PaymentPaid, "pay_1").Return(int64(2), nil)
	repo.On("ResolvePayment", ctx, "order_stale", domain.PaymentFailed, "expired").Return(int64(1), nil)
	// already resolved by the payment consumer
	repo.On("ResolvePayment", ctx, "order_raced", domain.PaymentPaid, "pay_2").Return(int64(0), nil)

	publisher.On("PublishJSON", ctx, "booking.payment_resolved", mock.Anything).Return(nil).Twice()

	res, err := r.ReconcilePayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.ReconcileResult{
		Processed:    5,
		Successful:   1,
		Failed:       1,
		StillPending: 1,
		LookupErrors: 1,
	}, res)
}

func TestApplyPaymentEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh event", func(t *testing.T) {
		r, repo, _, publisher := newReconciler(t)
		repo.On("ResolvePayment", ctx, "order_1", domain.PaymentPaid, "pay_1").Return(int64(1), nil)
		repo.On("MarkEventProcessed", ctx, "evt_1", "order_1").Return(true, nil)
		publisher.On("PublishJSON", ctx, "booking.payment_resolved", mock.Anything).Return(nil)

		assert.NoError(t, r.ApplyPaymentEvent(ctx, "evt_1", "order_1", "pay_1", domain.PaymentPaid))
	})

	t.Run("replayed event", func(t *testing.T) {
		r, repo, _, publisher := newReconciler(t)
		repo.On("ResolvePayment", ctx, "order_1", domain.PaymentPaid, "pay_1").Return(int64(0), nil)
		repo.On("MarkEventProcessed", ctx, "evt_1", "order_1").Return(false, nil)

		assert.NoError(t, r.ApplyPaymentEvent(ctx, "evt_1", "order_1", "pay_1", domain.PaymentPaid))
		publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending is not an event outcome", func(t *testing.T) {
		r, _, _, _ := newReconciler(t)
		err := r.ApplyPaymentEvent(ctx, "evt_1", "order_1", "pay_1", domain.PaymentPending)
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

// orderState mimics ResolvePayment's guard: only pending orders change, and a
// failed order cancels its active bookings.
type orderState struct {
	payment domain.PaymentStatus
	booking domain.BookingStatus
}

func (o *orderState) resolve(_ context.Context, _ string, status domain.PaymentStatus, _ string) (int64, error) {
	if o.payment != domain.PaymentPending {
		return 0, nil
	}
	o.payment = status
	if status == domain.PaymentFailed {
		o.booking = domain.BookingCancelled
	}
	return 1, nil
}

func TestApplyPaymentEvent_FailedAttemptThenCapture(t *testing.T) {
	r, repo, gateway, publisher := newReconciler(t)
	ctx := context.Background()
	order := &orderState{payment: domain.PaymentPending, booking: domain.BookingConfirmed}

	gateway.On("OrderStatus", ctx, "order_1").Return(domain.PaymentPending, "", nil).Once()
	repo.On("MarkEventProcessed", ctx, mock.Anything, "order_1").Return(true, nil)
	repo.On("ResolvePayment", ctx, "order_1", mock.Anything, mock.Anything).Return(order.resolve)
	publisher.On("PublishJSON", ctx, "booking.payment_resolved", mock.Anything).Return(nil).Once()

	require.NoError(t, r.ApplyPaymentEvent(ctx, "evt_fail", "order_1", "pay_1", domain.PaymentFailed))
	assert.Equal(t, domain.PaymentPending, order.payment)
	assert.Equal(t, domain.BookingConfirmed, order.booking)

	require.NoError(t, r.ApplyPaymentEvent(ctx, "evt_capture", "order_1", "pay_2", domain.PaymentPaid))
	assert.Equal(t, domain.PaymentPaid, order.payment)
	assert.Equal(t, domain.BookingConfirmed, order.booking)
	repo.AssertNotCalled(t, "ResolvePayment", ctx, "order_1", domain.PaymentFailed, mock.Anything)
}

func TestApplyPaymentEvent_FailedAttempt(t *testing.T) {
	ctx := context.Background()

	t.Run("order already paid resolves as paid", func(t *testing.T) {
		r, repo, gateway, publisher := newReconciler(t)
		gateway.On("OrderStatus", ctx, "order_1").Return(domain.PaymentPaid, "pay_2", nil)
		repo.On("ResolvePayment", ctx, "order_1", domain.PaymentPaid, "pay_2").Return(int64(1), nil)
		repo.On("MarkEventProcessed", ctx, "evt_1", "order_1").Return(true, nil)
		publisher.On("PublishJSON", ctx, "booking.payment_resolved", mock.Anything).Return(nil)

		assert.NoError(t, r.ApplyPaymentEvent(ctx, "evt_1", "order_1", "pay_1", domain.PaymentFailed))
	})

	t.Run("gateway lookup failure is retried", func(t *testing.T) {
		r, _, gateway, _ := newReconciler(t)
		gateway.On("OrderStatus", ctx, "order_1").Return(domain.PaymentStatus(""), "", errors.New("gateway timeout"))

		err := r.ApplyPaymentEvent(ctx, "evt_1", "order_1", "pay_1", domain.PaymentFailed)
		var upErr *domain.UpstreamError
		assert.ErrorAs(t, err, &upErr)
	})
}

func TestPurgeInactive(t *testing.T) {
	r, repo, _, _ := newReconciler(t)
	ctx := context.Background()
	before, _ := domain.ParseDate("2024-01-01")

	repo.On("PurgeInactiveBefore", ctx, before).Return(int64(7), nil)

	n, err := r.PurgeInactive(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
