package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no-show"
)

// ActiveStatuses are the statuses that hold a slot.
var ActiveStatuses = []BookingStatus{BookingConfirmed, BookingInProgress}

// InactiveStatuses may be purged by administrative cleanup.
var InactiveStatuses = []BookingStatus{BookingCompleted, BookingCancelled, BookingNoShow}

func (s BookingStatus) IsActive() bool {
	return s == BookingConfirmed || s == BookingInProgress
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingConfirmed:  {BookingInProgress, BookingCancelled, BookingNoShow},
	BookingInProgress: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether a booking may move from s to next.
// Terminal statuses never move, so a freed slot is never re-taken silently.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, to := range allowedTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type PaymentMode string

const (
	PaymentVenue    PaymentMode = "venue"
	PaymentRazorpay PaymentMode = "razorpay"
)

func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch PaymentMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentVenue, "cash", "venue_payment":
		return PaymentVenue, true
	case PaymentRazorpay, "online":
		return PaymentRazorpay, true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentPaid        PaymentStatus = "paid"
	PaymentFailed      PaymentStatus = "failed"
)

type Booking struct {
	ID             uuid.UUID
	StationID      uuid.UUID
	CustomerID     uuid.UUID
	Date           time.Time
	StartTime      TimeOfDay
	EndTime        TimeOfDay
	Status         BookingStatus
	PaymentMode    PaymentMode
	PaymentStatus  PaymentStatus
	PaymentTxnID   string
	PaymentRef     string
	OriginalPrice  float64
	DiscountAmount float64
	FinalPrice     float64
	CouponCode     string
	CreatedAt      time.Time
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// SlotKey identifies the exact slot a booking occupies.
type SlotKey struct {
	StationID uuid.UUID
	Date      string
	Start     TimeOfDay
	End       TimeOfDay
}

func (b *Booking) SlotKey() SlotKey {
	return SlotKey{
		StationID: b.StationID,
		Date:      FormatDate(b.Date),
		Start:     b.StartTime,
		End:       b.EndTime,
	}
}

// PendingPayment groups the bookings created under one gateway order.
type PendingPayment struct {
	OrderID    string
	BookingIDs []uuid.UUID
	CreatedAt  time.Time
}
