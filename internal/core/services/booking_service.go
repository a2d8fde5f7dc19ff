package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/ports"
)

type CustomerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type SelectedSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type CreateBookingRequest struct {
	CustomerInfo     CustomerInfo      `json:"customerInfo"`
	SelectedStations []string          `json:"selectedStations"`
	SelectedDate     string            `json:"selectedDate"`
	SelectedSlot     SelectedSlot      `json:"selectedSlot"`
	OriginalPrice    float64           `json:"originalPrice"`
	DiscountAmount   float64           `json:"discount"`
	FinalPrice       float64           `json:"finalPrice"`
	AppliedCoupons   map[string]string `json:"appliedCoupons"`
	OrderID          string            `json:"orderId"`
	PaymentMode      string            `json:"payment_mode"`
}

type CreateBookingResponse struct {
	BookingID     string   `json:"bookingId"`
	BookingIDs    []string `json:"bookingIds"`
	CustomerID    string   `json:"customerId"`
	PaymentStatus string   `json:"paymentStatus"`
}

type RescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BookingOptions struct {
	// StrictPrecheck turns a failed application-layer conflict check into a
	// hard error instead of deferring to the storage constraint.
	StrictPrecheck bool
}

type BookingService struct {
	stationRepo  ports.StationRepository
	customerRepo ports.CustomerRepository
	bookingRepo  ports.BookingRepository
	validator    *OverlapValidator
	publisher    ports.EventPublisher
	logger       *zap.Logger
	opts         BookingOptions
	now          func() time.Time
}

func NewBookingService(
	stationRepo ports.StationRepository,
	customerRepo ports.CustomerRepository,
	bookingRepo ports.BookingRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
	opts BookingOptions,
) *BookingService {
	return &BookingService{
		stationRepo:  stationRepo,
		customerRepo: customerRepo,
		bookingRepo:  bookingRepo,
		validator:    NewOverlapValidator(bookingRepo),
		publisher:    publisher,
		logger:       logger,
		opts:         opts,
		now:          time.Now,
	}
}

func (s *BookingService) Validator() *OverlapValidator {
	return s.validator
}

// CreateBooking books one interval on every selected station for one
// customer. Either all rows are created or none.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	stationIDs, err := parseStationIDs(req.SelectedStations)
	if err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(req.SelectedDate)
	if err != nil {
		return nil, &domain.ValidationError{Field: "selectedDate", Message: err.Error()}
	}

	iv, err := domain.ParseInterval(req.SelectedSlot.StartTime, req.SelectedSlot.EndTime)
	if err != nil {
		return nil, err
	}

	mode, ok := domain.ParsePaymentMode(req.PaymentMode)
	if !ok {
		return nil, &domain.ValidationError{Field: "payment_mode", Message: fmt.Sprintf("unsupported payment mode %q", req.PaymentMode)}
	}
	if mode == domain.PaymentRazorpay && strings.TrimSpace(req.OrderID) == "" {
		return nil, &domain.ValidationError{Field: "orderId", Message: "online payments require an order id"}
	}
	if req.OriginalPrice < 0 || req.DiscountAmount < 0 || req.FinalPrice < 0 {
		return nil, &domain.ValidationError{Field: "finalPrice", Message: "prices must not be negative"}
	}

	stations := make([]*domain.Station, 0, len(stationIDs))
	for _, id := range stationIDs {
		station, err := s.stationRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}

	customer, err := s.resolveCustomer(ctx, req.CustomerInfo)
	if err != nil {
		return nil, err
	}

	for _, station := range stations {
		if err := s.precheck(ctx, station, date, iv); err != nil {
			return nil, err
		}
	}

	bookings := s.buildBookings(req, stations, customer.ID, date, iv, mode)

	if err := s.bookingRepo.CreateBookings(ctx, bookings); err != nil {
		if errors.Is(err, domain.ErrStorageConflict) {
			s.logger.Warn("storage rejected booking after precheck passed",
				zap.String("date", req.SelectedDate),
				zap.Stringer("interval", iv),
				zap.Strings("stations", req.SelectedStations),
			)
			return nil, s.describeStorageConflict(ctx, stations, date, iv)
		}
		return nil, &domain.UpstreamError{Op: "create bookings", Err: err}
	}

	resp := &CreateBookingResponse{
		BookingID:     bookings[0].ID.String(),
		CustomerID:    customer.ID.String(),
		PaymentStatus: string(bookings[0].PaymentStatus),
	}
	for _, b := range bookings {
		resp.BookingIDs = append(resp.BookingIDs, b.ID.String())
	}

	s.publish(ctx, "booking.created", map[string]any{
		"booking_ids": resp.BookingIDs,
		"customer_id": resp.CustomerID,
		"date":        req.SelectedDate,
		"start_time":  iv.Start.String(),
		"end_time":    iv.End.String(),
		"order_id":    req.OrderID,
	})

	return resp, nil
}

// precheck runs the application-layer overlap check for one station.
func (s *BookingService) precheck(ctx context.Context, station *domain.Station, date time.Time, iv domain.Interval) error {
	res, err := s.validator.Check(ctx, ConflictQuery{StationID: station.ID, Date: date, Interval: iv})
	if err != nil {
		if errors.Is(err, domain.ErrValidatorUnavailable) && !s.opts.StrictPrecheck {
			s.logger.Warn("conflict precheck failed, deferring to storage constraint",
				zap.String("station_id", station.ID.String()),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	if res.Conflict {
		return &domain.ConflictError{
			StationID:   station.ID,
			StationName: station.Name,
			Date:        domain.FormatDate(date),
			Requested:   iv,
			Conflicts:   res.Conflicts,
		}
	}
	return nil
}

// describeStorageConflict re-reads current state to name what won the race.
func (s *BookingService) describeStorageConflict(ctx context.Context, stations []*domain.Station, date time.Time, iv domain.Interval) error {
	for _, station := range stations {
		res, err := s.validator.Check(ctx, ConflictQuery{StationID: station.ID, Date: date, Interval: iv})
		if err == nil && res.Conflict {
			return &domain.ConflictError{
				StationID:   station.ID,
				StationName: station.Name,
				Date:        domain.FormatDate(date),
				Requested:   iv,
				Conflicts:   res.Conflicts,
			}
		}
	}

	return &domain.ConflictError{
		StationID:   stations[0].ID,
		StationName: stations[0].Name,
		Date:        domain.FormatDate(date),
		Requested:   iv,
	}
}

func (s *BookingService) resolveCustomer(ctx context.Context, info CustomerInfo) (*domain.Customer, error) {
	if id := strings.TrimSpace(info.ID); id != "" {
		customerID, err := uuid.Parse(id)
		if err != nil {
			return nil, &domain.ValidationError{Field: "customerInfo.id", Message: "invalid customer id"}
		}
		return s.customerRepo.GetByID(ctx, customerID)
	}

	phone := normalizePhone(info.Phone)
	if phone == "" {
		return nil, &domain.ValidationError{Field: "customerInfo.phone", Message: "phone is required"}
	}

	existing, err := s.customerRepo.FindByPhone(ctx, phone)
	if err == nil {
		return existing, nil
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "customerInfo.name", Message: "name is required for new customers"}
	}

	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		Email:     strings.TrimSpace(info.Email),
		CreatedAt: s.now().UTC(),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *BookingService) buildBookings(req CreateBookingRequest, stations []*domain.Station, customerID uuid.UUID, date time.Time, iv domain.Interval, mode domain.PaymentMode) []domain.Booking {
	n := len(stations)
	original := splitAmount(req.OriginalPrice, n)
	discount := splitAmount(req.DiscountAmount, n)
	final := splitAmount(req.FinalPrice, n)

	paymentStatus := domain.PaymentNotRequired
	if mode == domain.PaymentRazorpay {
		paymentStatus = domain.PaymentPending
	}

	createdAt := s.now().UTC()
	bookings := make([]domain.Booking, 0, n)
	for i, station := range stations {
		bookings = append(bookings, domain.Booking{
			ID:             uuid.New(),
			StationID:      station.ID,
			CustomerID:     customerID,
			Date:           date,
			StartTime:      iv.Start,
			EndTime:        iv.End,
			Status:         domain.BookingConfirmed,
			PaymentMode:    mode,
			PaymentStatus:  paymentStatus,
			PaymentTxnID:   strings.TrimSpace(req.OrderID),
			OriginalPrice:  original[i],
			DiscountAmount: discount[i],
			FinalPrice:     final[i],
			CouponCode:     req.AppliedCoupons[station.ID.String()],
			CreatedAt:      createdAt,
		})
	}
	return bookings
}

// Reschedule moves an active booking to a new date/interval, ignoring the
// booking itself during the conflict check.
func (s *BookingService) Reschedule(ctx context.Context, bookingID uuid.UUID, req RescheduleRequest) (*domain.Booking, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, &domain.ValidationError{Field: "date", Message: err.Error()}
	}
	iv, err := domain.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.IsActive() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("cannot reschedule a %s booking", booking.Status)}
	}

	station, err := s.stationRepo.GetByID(ctx, booking.StationID)
	if err != nil {
		return nil, err
	}

	res, err := s.validator.Check(ctx, ConflictQuery{StationID: station.ID, Date: date, Interval: iv, ExcludeID: &booking.ID})
	if err != nil {
		if !errors.Is(err, domain.ErrValidatorUnavailable) || s.opts.StrictPrecheck {
			return nil, err
		}
		s.logger.Warn("conflict precheck failed, deferring to storage constraint",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}
	if res.Conflict {
		return nil, &domain.ConflictError{
			StationID:   station.ID,
			StationName: station.Name,
			Date:        domain.FormatDate(date),
			Requested:   iv,
			Conflicts:   res.Conflicts,
		}
	}

	if err := s.bookingRepo.Reschedule(ctx, booking.ID, date, iv); err != nil {
		if errors.Is(err, domain.ErrStorageConflict) {
			return nil, &domain.ConflictError{
				StationID:   station.ID,
				StationName: station.Name,
				Date:        domain.FormatDate(date),
				Requested:   iv,
			}
		}
		return nil, err
	}

	booking.Date = date
	booking.StartTime = iv.Start
	booking.EndTime = iv.End
	return booking, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, next domain.BookingStatus) (*domain.Booking, error) {
	if !next.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", next)}
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(next) {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("cannot move booking from %s to %s", booking.Status, next)}
	}

	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status, next); err != nil {
		return nil, err
	}

	booking.Status = next
	return booking, nil
}

// CheckConflict exposes the validator for the diagnostics endpoint.
func (s *BookingService) CheckConflict(ctx context.Context, q ConflictQuery) (ConflictResult, error) {
	if _, err := s.stationRepo.GetByID(ctx, q.StationID); err != nil {
		return ConflictResult{}, err
	}
	return s.validator.Check(ctx, q)
}

func (s *BookingService) publish(ctx context.Context, key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(ctx, key, payload); err != nil {
		s.logger.Warn("publish event failed", zap.String("key", key), zap.Error(err))
	}
}

func parseStationIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, &domain.ValidationError{Field: "selectedStations", Message: "no stations selected"}
	}

	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, &domain.ValidationError{Field: "selectedStations", Message: fmt.Sprintf("invalid station id %q", r)}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func normalizePhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitAmount divides total into n parts in paise; the last part absorbs
// rounding so the parts always sum to total.
func splitAmount(total float64, n int) []float64 {
	parts := make([]float64, n)
	if n == 0 {
		return parts
	}
	cents := int64(math.Round(total * 100))
	each := cents / int64(n)
	for i := range parts {
		parts[i] = float64(each) / 100
	}
	parts[n-1] = float64(cents-each*int64(n-1)) / 100
	return parts
}
