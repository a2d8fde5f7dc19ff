package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/ports"
)

type DedupResult struct {
	Processed         int      `json:"processed"`
	DuplicatesFound   int      `json:"duplicatesFound"`
	DuplicatesDeleted int      `json:"duplicatesDeleted"`
	DuplicateGroups   int      `json:"duplicateGroups"`
	FailedGroups      int      `json:"failedGroups"`
	DeletedBookingIDs []string `json:"deletedBookingIds"`
}

type ReconcileResult struct {
	Processed    int `json:"processed"`
	Successful   int `json:"successful"`
	Failed       int `json:"failed"`
	StillPending int `json:"stillPending"`
	LookupErrors int `json:"lookupErrors"`
}

// DuplicateGroup is a set of active bookings holding the identical slot.
type DuplicateGroup struct {
	Key    domain.SlotKey
	Keep   domain.Booking
	Remove []domain.Booking
}

type ReconcilerConfig struct {
	PaymentExpiry time.Duration
	BatchSize     int
}

type Reconciler struct {
	bookingRepo ports.BookingRepository
	gateway     ports.PaymentGateway
	publisher   ports.EventPublisher
	logger      *zap.Logger
	cfg         ReconcilerConfig
	now         func() time.Time
}

func NewReconciler(bookingRepo ports.BookingRepository, gateway ports.PaymentGateway, publisher ports.EventPublisher, logger *zap.Logger, cfg ReconcilerConfig) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PaymentExpiry <= 0 {
		cfg.PaymentExpiry = 30 * time.Minute
	}
	return &Reconciler{
		bookingRepo: bookingRepo,
		gateway:     gateway,
		publisher:   publisher,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// FindDuplicateGroups groups active bookings by (station, date, start, end).
// Within a group the oldest booking is kept; equal creation times fall back
// to the smaller id.
func FindDuplicateGroups(bookings []domain.Booking) []DuplicateGroup {
	active := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.IsActive() {
			active = append(active, b)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		}
		return active[i].ID.String() < active[j].ID.String()
	})

	index := make(map[domain.SlotKey]int)
	var groups []DuplicateGroup
	for _, b := range active {
		key := b.SlotKey()
		if i, ok := index[key]; ok {
			groups[i].Remove = append(groups[i].Remove, b)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, DuplicateGroup{Key: key, Keep: b})
	}

	dups := groups[:0]
	for _, g := range groups {
		if len(g.Remove) > 0 {
			dups = append(dups, g)
		}
	}
	return dups
}

// DuplicateReport lists duplicate groups without deleting anything.
func (r *Reconciler) DuplicateReport(ctx context.Context) ([]DuplicateGroup, int, error) {
	bookings, err := r.bookingRepo.ListActiveByCreation(ctx)
	if err != nil {
		return nil, 0, &domain.UpstreamError{Op: "list active bookings", Err: err}
	}
	return FindDuplicateGroups(bookings), len(bookings), nil
}

// CleanupDuplicates deletes every duplicate except the kept booking of each
// group. A failing group is logged and skipped. Deletes name explicit ids,
// so rows created after the scan are never touched.
func (r *Reconciler) CleanupDuplicates(ctx context.Context) (DedupResult, error) {
	groups, processed, err := r.DuplicateReport(ctx)
	if err != nil {
		return DedupResult{}, err
	}

	res := DedupResult{
		Processed:         processed,
		DuplicateGroups:   len(groups),
		DeletedBookingIDs: []string{},
	}

	for _, g := range groups {
		res.DuplicatesFound += len(g.Remove)

		ids := make([]uuid.UUID, 0, len(g.Remove))
		for _, b := range g.Remove {
			ids = append(ids, b.ID)
		}

		deleted, err := r.bookingRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			res.FailedGroups++
			r.logger.Error("delete duplicate group failed",
				zap.String("station_id", g.Key.StationID.String()),
				zap.String("date", g.Key.Date),
				zap.Stringer("start", g.Key.Start),
				zap.Stringer("end", g.Key.End),
				zap.String("kept_id", g.Keep.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if len(deleted) < len(ids) {
			r.logger.Warn("duplicate rows changed before delete",
				zap.String("kept_id", g.Keep.ID.String()),
				zap.Int("requested", len(ids)),
				zap.Int("deleted", len(deleted)),
			)
		}
		res.DuplicatesDeleted += len(deleted)
		for _, id := range deleted {
			res.DeletedBookingIDs = append(res.DeletedBookingIDs, id.String())
		}
	}

	if res.DuplicatesDeleted > 0 {
		r.logger.Info("duplicate bookings removed",
			zap.Int("groups", res.DuplicateGroups),
			zap.Int("deleted", res.DuplicatesDeleted),
			zap.Strings("ids", res.DeletedBookingIDs),
		)
		r.publish(ctx, "booking.duplicates_removed", res)
	}

	return res, nil
}

// ReconcilePayments re-checks orders whose payment is still pending.
// Resolution only touches rows still pending, so repeated or overlapping
// runs leave resolved orders unchanged.
func (r *Reconciler) ReconcilePayments(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	pending, err := r.bookingRepo.ListPendingPayments(ctx, r.cfg.BatchSize)
	if err != nil {
		return res, &domain.UpstreamError{Op: "list pending payments", Err: err}
	}

	for _, p := range pending {
		res.Processed++

		status, ref, err := r.gateway.OrderStatus(ctx, p.OrderID)
		if err != nil {
			res.LookupErrors++
			r.logger.Warn("payment status lookup failed", zap.String("order_id", p.OrderID), zap.Error(err))
			continue
		}

		if status == domain.PaymentPending || status == "" {
			if r.now().Sub(p.CreatedAt) < r.cfg.PaymentExpiry {
				res.StillPending++
				continue
			}
			status, ref = domain.PaymentFailed, "expired"
		}

		n, err := r.bookingRepo.ResolvePayment(ctx, p.OrderID, status, ref)
		if err != nil {
			res.LookupErrors++
			r.logger.Error("resolve payment failed", zap.String("order_id", p.OrderID), zap.Error(err))
			continue
		}
		if n == 0 {
			continue
		}

		switch status {
		case domain.PaymentPaid:
			res.Successful++
		case domain.PaymentFailed:
			res.Failed++
		}
		r.publish(ctx, "booking.payment_resolved", map[string]any{
			"order_id": p.OrderID,
			"status":   status,
			"bookings": n,
		})
	}

	return res, nil
}

// ApplyPaymentEvent resolves an order from a gateway event. Replayed events
// are no-ops.
//
// A failed event describes one payment attempt, not the order. The order is
// only failed when the gateway no longer reports it as payable; otherwise it
// stays pending until it is captured or expires in ReconcilePayments.
func (r *Reconciler) ApplyPaymentEvent(ctx context.Context, eventID, orderID, paymentRef string, status domain.PaymentStatus) error {
	if status != domain.PaymentPaid && status != domain.PaymentFailed {
		return &domain.ValidationError{Field: "status", Message: "payment events must be paid or failed"}
	}

	if status == domain.PaymentFailed {
		orderStatus, ref, err := r.gateway.OrderStatus(ctx, orderID)
		if err != nil {
			return &domain.UpstreamError{Op: "payment status lookup", Err: err}
		}
		switch orderStatus {
		case domain.PaymentPending, "":
			r.logger.Info("payment attempt failed, order still payable",
				zap.String("order_id", orderID), zap.String("payment_id", paymentRef))
			if _, err := r.bookingRepo.MarkEventProcessed(ctx, eventID, orderID); err != nil {
				return &domain.UpstreamError{Op: "record payment event", Err: err}
			}
			return nil
		case domain.PaymentPaid:
			status, paymentRef = domain.PaymentPaid, ref
		}
	}

	n, err := r.bookingRepo.ResolvePayment(ctx, orderID, status, paymentRef)
	if err != nil {
		return &domain.UpstreamError{Op: "resolve payment", Err: err}
	}

	fresh, err := r.bookingRepo.MarkEventProcessed(ctx, eventID, orderID)
	if err != nil {
		return &domain.UpstreamError{Op: "record payment event", Err: err}
	}
	if !fresh {
		r.logger.Debug("payment event already processed", zap.String("event_id", eventID))
		return nil
	}

	if n > 0 {
		r.publish(ctx, "booking.payment_resolved", map[string]any{
			"order_id": orderID,
			"status":   status,
			"bookings": n,
		})
	}
	return nil
}

// PurgeInactive deletes completed, cancelled and no-show bookings dated
// before the cutoff. Active bookings are never deleted here.
func (r *Reconciler) PurgeInactive(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.bookingRepo.PurgeInactiveBefore(ctx, before)
	if err != nil {
		return 0, &domain.UpstreamError{Op: "purge inactive bookings", Err: err}
	}
	r.logger.Info("inactive bookings purged", zap.String("before", domain.FormatDate(before)), zap.Int64("deleted", n))
	return n, nil
}

func (r *Reconciler) publish(ctx context.Context, key string, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishJSON(ctx, key, payload); err != nil {
		r.logger.Warn("publish event failed", zap.String("key", key), zap.Error(err))
	}
}
