package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/turf45/courtbook/internal/core/domain"
)

const bookingColumns = `id, station_id, customer_id, booking_date::text, start_time::text, end_time::text,
	status, payment_mode, payment_status, payment_txn_id, payment_ref,
	original_price, discount_amount, final_price, coupon_code, created_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var date string
	err := row.Scan(
		&b.ID,
		&b.StationID,
		&b.CustomerID,
		&date,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.PaymentMode,
		&b.PaymentStatus,
		&b.PaymentTxnID,
		&b.PaymentRef,
		&b.OriginalPrice,
		&b.DiscountAmount,
		&b.FinalPrice,
		&b.CouponCode,
		&b.CreatedAt,
	)
	if err != nil {
		return b, err
	}

	b.Date, err = domain.ParseDate(date)
	return b, err
}

func collectBookings(rows *sql.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// isOverlapViolation reports whether err is the storage layer refusing an
// overlapping or duplicate active booking.
func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23P01" || pqErr.Code == "23505"
}

func activeStatusArgs() []string {
	return statusStrings(domain.ActiveStatuses)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *BookingRepository) FindActiveOverlapping(ctx context.Context, stationID uuid.UUID, date time.Time, iv domain.Interval, excludeID *uuid.UUID) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE station_id = $1
		AND booking_date = $2::date
		AND status = ANY($3)
		AND start_time < $5::time
		AND $4::time < end_time
		AND ($6::uuid IS NULL OR id <> $6::uuid)
	ORDER BY start_time
	`

	var exclude any
	if excludeID != nil {
		exclude = excludeID.String()
	}

	rows, err := r.db.QueryContext(ctx, query, stationID, domain.FormatDate(date), pq.Array(activeStatusArgs()), iv.Start, iv.End, exclude)
	if err != nil {
		return nil, fmt.Errorf("query overlapping bookings: %w", err)
	}

	return collectBookings(rows)
}

func (r *BookingRepository) ListByStationAndDate(ctx context.Context, stationID uuid.UUID, date time.Time) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE station_id = $1 AND booking_date = $2::date AND status = ANY($3)
	ORDER BY start_time
	`

	rows, err := r.db.QueryContext(ctx, query, stationID, domain.FormatDate(date), pq.Array(activeStatusArgs()))
	if err != nil {
		return nil, fmt.Errorf("query station bookings: %w", err)
	}

	return collectBookings(rows)
}

func (r *BookingRepository) CreateBookings(ctx context.Context, bookings []domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `
	INSERT INTO bookings (id, station_id, customer_id, booking_date, start_time, end_time, status,
		payment_mode, payment_status, payment_txn_id, original_price, discount_amount, final_price,
		coupon_code, created_at, updated_at)
	VALUES ($1, $2, $3, $4::date, $5::time, $6::time, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare booking statement: %w", err)
	}

	defer stmt.Close()

	for _, b := range bookings {
		_, err := stmt.ExecContext(ctx,
			b.ID, b.StationID, b.CustomerID, domain.FormatDate(b.Date), b.StartTime, b.EndTime, b.Status,
			b.PaymentMode, b.PaymentStatus, b.PaymentTxnID, b.OriginalPrice, b.DiscountAmount, b.FinalPrice,
			b.CouponCode, b.CreatedAt,
		)
		if err != nil {
			if isOverlapViolation(err) {
				return fmt.Errorf("insert booking for station %s: %w", b.StationID, domain.ErrStorageConflict)
			}
			return fmt.Errorf("failed to insert booking for station %s: %w", b.StationID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		if isOverlapViolation(err) {
			return fmt.Errorf("commit bookings: %w", domain.ErrStorageConflict)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "booking", ID: bookingID.String()}
		}
		return nil, err
	}

	return &b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) error {
	query := `
	UPDATE bookings
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, to, bookingID, from)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.ValidationError{Field: "status", Message: "booking status changed concurrently, reload and retry"}
	}

	return nil
}

func (r *BookingRepository) Reschedule(ctx context.Context, bookingID uuid.UUID, date time.Time, iv domain.Interval) error {
	query := `
	UPDATE bookings
	SET booking_date = $1::date, start_time = $2::time, end_time = $3::time, updated_at = NOW()
	WHERE id = $4 AND status = ANY($5)
	`

	result, err := r.db.ExecContext(ctx, query, domain.FormatDate(date), iv.Start, iv.End, bookingID, pq.Array(activeStatusArgs()))
	if err != nil {
		if isOverlapViolation(err) {
			return fmt.Errorf("reschedule booking %s: %w", bookingID, domain.ErrStorageConflict)
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Resource: "active booking", ID: bookingID.String()}
	}

	return nil
}

func (r *BookingRepository) ListActiveByCreation(ctx context.Context) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings
	WHERE status = ANY($1)
	ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(activeStatusArgs()))
	if err != nil {
		return nil, fmt.Errorf("query active bookings: %w", err)
	}

	return collectBookings(rows)
}

func (r *BookingRepository) DeleteByIDs(ctx context.Context, bookingIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(bookingIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		ids = append(ids, id.String())
	}

	query := `
	DELETE FROM bookings
	WHERE id = ANY($1::uuid[]) AND status = ANY($2)
	RETURNING id::text
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), pq.Array(activeStatusArgs()))
	if err != nil {
		return nil, fmt.Errorf("delete bookings: %w", err)
	}

	defer rows.Close()

	var deleted []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("deleted booking id %q: %w", raw, err)
		}
		deleted = append(deleted, id)
	}

	return deleted, rows.Err()
}

func (r *BookingRepository) PurgeInactiveBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM bookings WHERE status = ANY($1) AND booking_date < $2::date`

	result, err := r.db.ExecContext(ctx, query, pq.Array(statusStrings(domain.InactiveStatuses)), domain.FormatDate(before))
	if err != nil {
		return 0, fmt.Errorf("purge bookings: %w", err)
	}

	return result.RowsAffected()
}

func (r *BookingRepository) ListPendingPayments(ctx context.Context, limit int) ([]domain.PendingPayment, error) {
	query := `
	SELECT payment_txn_id, array_agg(id::text ORDER BY id), MIN(created_at)
	FROM bookings
	WHERE payment_status = 'pending' AND payment_txn_id <> ''
	GROUP BY payment_txn_id
	ORDER BY MIN(created_at)
	LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending payments: %w", err)
	}

	defer rows.Close()

	var pending []domain.PendingPayment
	for rows.Next() {
		var p domain.PendingPayment
		var ids []string
		if err := rows.Scan(&p.OrderID, pq.Array(&ids), &p.CreatedAt); err != nil {
			return nil, err
		}
		for _, raw := range ids {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("pending payment %s: %w", p.OrderID, err)
			}
			p.BookingIDs = append(p.BookingIDs, id)
		}
		pending = append(pending, p)
	}

	return pending, rows.Err()
}

func (r *BookingRepository) ResolvePayment(ctx context.Context, orderID string, status domain.PaymentStatus, paymentRef string) (int64, error) {
	query := `
	UPDATE bookings
	SET payment_status = $1::text,
		payment_ref = $2,
		status = CASE WHEN $1::text = 'failed' AND status = ANY($4) THEN 'cancelled' ELSE status END,
		updated_at = NOW()
	WHERE payment_txn_id = $3 AND payment_status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, string(status), paymentRef, orderID, pq.Array(activeStatusArgs()))
	if err != nil {
		return 0, fmt.Errorf("resolve payment %s: %w", orderID, err)
	}

	return result.RowsAffected()
}

func (r *BookingRepository) MarkEventProcessed(ctx context.Context, eventID, orderID string) (bool, error) {
	query := `
	INSERT INTO payment_events (event_id, order_id)
	VALUES ($1, $2)
	ON CONFLICT (event_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, eventID, orderID)
	if err != nil {
		return false, fmt.Errorf("record payment event: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}
