package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
)

type bookingView struct {
	ID            string  `json:"id"`
	StationID     string  `json:"station_id"`
	CustomerID    string  `json:"customer_id"`
	Date          string  `json:"booking_date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Status        string  `json:"status"`
	PaymentMode   string  `json:"payment_mode"`
	PaymentStatus string  `json:"payment_status"`
	FinalPrice    float64 `json:"final_price"`
}

func toBookingView(b domain.Booking) bookingView {
	return bookingView{
		ID:            b.ID.String(),
		StationID:     b.StationID.String(),
		CustomerID:    b.CustomerID.String(),
		Date:          domain.FormatDate(b.Date),
		StartTime:     b.StartTime.String(),
		EndTime:       b.EndTime.String(),
		Status:        string(b.Status),
		PaymentMode:   string(b.PaymentMode),
		PaymentStatus: string(b.PaymentStatus),
		FinalPrice:    b.FinalPrice,
	}
}

func toBookingViews(bookings []domain.Booking) []bookingView {
	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, toBookingView(b))
	}
	return views
}

func badRequest(c *gin.Context, msg string, details string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg, "details": details})
}

// writeError maps a service error onto the HTTP status and error body.
// Every failure is logged with the request it belongs to.
func writeError(c *gin.Context, logger *zap.Logger, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)

	var (
		conflictErr *domain.ConflictError
		validErr    *domain.ValidationError
		configErr   *domain.ConfigurationError
		notFoundErr *domain.NotFoundError
	)

	switch {
	case errors.As(err, &conflictErr):
		logger.Info("booking conflict", fields...)
		c.JSON(http.StatusConflict, gin.H{
			"ok":        false,
			"error":     "Booking conflict",
			"details":   conflictErr.Error(),
			"conflicts": toBookingViews(conflictErr.Conflicts),
		})
	case errors.As(err, &validErr):
		logger.Info("invalid request", fields...)
		badRequest(c, "Invalid request", validErr.Error())
	case errors.As(err, &configErr):
		logger.Info("invalid slot configuration", fields...)
		badRequest(c, "Invalid slot configuration", configErr.Error())
	case errors.As(err, &notFoundErr):
		logger.Info("resource not found", fields...)
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found", "details": notFoundErr.Error()})
	case errors.Is(err, domain.ErrValidatorUnavailable):
		logger.Error("conflict check unavailable", fields...)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": domain.ErrValidatorUnavailable.Error(), "details": err.Error()})
	default:
		logger.Error("request failed", fields...)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Internal server error", "details": err.Error()})
	}
}
