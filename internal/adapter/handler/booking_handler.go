package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/services"
)

type BookingHandler struct {
	svc    *services.BookingService
	logger *zap.Logger
}

func NewBookingHandler(svc *services.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	resp, err := h.svc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err,
			zap.Strings("stations", req.SelectedStations),
			zap.String("date", req.SelectedDate),
			zap.String("start_time", req.SelectedSlot.StartTime),
			zap.String("end_time", req.SelectedSlot.EndTime),
			zap.String("order_id", req.OrderID),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"bookingId":     resp.BookingID,
		"bookingIds":    resp.BookingIDs,
		"customerId":    resp.CustomerID,
		"paymentStatus": resp.PaymentStatus,
	})
}

type checkConflictRequest struct {
	StationID        string `json:"station_id" binding:"required"`
	Date             string `json:"date" binding:"required"`
	StartTime        string `json:"start_time" binding:"required"`
	EndTime          string `json:"end_time" binding:"required"`
	ExcludeBookingID string `json:"exclude_booking_id"`
}

func (h *BookingHandler) CheckConflict(c *gin.Context) {
	var req checkConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		badRequest(c, "Invalid request", "invalid station_id")
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		badRequest(c, "Invalid request", "invalid date, expected YYYY-MM-DD")
		return
	}
	iv, err := domain.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	q := services.ConflictQuery{StationID: stationID, Date: date, Interval: iv}
	if ex := strings.TrimSpace(req.ExcludeBookingID); ex != "" {
		id, err := uuid.Parse(ex)
		if err != nil {
			badRequest(c, "Invalid request", "invalid exclude_booking_id")
			return
		}
		q.ExcludeID = &id
	}

	res, err := h.svc.CheckConflict(c.Request.Context(), q)
	if err != nil {
		writeError(c, h.logger, err, zap.String("station_id", req.StationID), zap.String("date", req.Date))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"conflict":  res.Conflict,
		"conflicts": toBookingViews(res.Conflicts),
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	booking, err := h.svc.UpdateStatus(c.Request.Context(), bookingID, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(c, h.logger, err, zap.String("booking_id", bookingID.String()), zap.String("status", req.Status))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "booking": toBookingView(*booking)})
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req services.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	booking, err := h.svc.Reschedule(c.Request.Context(), bookingID, req)
	if err != nil {
		writeError(c, h.logger, err,
			zap.String("booking_id", bookingID.String()),
			zap.String("date", req.Date),
			zap.String("start_time", req.StartTime),
			zap.String("end_time", req.EndTime),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "booking": toBookingView(*booking)})
}

func (h *BookingHandler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid request", "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}
