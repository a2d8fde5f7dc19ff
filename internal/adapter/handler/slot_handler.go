package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/services"
)

type SlotHandler struct {
	svc             *services.SlotService
	defaultDuration int
	logger          *zap.Logger
}

func NewSlotHandler(svc *services.SlotService, defaultDuration int, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{svc: svc, defaultDuration: defaultDuration, logger: logger}
}

// AvailableSlots serves GET /api/stations/:id/slots?date=YYYY-MM-DD&duration=60.
func (h *SlotHandler) AvailableSlots(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid request", "invalid station id")
		return
	}

	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, "Invalid request", "invalid date, expected YYYY-MM-DD")
		return
	}

	duration := h.defaultDuration
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid request", "duration must be a whole number of minutes")
			return
		}
	}

	slots, err := h.svc.AvailableSlots(c.Request.Context(), stationID, date, duration)
	if err != nil {
		writeError(c, h.logger, err, zap.String("station_id", stationID.String()), zap.Int("duration", duration))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"station_id": stationID.String(),
		"date":       domain.FormatDate(date),
		"duration":   duration,
		"slots":      slots,
	})
}
