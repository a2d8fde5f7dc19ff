package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
	"github.com/turf45/courtbook/internal/core/services"
)

// MaintenanceHandler exposes the reconciler jobs. Manual triggers share the
// scheduler's guard, so a run already in flight is reported as skipped.
type MaintenanceHandler struct {
	scheduler  *services.Scheduler
	reconciler *services.Reconciler
	logger     *zap.Logger
}

func NewMaintenanceHandler(scheduler *services.Scheduler, reconciler *services.Reconciler, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{scheduler: scheduler, reconciler: reconciler, logger: logger}
}

func (h *MaintenanceHandler) CleanupDuplicates(c *gin.Context) {
	res, err := h.scheduler.RunDedup(c.Request.Context())
	if errors.Is(err, services.ErrJobInFlight) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": true, "message": "Duplicate cleanup already running"})
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	message := "No duplicate bookings found"
	if res.DuplicatesFound > 0 {
		message = fmt.Sprintf("Removed %d duplicate bookings across %d slots", res.DuplicatesDeleted, res.DuplicateGroups)
	}
	if res.FailedGroups > 0 {
		message += fmt.Sprintf(", %d groups failed", res.FailedGroups)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"processed":         res.Processed,
		"duplicatesFound":   res.DuplicatesFound,
		"duplicatesDeleted": res.DuplicatesDeleted,
		"duplicateGroups":   res.DuplicateGroups,
		"failedGroups":      res.FailedGroups,
		"deletedBookingIds": res.DeletedBookingIDs,
		"message":           message,
	})
}

type duplicateGroupView struct {
	StationID string   `json:"station_id"`
	Date      string   `json:"booking_date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	KeepID    string   `json:"keep_id"`
	RemoveIDs []string `json:"remove_ids"`
}

// DuplicateReport lists what CleanupDuplicates would delete.
func (h *MaintenanceHandler) DuplicateReport(c *gin.Context) {
	groups, processed, err := h.reconciler.DuplicateReport(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	found := 0
	views := make([]duplicateGroupView, 0, len(groups))
	for _, g := range groups {
		v := duplicateGroupView{
			StationID: g.Key.StationID.String(),
			Date:      g.Key.Date,
			StartTime: g.Key.Start.String(),
			EndTime:   g.Key.End.String(),
			KeepID:    g.Keep.ID.String(),
			RemoveIDs: make([]string, 0, len(g.Remove)),
		}
		for _, b := range g.Remove {
			v.RemoveIDs = append(v.RemoveIDs, b.ID.String())
		}
		found += len(g.Remove)
		views = append(views, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"processed":       processed,
		"duplicatesFound": found,
		"duplicateGroups": len(groups),
		"groups":          views,
	})
}

func (h *MaintenanceHandler) ReconcilePayments(c *gin.Context) {
	res, err := h.scheduler.RunReconcile(c.Request.Context())
	if errors.Is(err, services.ErrJobInFlight) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "skipped": true, "message": "Payment reconciliation already running"})
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"processed":    res.Processed,
		"successful":   res.Successful,
		"failed":       res.Failed,
		"stillPending": res.StillPending,
		"lookupErrors": res.LookupErrors,
	})
}

type purgeRequest struct {
	Before string `json:"before" binding:"required"`
}

// Purge deletes completed, cancelled and no-show bookings dated before the
// given day.
func (h *MaintenanceHandler) Purge(c *gin.Context) {
	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	before, err := domain.ParseDate(req.Before)
	if err != nil {
		badRequest(c, "Invalid request", "invalid before, expected YYYY-MM-DD")
		return
	}

	n, err := h.reconciler.PurgeInactive(c.Request.Context(), before)
	if err != nil {
		writeError(c, h.logger, err, zap.String("before", req.Before))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": n})
}
