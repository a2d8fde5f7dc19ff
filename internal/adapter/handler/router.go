package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Handlers struct {
	Booking     *BookingHandler
	Slot        *SlotHandler
	Maintenance *MaintenanceHandler
	Health      *HealthHandler
}

func NewRouter(h Handlers, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(Recovery(logger), RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
	})

	r.GET("/healthz", h.Health.Health)

	limit := RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	api := r.Group("/api")
	{
		api.GET("/stations/:id/slots", h.Slot.AvailableSlots)

		bookings := api.Group("/bookings")
		bookings.POST("", limit, h.Booking.CreateBooking)
		bookings.POST("/check-conflict", h.Booking.CheckConflict)
		bookings.PATCH("/:id/status", limit, h.Booking.UpdateStatus)
		bookings.PUT("/:id/reschedule", limit, h.Booking.Reschedule)

		bookings.GET("/duplicates", h.Maintenance.DuplicateReport)
		bookings.POST("/cleanup-duplicates", limit, h.Maintenance.CleanupDuplicates)
		bookings.POST("/purge", limit, h.Maintenance.Purge)

		api.POST("/payments/reconcile", limit, h.Maintenance.ReconcilePayments)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
