package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	rdb    redis.Cmdable
	logger *zap.Logger
}

// NewHealthHandler checks db and, when rdb is non-nil, Redis.
func NewHealthHandler(db Pinger, rdb redis.Cmdable, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health: database ping failed", zap.Error(err))
		checks["database"] = err.Error()
		healthy = false
	}
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.logger.Warn("health: redis ping failed", zap.Error(err))
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ok": healthy, "checks": checks})
}
