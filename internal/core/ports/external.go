package ports

import (
	"context"
	"time"

	"github.com/turf45/courtbook/internal/core/domain"
)

// PaymentGateway looks up the state of an order at the payment provider.
type PaymentGateway interface {
	OrderStatus(ctx context.Context, orderID string) (domain.PaymentStatus, string, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Locker is a cross-instance mutual exclusion for background jobs.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}
