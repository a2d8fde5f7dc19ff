package consumer

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/turf45/courtbook/internal/core/domain"
)

const (
	KeyPaymentCaptured = "payment.captured"
	KeyPaymentFailed   = "payment.failed"
)

// PaymentEvent is the gateway webhook body as relayed onto the payment
// exchange.
type PaymentEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentApplier interface {
	ApplyPaymentEvent(ctx context.Context, eventID, orderID, paymentRef string, status domain.PaymentStatus) error
}

type Deliverer interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type outcome int

const (
	ack outcome = iota
	drop
	retry
)

type PaymentConsumer struct {
	applier PaymentApplier
	source  Deliverer
	logger  *zap.Logger
}

func NewPaymentConsumer(applier PaymentApplier, source Deliverer, logger *zap.Logger) *PaymentConsumer {
	return &PaymentConsumer{applier: applier, source: source, logger: logger.Named("payment-consumer")}
}

// Run consumes until ctx is done or the delivery channel closes.
func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.source.Deliveries(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			switch pc.handle(ctx, d) {
			case ack:
				_ = d.Ack(false)
			case drop:
				_ = d.Nack(false, false)
			case retry:
				_ = d.Nack(false, true)
			}
		}
	}
}

func (pc *PaymentConsumer) handle(ctx context.Context, d amqp.Delivery) outcome {
	var status domain.PaymentStatus
	switch d.RoutingKey {
	case KeyPaymentCaptured:
		status = domain.PaymentPaid
	case KeyPaymentFailed:
		status = domain.PaymentFailed
	default:
		return ack
	}

	var evt PaymentEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		pc.logger.Error("unmarshal payment event", zap.String("key", d.RoutingKey), zap.Error(err))
		return drop
	}

	entity := evt.Payload.Payment.Entity
	if entity.OrderID == "" || entity.ID == "" {
		pc.logger.Warn("payment event without order or payment id", zap.String("message_id", d.MessageId))
		return ack
	}

	eventID := d.MessageId
	if eventID == "" {
		eventID = d.RoutingKey + ":" + entity.ID
	}

	err := pc.applier.ApplyPaymentEvent(ctx, eventID, entity.OrderID, entity.ID, status)
	if err == nil {
		return ack
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		pc.logger.Warn("payment event rejected", zap.String("event_id", eventID), zap.Error(err))
		return drop
	}

	pc.logger.Error("apply payment event",
		zap.String("event_id", eventID),
		zap.String("order_id", entity.OrderID),
		zap.Error(err),
	)
	return retry
}
