package payment

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/turf45/courtbook/internal/core/domain"
)

// orderAPI is the part of the Razorpay order resource the gateway uses.
type orderAPI interface {
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Payments(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders orderAPI
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order}
}

// OrderStatus maps a Razorpay order onto a payment status. A paid order also
// returns the id of its captured payment.
func (g *RazorpayGateway) OrderStatus(ctx context.Context, orderID string) (domain.PaymentStatus, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	order, err := g.orders.Fetch(orderID, nil, nil)
	if err != nil {
		return "", "", &domain.UpstreamError{Op: "fetch razorpay order " + orderID, Err: err}
	}

	status, _ := order["status"].(string)
	switch status {
	case "paid":
		return domain.PaymentPaid, g.capturedPayment(orderID), nil
	case "created", "attempted":
		return domain.PaymentPending, "", nil
	case "":
		return "", "", &domain.UpstreamError{Op: "fetch razorpay order " + orderID, Err: errors.New("order has no status")}
	default:
		return "", "", &domain.UpstreamError{Op: "fetch razorpay order " + orderID, Err: fmt.Errorf("unknown order status %q", status)}
	}
}

func (g *RazorpayGateway) capturedPayment(orderID string) string {
	payments, err := g.orders.Payments(orderID, nil, nil)
	if err != nil {
		return ""
	}
	items, _ := payments["items"].([]interface{})
	for _, it := range items {
		p, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		if s, _ := p["status"].(string); s == "captured" {
			id, _ := p["id"].(string)
			return id
		}
	}
	return ""
}
