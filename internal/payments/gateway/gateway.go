package gateway

import (
	"context"
	"errors"
	"time"
)

// OrderStatus is the gateway's view of a payment, normalized across providers
type OrderStatus string

const (
	OrderPending OrderStatus = "PENDING"
	OrderPaid    OrderStatus = "PAID"
	OrderFailed  OrderStatus = "FAILED"
)

var ErrOrderNotFound = errors.New("gateway order not found")

// Order is a created gateway order the client completes payment against
type Order struct {
	Ref      string  `json:"ref"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	// PaymentURL is set for hosted/QR flows, empty for embedded checkout
	PaymentURL string `json:"payment_url,omitempty"`
}

// Gateway abstracts a payment provider. CreateOrder registers a payable
// order; CheckStatus polls its current state. createdAt is when the order
// was created on our side: providers that key status lookups by date need
// it, the rest ignore it. Both honor ctx deadlines.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, amount float64, receipt string) (*Order, error)
	CheckStatus(ctx context.Context, ref string, createdAt time.Time) (OrderStatus, error)
}
