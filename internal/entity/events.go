package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a domain event published to downstream consumers.
type Event interface {
	EventType() string
}

// OrderPlaced is emitted when a customer initiates checkout for their open
// order.
type OrderPlaced struct {
	OrderID     string          `json:"order_id"`
	CustomerID  uint            `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Method      PaymentMethod   `json:"method"`
	PlacedAt    time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// PaymentSucceeded is emitted when a payment transitions to success and the
// order is marked paid.
type PaymentSucceeded struct {
	OrderID           string          `json:"order_id"`
	PaymentID         uint            `json:"payment_id"`
	ExternalPaymentID string          `json:"external_payment_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Method            PaymentMethod   `json:"method"`
	SucceededAt       time.Time       `json:"succeeded_at"`
}

func (e PaymentSucceeded) EventType() string { return "PaymentSucceeded" }
