package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how the customer chose to pay.
type PaymentMethod string

const (
	MethodWhatsApp PaymentMethod = "whatsapp"
	MethodOnline   PaymentMethod = "online"
	MethodRazorpay PaymentMethod = "razorpay"
	MethodUPI      PaymentMethod = "upi"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodWhatsApp, MethodOnline, MethodRazorpay, MethodUPI:
		return true
	}
	return false
}

// PaymentStatus is the payment state machine:
// pending → success, pending → failed, pending → cancelled.
// success, failed and cancelled are terminal for this core; an operator may
// reset status manually as an administrative override.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSuccess   PaymentStatus = "success"
	StatusFailed    PaymentStatus = "failed"
	StatusCancelled PaymentStatus = "cancelled"
)

// Payment is the single payment record of an order. Amount snapshots the
// order total at creation time. NotificationSent latches once the outbound
// notification for a pending→success transition has been produced.
type Payment struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	OrderID          uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	Order            Order           `json:"order"`
	PaymentMethod    PaymentMethod   `gorm:"size:20;not null" json:"payment_method"`
	PaymentID        string          `gorm:"size:100" json:"payment_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency         string          `gorm:"size:10;not null;default:'INR'" json:"currency"`
	Status           PaymentStatus   `gorm:"size:20;not null;default:'pending'" json:"status"`
	NotificationSent bool            `gorm:"not null;default:false" json:"notification_sent"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// PaymentTransition is the result of an atomic status change: the pre-write
// snapshot and the status after the write. From==To means the write was a
// no-op (the payment was already in the requested state).
type PaymentTransition struct {
	Payment *Payment
	From    PaymentStatus
	To      PaymentStatus
	// Created marks a payment that was inserted by this operation rather
	// than transitioned.
	Created bool
}
