package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/messaging"
	"github.com/egannguyen/go-storefront/internal/notification"
	"github.com/egannguyen/go-storefront/internal/repository"
)

// CheckoutService drives checkout initiation and the payment lifecycle.
type CheckoutService struct {
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	customers repository.CustomerRepository
	notifier  notification.Notifier
	publisher messaging.Publisher
	currency  string
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	customers repository.CustomerRepository,
	notifier notification.Notifier,
	publisher messaging.Publisher,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		payments:  payments,
		customers: customers,
		notifier:  notifier,
		publisher: publisher,
		currency:  currency,
	}
}

// CheckoutResult is what checkout initiation hands back to the caller.
type CheckoutResult struct {
	Order       *entity.Order      `json:"order"`
	Items       []entity.OrderItem `json:"items"`
	Total       decimal.Decimal    `json:"total"`
	Payment     *entity.Payment    `json:"payment"`
	WhatsAppURL string             `json:"whatsapp_url,omitempty"`
}

// StartCheckout assigns the order its user-visible identifier (once),
// snapshots the total into a pending payment for the chosen method, and for
// the whatsapp method builds the order-summary deep link addressed to the
// store owner. Calling it again for the same order returns the existing
// payment unchanged.
func (s *CheckoutService) StartCheckout(ctx context.Context, customerID uint, method entity.PaymentMethod) (*CheckoutResult, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", entity.ErrValidation, method)
	}

	order, err := s.openOrderOf(ctx, customerID)
	if err != nil {
		return nil, err
	}

	items, err := s.orders.ItemsOf(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", entity.ErrValidation)
	}

	assigned, err := s.orders.AssignOrderID(ctx, order.ID, entity.NewOrderID(time.Now()))
	if err != nil {
		return nil, err
	}
	order.OrderID = assigned

	total, err := s.orders.TotalAmount(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	payment, created, err := s.payments.GetOrCreate(ctx, order.ID, method, total, s.currency)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Order:   order,
		Items:   items,
		Total:   total,
		Payment: payment,
	}

	if method == entity.MethodWhatsApp {
		customer, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			return nil, err
		}
		url, err := s.notifier.OrderSummaryLink(order, items, total.StringFixed(2), customer)
		if err != nil {
			slog.Warn("Failed to build order summary link", "order_id", order.OrderID, "err", err)
		} else {
			result.WhatsAppURL = url
		}
	}

	if created {
		event := entity.OrderPlaced{
			OrderID:     order.OrderID,
			CustomerID:  customerID,
			TotalAmount: total,
			Method:      method,
			PlacedAt:    time.Now(),
		}
		if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersPlaced, order.OrderID, event); err != nil {
			slog.Error("Failed to publish OrderPlaced", "order_id", order.OrderID, "err", err)
		}
	}

	return result, nil
}

// MarkSuccess transitions the payment to success. The status write and the
// order's paid flip commit atomically in the repository; the notification
// trigger and the domain event fire only when the status actually changed,
// so re-marking an already successful payment is a no-op for side effects.
func (s *CheckoutService) MarkSuccess(ctx context.Context, paymentID uint, externalPaymentID string) (*entity.Payment, error) {
	t, err := s.payments.Transition(ctx, paymentID, entity.StatusSuccess, externalPaymentID)
	if err != nil {
		return nil, err
	}
	if t.From == t.To {
		return t.Payment, nil
	}

	payment := t.Payment
	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}

	if notification.ShouldNotify(t) {
		if err := s.notify(ctx, t, order); err != nil {
			// Missing or malformed phone numbers are non-fatal: the
			// payment stays successful and notification_sent stays false.
			slog.Warn("WhatsApp notification not produced",
				"order_id", order.OrderID, "payment_id", payment.ID, "err", err)
		}
	}

	event := entity.PaymentSucceeded{
		OrderID:           order.OrderID,
		PaymentID:         payment.ID,
		ExternalPaymentID: payment.PaymentID,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		Method:            payment.PaymentMethod,
		SucceededAt:       time.Now(),
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicPaymentsSucceeded, order.OrderID, event); err != nil {
		slog.Error("Failed to publish PaymentSucceeded", "order_id", order.OrderID, "err", err)
	}

	slog.Info("Payment succeeded", "order_id", order.OrderID, "payment_id", payment.ID)
	return payment, nil
}

// MarkFailed transitions the payment to failed; the order stays unpaid.
func (s *CheckoutService) MarkFailed(ctx context.Context, paymentID uint) (*entity.Payment, error) {
	t, err := s.payments.Transition(ctx, paymentID, entity.StatusFailed, "")
	if err != nil {
		return nil, err
	}
	return t.Payment, nil
}

// MarkCancelled transitions the payment to cancelled; the order stays
// unpaid.
func (s *CheckoutService) MarkCancelled(ctx context.Context, paymentID uint) (*entity.Payment, error) {
	t, err := s.payments.Transition(ctx, paymentID, entity.StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	return t.Payment, nil
}

// PaymentOf returns the payment of the customer's order by payment id.
func (s *CheckoutService) PaymentOf(ctx context.Context, paymentID uint) (*entity.Payment, error) {
	return s.payments.FindByID(ctx, paymentID)
}

func (s *CheckoutService) notify(ctx context.Context, t *entity.PaymentTransition, order *entity.Order) error {
	items, err := s.orders.ItemsOf(ctx, order.ID)
	if err != nil {
		return err
	}
	customer, err := s.customers.FindByID(ctx, order.CustomerID)
	if err != nil {
		return err
	}

	url, err := s.notifier.PaymentApproved(ctx, t.Payment, order, items, customer)
	if err != nil {
		return err
	}

	slog.Info("WhatsApp notification produced", "order_id", order.OrderID, "url_len", len(url))
	if err := s.payments.MarkNotified(ctx, t.Payment.ID); err != nil {
		return err
	}
	t.Payment.NotificationSent = true
	return nil
}

func (s *CheckoutService) openOrderOf(ctx context.Context, customerID uint) (*entity.Order, error) {
	order, err := s.orders.GetOrCreateOpen(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return order, nil
}
