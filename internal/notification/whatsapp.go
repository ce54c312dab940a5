// Package notification turns payment transitions into outbound WhatsApp
// deep-link messages. It only constructs the URL; delivery belongs to the
// messaging collaborator behind it.
package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/egannguyen/go-storefront/internal/entity"
)

// Notifier produces outbound notifications and returns the delivery target
// URL for each.
type Notifier interface {
	// PaymentApproved notifies the customer that their payment went
	// through.
	PaymentApproved(ctx context.Context, payment *entity.Payment, order *entity.Order, items []entity.OrderItem, customer *entity.Customer) (string, error)
	// OrderSummaryLink addresses the order summary to the store owner.
	OrderSummaryLink(order *entity.Order, items []entity.OrderItem, total string, customer *entity.Customer) (string, error)
}

// ShouldNotify is the pure trigger decision over a payment's before/after
// status: fire only for the whatsapp method, when the payment either was
// created already successful or moved pending→success, and the notification
// has not been sent yet. The transition's pre-write snapshot arrives as an
// argument; nothing here reads shared state.
func ShouldNotify(t *entity.PaymentTransition) bool {
	p := t.Payment
	if p.PaymentMethod != entity.MethodWhatsApp {
		return false
	}
	if p.Status != entity.StatusSuccess {
		return false
	}
	if p.NotificationSent {
		return false
	}
	if t.Created {
		return true
	}
	return t.From == entity.StatusPending && t.To == entity.StatusSuccess
}

// WhatsAppNotifier builds payment-approval messages addressed to the
// customer and order summaries addressed to the store owner. The owner
// number is an explicit constructor parameter, not ambient configuration.
type WhatsAppNotifier struct {
	ownerPhone string
}

// NewWhatsAppNotifier creates a notifier with the store owner's number.
func NewWhatsAppNotifier(ownerPhone string) *WhatsAppNotifier {
	return &WhatsAppNotifier{ownerPhone: ownerPhone}
}

// PaymentApproved builds the approval message for the customer and returns
// the deep-link URL targeting their phone number. A missing or malformed
// number is a validation error; the caller treats it as a non-fatal warning
// and leaves notification_sent unset.
func (n *WhatsAppNotifier) PaymentApproved(ctx context.Context, payment *entity.Payment, order *entity.Order, items []entity.OrderItem, customer *entity.Customer) (string, error) {
	if customer.PhoneNumber == "" {
		return "", fmt.Errorf("%w: customer %q has no phone number", entity.ErrValidation, customer.Username)
	}
	phone, err := entity.CleanPhoneNumber(customer.PhoneNumber)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Payment Approved!\n")
	fmt.Fprintf(&b, "Order ID: %s\n", orderLabel(order))
	b.WriteString("\n")
	for i := range items {
		item := &items[i]
		name := item.Product.Name
		if item.PackSize != "" {
			name = fmt.Sprintf("%s (%s)", name, item.PackSize)
		}
		fmt.Fprintf(&b, "%s: %s x %d = %s\n",
			name,
			item.UnitPrice.StringFixed(2),
			item.Quantity,
			item.TotalPrice().StringFixed(2),
		)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Amount Paid: %s %s\n", payment.Currency, payment.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Customer: %s (%s)\n", customer.FullName, customer.PhoneNumber)
	if customer.Address != "" {
		fmt.Fprintf(&b, "Delivery Address: %s\n", customer.Address)
	}
	b.WriteString("\nYour order is now being processed. Thank you for your purchase!")

	return DeepLink(phone, b.String()), nil
}

// OrderSummaryLink builds the checkout-time order summary addressed to the
// store owner, so the customer can hand their order over in one tap.
func (n *WhatsAppNotifier) OrderSummaryLink(order *entity.Order, items []entity.OrderItem, total string, customer *entity.Customer) (string, error) {
	phone, err := entity.CleanPhoneNumber(n.ownerPhone)
	if err != nil {
		return "", fmt.Errorf("store owner number: %w", err)
	}

	var b strings.Builder
	b.WriteString("New Order\n")
	fmt.Fprintf(&b, "Order ID: %s\n", orderLabel(order))
	fmt.Fprintf(&b, "Customer: %s (%s)\n\n", customer.FullName, customer.PhoneNumber)
	for i := range items {
		item := &items[i]
		name := item.Product.Name
		if item.PackSize != "" {
			name = fmt.Sprintf("%s (%s)", name, item.PackSize)
		}
		fmt.Fprintf(&b, "%s: %s x %d = %s\n",
			name,
			item.UnitPrice.StringFixed(2),
			item.Quantity,
			item.TotalPrice().StringFixed(2),
		)
	}
	fmt.Fprintf(&b, "\nTotal: %s", total)
	if customer.Address != "" {
		fmt.Fprintf(&b, "\nDeliver to: %s", customer.Address)
	}

	return DeepLink(phone, b.String()), nil
}

// DeepLink formats the WhatsApp deep-link URL for a digits-only recipient
// number and a message body.
func DeepLink(phone, message string) string {
	return fmt.Sprintf("https://api.whatsapp.com/send?phone=%s&text=%s", phone, url.QueryEscape(message))
}

func orderLabel(order *entity.Order) string {
	if order.OrderID != "" {
		return order.OrderID
	}
	return fmt.Sprintf("#%d", order.ID)
}
