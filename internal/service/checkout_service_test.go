package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/messaging"
)

type checkoutEnv struct {
	*testEnv
	cart      *CartService
	checkout  *CheckoutService
	publisher *fakePublisher
	notifier  *fakeNotifier
}

func setupCheckout(t *testing.T) *checkoutEnv {
	t.Helper()
	env := setupEnv(t)
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	return &checkoutEnv{
		testEnv:   env,
		cart:      NewCartService(env.orders, env.products),
		checkout:  NewCheckoutService(env.orders, env.payments, env.customers, notifier, publisher, "INR"),
		publisher: publisher,
		notifier:  notifier,
	}
}

func (e *checkoutEnv) fillCart(t *testing.T, customerID uint) decimal.Decimal {
	t.Helper()
	product := e.createProduct(t, "Premium Jaggery", "500.00", pct(10), 50)
	_, err := e.cart.AddItem(context.Background(), customerID, product.ID, "", 2)
	require.NoError(t, err)
	return decimal.RequireFromString("900.0")
}

func TestStartCheckoutAssignsOrderIDAndSnapshotsTotal(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	want := env.fillCart(t, customer.ID)

	result, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{5}$`), result.Order.OrderID)
	require.True(t, result.Total.Equal(want), "total %s", result.Total)
	require.Equal(t, entity.StatusPending, result.Payment.Status)
	require.True(t, result.Payment.Amount.Equal(want), "amount %s", result.Payment.Amount)

	require.Len(t, env.publisher.byTopic(messaging.TopicOrdersPlaced), 1)
}

func TestStartCheckoutIsIdempotent(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	env.fillCart(t, customer.ID)

	first, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.NoError(t, err)
	second, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.NoError(t, err)

	require.Equal(t, first.Order.OrderID, second.Order.OrderID)
	require.Equal(t, first.Payment.ID, second.Payment.ID)

	// Only the creating call announces the order.
	require.Len(t, env.publisher.byTopic(messaging.TopicOrdersPlaced), 1)
}

func TestStartCheckoutAmountSurvivesLaterCartEdits(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	product := env.createProduct(t, "Cane Sugar", "100.00", nil, 50)
	item, err := env.cart.AddItem(ctx, customer.ID, product.ID, "", 1)
	require.NoError(t, err)

	first, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.NoError(t, err)
	require.True(t, first.Payment.Amount.Equal(decimal.RequireFromString("100.0")))

	_, err = env.cart.SetQuantity(ctx, customer.ID, item.ID, 5)
	require.NoError(t, err)

	// The payment keeps the amount captured at creation.
	second, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.NoError(t, err)
	require.Equal(t, first.Payment.ID, second.Payment.ID)
	require.True(t, second.Payment.Amount.Equal(decimal.RequireFromString("100.0")),
		"amount %s", second.Payment.Amount)
}

func TestStartCheckoutValidation(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")

	_, err := env.checkout.StartCheckout(ctx, customer.ID, "cheque")
	require.ErrorIs(t, err, entity.ErrValidation)

	_, err = env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.ErrorIs(t, err, entity.ErrValidation, "empty cart")
}

func TestStartCheckoutWhatsAppBuildsSummaryLink(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	env.fillCart(t, customer.ID)

	result, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodWhatsApp)
	require.NoError(t, err)
	require.NotEmpty(t, result.WhatsAppURL)
	require.Equal(t, 1, env.notifier.summaries)
}

func TestMarkSuccessFlipsPaidAndNotifiesExactlyOnce(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	env.fillCart(t, customer.ID)

	result, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodWhatsApp)
	require.NoError(t, err)

	payment, err := env.checkout.MarkSuccess(ctx, result.Payment.ID, "wa-123")
	require.NoError(t, err)
	require.Equal(t, entity.StatusSuccess, payment.Status)
	require.True(t, payment.NotificationSent)

	order, err := env.orders.FindByID(ctx, result.Order.ID)
	require.NoError(t, err)
	require.True(t, order.Paid)
	require.Equal(t, 1, env.notifier.approvals)
	require.Len(t, env.publisher.byTopic(messaging.TopicPaymentsSucceeded), 1)

	// Re-marking an already successful payment changes nothing.
	again, err := env.checkout.MarkSuccess(ctx, result.Payment.ID, "wa-456")
	require.NoError(t, err)
	require.Equal(t, entity.StatusSuccess, again.Status)
	require.Equal(t, 1, env.notifier.approvals)
	require.Len(t, env.publisher.byTopic(messaging.TopicPaymentsSucceeded), 1)
}

func TestMarkSuccessOnlineMethodDoesNotNotify(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	env.fillCart(t, customer.ID)

	result, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodOnline)
	require.NoError(t, err)

	payment, err := env.checkout.MarkSuccess(ctx, result.Payment.ID, "rzp-1")
	require.NoError(t, err)
	require.Equal(t, entity.StatusSuccess, payment.Status)
	require.False(t, payment.NotificationSent)
	require.Equal(t, 0, env.notifier.approvals)

	// The domain event still fires regardless of method.
	require.Len(t, env.publisher.byTopic(messaging.TopicPaymentsSucceeded), 1)
}

func TestMarkSuccessNotifierFailureIsNonFatal(t *testing.T) {
	env := setupCheckout(t)
	ctx := context.Background()

	customer := env.createCustomer(t, "asha", "919016247243")
	env.fillCart(t, customer.ID)

	result, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodWhatsApp)
	require.NoError(t, err)

	env.notifier.err = errors.New("no phone on record")
	payment, err := env.checkout.MarkSuccess(ctx, result.Payment.ID, "wa-123")
	require.NoError(t, err)
	require.Equal(t, entity.StatusSuccess, payment.Status)

	// The payment stays successful while the latch stays open.
	reloaded, err := env.payments.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusSuccess, reloaded.Status)
	require.False(t, reloaded.NotificationSent)

	order, err := env.orders.FindByID(ctx, result.Order.ID)
	require.NoError(t, err)
	require.True(t, order.Paid)
}

func TestMarkFailedAndCancelledKeepOrderUnpaid(t *testing.T) {
	for _, tc := range []struct {
		name string
		mark func(*CheckoutService, context.Context, uint) (*entity.Payment, error)
		want entity.PaymentStatus
	}{
		{"failed", func(s *CheckoutService, ctx context.Context, id uint) (*entity.Payment, error) {
			return s.MarkFailed(ctx, id)
		}, entity.StatusFailed},
		{"cancelled", func(s *CheckoutService, ctx context.Context, id uint) (*entity.Payment, error) {
			return s.MarkCancelled(ctx, id)
		}, entity.StatusCancelled},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := setupCheckout(t)
			ctx := context.Background()

			customer := env.createCustomer(t, "asha", "919016247243")
			env.fillCart(t, customer.ID)

			result, err := env.checkout.StartCheckout(ctx, customer.ID, entity.MethodWhatsApp)
			require.NoError(t, err)

			payment, err := tc.mark(env.checkout, ctx, result.Payment.ID)
			require.NoError(t, err)
			require.Equal(t, tc.want, payment.Status)
			require.False(t, payment.NotificationSent)

			order, err := env.orders.FindByID(ctx, result.Order.ID)
			require.NoError(t, err)
			require.False(t, order.Paid)
			require.Equal(t, 0, env.notifier.approvals)
		})
	}
}
