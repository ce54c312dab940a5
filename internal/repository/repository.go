package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-storefront/internal/entity"
)

// ProductRepository handles persistence for the catalog.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id uint) (*entity.Product, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Product, error)
	// Create inserts the product and assigns its slug, de-duplicating
	// collisions by suffixing the colliding row's id.
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	// PackSizes returns the product's pack-size overrides sorted ascending
	// by normalized weight.
	PackSizes(ctx context.Context, productID uint) ([]entity.ProductPackSize, error)
	// PackSizePrice looks up the override price for a pack-size label.
	PackSizePrice(ctx context.Context, productID uint, label string) (decimal.Decimal, error)
	// Seed inserts initial catalog data if none exists.
	Seed(ctx context.Context, categories []entity.Category, products []entity.Product) error
}

// OrderRepository handles persistence for orders and their line items.
type OrderRepository interface {
	// GetOrCreateOpen resolves the customer's single unpaid order, creating
	// one if absent. Safe under concurrent calls for the same customer.
	GetOrCreateOpen(ctx context.Context, customerID uint) (*entity.Order, error)
	FindByID(ctx context.Context, id uint) (*entity.Order, error)
	FindItem(ctx context.Context, orderID, itemID uint) (*entity.OrderItem, error)
	// UpsertItem adds quantity to the existing (order, product, packsize)
	// line or creates it, recomputing the line total either way.
	UpsertItem(ctx context.Context, orderID, productID uint, packSize string, quantity int, unitPrice decimal.Decimal) (*entity.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, item *entity.OrderItem, quantity int) error
	DeleteItem(ctx context.Context, item *entity.OrderItem) error
	// DeleteItems bulk-clears all lines of an order.
	DeleteItems(ctx context.Context, orderID uint) error
	ItemsOf(ctx context.Context, orderID uint) ([]entity.OrderItem, error)
	// TotalAmount sums the stored line totals of the order.
	TotalAmount(ctx context.Context, orderID uint) (decimal.Decimal, error)
	// AssignOrderID sets the user-visible identifier once; an order that
	// already has one is returned unchanged.
	AssignOrderID(ctx context.Context, orderID uint, id string) (string, error)
}

// PaymentRepository handles persistence for payments.
type PaymentRepository interface {
	// GetOrCreate returns the order's payment, creating one with status
	// pending if absent. The returned bool reports whether it was created.
	GetOrCreate(ctx context.Context, orderID uint, method entity.PaymentMethod, amount decimal.Decimal, currency string) (*entity.Payment, bool, error)
	FindByID(ctx context.Context, id uint) (*entity.Payment, error)
	FindByOrder(ctx context.Context, orderID uint) (*entity.Payment, error)
	// Transition atomically moves the payment to the given status and
	// returns the pre-write snapshot alongside the new state. A transition
	// to success flips the owning order's paid flag in the same database
	// transaction.
	Transition(ctx context.Context, paymentID uint, to entity.PaymentStatus, externalPaymentID string) (*entity.PaymentTransition, error)
	// MarkNotified latches notification_sent without touching anything
	// else; the write bypasses model hooks so it cannot re-trigger
	// notification logic.
	MarkNotified(ctx context.Context, paymentID uint) error
}

// ReviewRepository handles persistence for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *entity.Review) error
	FindByProduct(ctx context.Context, productID uint) ([]entity.Review, error)
}

// CustomerRepository reads and updates the identity snapshot.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Customer, error)
	Update(ctx context.Context, c *entity.Customer) error
}
