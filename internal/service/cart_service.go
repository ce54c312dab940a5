package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
)

// CartService maintains the customer's single open order and its line items.
type CartService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository

	// Serializes open-order resolution per customer within this process;
	// the partial unique index covers races across processes.
	openGroup singleflight.Group
}

// NewCartService creates a CartService.
func NewCartService(orders repository.OrderRepository, products repository.ProductRepository) *CartService {
	return &CartService{
		orders:   orders,
		products: products,
	}
}

// OpenOrder resolves the customer's open order, creating one if absent.
func (s *CartService) OpenOrder(ctx context.Context, customerID uint) (*entity.Order, error) {
	v, err, _ := s.openGroup.Do(strconv.FormatUint(uint64(customerID), 10), func() (any, error) {
		return s.orders.GetOrCreateOpen(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Order), nil
}

// AddItem resolves the unit price for the product and pack-size label,
// preferring the pack-size override and falling back to the discounted
// catalog price, then applies the increment policy to the matching line.
func (s *CartService) AddItem(ctx context.Context, customerID, productID uint, packSize string, quantity int) (*entity.OrderItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", entity.ErrValidation)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Available {
		return nil, fmt.Errorf("%w: product %q is not available", entity.ErrValidation, product.Name)
	}

	unitPrice, err := s.resolveUnitPrice(ctx, product, packSize)
	if err != nil {
		return nil, err
	}

	order, err := s.OpenOrder(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// Stock limit applies to the resulting line quantity.
	existing := 0
	items, err := s.orders.ItemsOf(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ProductID == productID && items[i].PackSize == packSize {
			existing = items[i].Quantity
			break
		}
	}
	if existing+quantity > product.Stock {
		return nil, fmt.Errorf("%w: requested quantity %d exceeds stock %d for %q",
			entity.ErrValidation, existing+quantity, product.Stock, product.Name)
	}

	item, err := s.orders.UpsertItem(ctx, order.ID, productID, packSize, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	slog.Info("Cart item upserted",
		"customer_id", customerID,
		"order_id", order.ID,
		"product_id", productID,
		"pack_size", packSize,
		"quantity", item.Quantity,
	)
	return item, nil
}

// SetQuantity replaces a line's quantity and recomputes its total from the
// stored unit price. Rejects quantities below 1 or beyond the product stock.
func (s *CartService) SetQuantity(ctx context.Context, customerID, itemID uint, quantity int) (*entity.OrderItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", entity.ErrValidation)
	}

	order, item, err := s.ownedOpenItem(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("%w: requested quantity %d exceeds stock %d for %q",
			entity.ErrValidation, quantity, product.Stock, product.Name)
	}

	if err := s.orders.UpdateItemQuantity(ctx, item, quantity); err != nil {
		return nil, err
	}

	slog.Info("Cart item quantity updated", "order_id", order.ID, "item_id", item.ID, "quantity", quantity)
	return item, nil
}

// RemoveItem deletes a line. Only the owning customer may remove it, and
// only while the order is unpaid.
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uint) error {
	_, item, err := s.ownedOpenItem(ctx, customerID, itemID)
	if err != nil {
		return err
	}
	return s.orders.DeleteItem(ctx, item)
}

// Items lists the open order's lines.
func (s *CartService) Items(ctx context.Context, customerID uint) (*entity.Order, []entity.OrderItem, error) {
	order, err := s.OpenOrder(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orders.ItemsOf(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// Total returns the open order's total as the exact sum of its stored line
// totals.
func (s *CartService) Total(ctx context.Context, customerID uint) (decimal.Decimal, error) {
	order, err := s.OpenOrder(ctx, customerID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return s.orders.TotalAmount(ctx, order.ID)
}

// Clear bulk-removes every line of the open order, abandoning the cart.
func (s *CartService) Clear(ctx context.Context, customerID uint) error {
	order, err := s.OpenOrder(ctx, customerID)
	if err != nil {
		return err
	}
	return s.orders.DeleteItems(ctx, order.ID)
}

// ownedOpenItem resolves an item through the customer's open order, so a
// foreign customer's items and paid orders' items are unreachable.
func (s *CartService) ownedOpenItem(ctx context.Context, customerID, itemID uint) (*entity.Order, *entity.OrderItem, error) {
	order, err := s.OpenOrder(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if order.Paid {
		return nil, nil, fmt.Errorf("%w: order %d is already paid", entity.ErrStateConflict, order.ID)
	}
	item, err := s.orders.FindItem(ctx, order.ID, itemID)
	if err != nil {
		return nil, nil, err
	}
	return order, item, nil
}

func (s *CartService) resolveUnitPrice(ctx context.Context, product *entity.Product, packSize string) (decimal.Decimal, error) {
	if packSize == "" {
		return product.DiscountedPrice(), nil
	}
	price, err := s.products.PackSizePrice(ctx, product.ID, packSize)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			// No override record for this label: fall back to the catalog
			// price.
			return product.DiscountedPrice(), nil
		}
		return decimal.Decimal{}, err
	}
	return price, nil
}
