package gormdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an OrderRepository backed by GORM.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// GetOrCreateOpen is the find-or-create primitive for the customer's open
// cart. The partial unique index on (customer_id) WHERE NOT paid makes the
// insert lose cleanly when another request created the row first; the loser
// re-fetches the winner's row.
func (r *orderRepository) GetOrCreateOpen(ctx context.Context, customerID uint) (*entity.Order, error) {
	order, err := r.findOpen(ctx, customerID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	created := &entity.Order{CustomerID: customerID, Paid: false}
	if createErr := r.db.WithContext(ctx).Create(created).Error; createErr != nil {
		// Most likely the unique index rejected a concurrent duplicate.
		if order, err = r.findOpen(ctx, customerID); err == nil {
			return order, nil
		}
		return nil, fmt.Errorf("failed to create open order: %w", createErr)
	}
	return created, nil
}

func (r *orderRepository) findOpen(ctx context.Context, customerID uint) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND NOT paid", customerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("open order for customer %d: %w", customerID, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find open order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) FindItem(ctx context.Context, orderID, itemID uint) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&item, "id = ? AND order_id = ?", itemID, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order item %d: %w", itemID, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order item: %w", err)
	}
	return &item, nil
}

// UpsertItem applies the increment policy: an existing (order, product,
// packsize) line gains the requested quantity, a missing one is created. The
// line total is always recomputed as unit price × quantity in the same
// transaction.
func (r *orderRepository) UpsertItem(ctx context.Context, orderID, productID uint, packSize string, quantity int, unitPrice decimal.Decimal) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"order_id = ? AND product_id = ? AND pack_size = ?",
			orderID, productID, packSize,
		).First(&item).Error

		switch {
		case err == nil:
			item.Quantity += quantity
			item.UnitPrice = unitPrice
			item.Price = unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("failed to update order item: %w", err)
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = entity.OrderItem{
				OrderID:   orderID,
				ProductID: productID,
				PackSize:  packSize,
				Quantity:  quantity,
				UnitPrice: unitPrice,
				Price:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("failed to find order item: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity recomputes the line total from the stored unit price.
// Rows written before unit prices were stored fall back to recovering the
// unit price by division, which requires a non-zero stored quantity.
func (r *orderRepository) UpdateItemQuantity(ctx context.Context, item *entity.OrderItem, quantity int) error {
	unitPrice := item.UnitPrice
	if unitPrice.IsZero() {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: unit price of item %d is undefined", entity.ErrValidation, item.ID)
		}
		unitPrice = item.Price.Div(decimal.NewFromInt(int64(item.Quantity)))
	}

	item.Quantity = quantity
	item.UnitPrice = unitPrice
	item.Price = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	err := r.db.WithContext(ctx).
		Model(&entity.OrderItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
			"price":      item.Price,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update order item quantity: %w", err)
	}
	return nil
}

func (r *orderRepository) DeleteItem(ctx context.Context, item *entity.OrderItem) error {
	result := r.db.WithContext(ctx).Delete(&entity.OrderItem{}, "id = ?", item.ID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order item %d: %w", item.ID, entity.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) DeleteItems(ctx context.Context, orderID uint) error {
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&entity.OrderItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	return nil
}

func (r *orderRepository) ItemsOf(ctx context.Context, orderID uint) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	return items, nil
}

// TotalAmount sums the stored line totals in Go so the result stays
// decimal-exact regardless of how the driver stores decimals.
func (r *orderRepository) TotalAmount(ctx context.Context, orderID uint) (decimal.Decimal, error) {
	items, err := r.ItemsOf(ctx, orderID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].TotalPrice())
	}
	return total, nil
}

// AssignOrderID writes the user-visible identifier only if none is set yet.
// The conditional update makes concurrent checkout submissions agree on a
// single identifier.
func (r *orderRepository) AssignOrderID(ctx context.Context, orderID uint, id string) (string, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ? AND (order_id IS NULL OR order_id = '')", orderID).
		Update("order_id", id)
	if err := result.Error; err != nil {
		return "", fmt.Errorf("failed to assign order id: %w", err)
	}
	if result.RowsAffected > 0 {
		return id, nil
	}

	order, err := r.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.OrderID == "" {
		return "", fmt.Errorf("order %d: %w", orderID, entity.ErrNotFound)
	}
	return order.OrderID, nil
}
