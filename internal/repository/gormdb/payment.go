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

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a PaymentRepository backed by GORM.
func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

// GetOrCreate is idempotent: an existing payment for the order is returned
// unchanged, whatever method it was created with. The unique index on
// order_id settles concurrent creation races at the data layer.
func (r *paymentRepository) GetOrCreate(ctx context.Context, orderID uint, method entity.PaymentMethod, amount decimal.Decimal, currency string) (*entity.Payment, bool, error) {
	payment, err := r.FindByOrder(ctx, orderID)
	if err == nil {
		return payment, false, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, false, err
	}

	created := &entity.Payment{
		OrderID:       orderID,
		PaymentMethod: method,
		Amount:        amount,
		Currency:      currency,
		Status:        entity.StatusPending,
	}
	if createErr := r.db.WithContext(ctx).Create(created).Error; createErr != nil {
		if payment, err = r.FindByOrder(ctx, orderID); err == nil {
			return payment, false, nil
		}
		return nil, false, fmt.Errorf("failed to create payment: %w", createErr)
	}
	return created, true, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Customer").
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %d: %w", id, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) FindByOrder(ctx context.Context, orderID uint) (*entity.Payment, error) {
	var payment entity.Payment
	err := r.db.WithContext(ctx).
		First(&payment, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment for order %d: %w", orderID, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

// Transition moves the payment to the requested status and returns the
// pre-write snapshot together with the new state. The status write and, on
// success, the order's paid flip commit in one database transaction: either
// both land or neither does. The pre-write status travels back to the caller
// in the result instead of through any shared lookup table, so concurrent
// transitions of unrelated payments cannot see each other's snapshots.
func (r *paymentRepository) Transition(ctx context.Context, paymentID uint, to entity.PaymentStatus, externalPaymentID string) (*entity.PaymentTransition, error) {
	var transition entity.PaymentTransition

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment entity.Payment
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("payment %d: %w", paymentID, entity.ErrNotFound)
			}
			return fmt.Errorf("failed to find payment: %w", err)
		}

		from := payment.Status
		if from == to {
			// Repeating a transition is harmless; report it as a no-op so
			// callers skip side effects.
			transition = entity.PaymentTransition{Payment: &payment, From: from, To: to}
			return nil
		}

		updates := map[string]any{"status": to}
		if externalPaymentID != "" {
			updates["payment_id"] = externalPaymentID
			payment.PaymentID = externalPaymentID
		}

		// Guarded on the observed status: a concurrent transition that got
		// there first leaves RowsAffected at zero.
		result := tx.Model(&entity.Payment{}).
			Where("id = ? AND status = ?", paymentID, from).
			Updates(updates)
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}
		if result.RowsAffected == 0 {
			if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
				return fmt.Errorf("failed to re-read payment: %w", err)
			}
			transition = entity.PaymentTransition{Payment: &payment, From: payment.Status, To: payment.Status}
			return nil
		}
		payment.Status = to

		if to == entity.StatusSuccess {
			if err := tx.Model(&entity.Order{}).
				Where("id = ?", payment.OrderID).
				Update("paid", true).Error; err != nil {
				return fmt.Errorf("failed to mark order paid: %w", err)
			}
		}

		transition = entity.PaymentTransition{Payment: &payment, From: from, To: to}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &transition, nil
}

// MarkNotified latches notification_sent with a bare column update.
// UpdateColumn skips model hooks and the updated_at touch, so the write can
// never feed back into the notification path.
func (r *paymentRepository) MarkNotified(ctx context.Context, paymentID uint) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Payment{}).
		Where("id = ?", paymentID).
		UpdateColumn("notification_sent", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark payment notified: %w", err)
	}
	return nil
}
