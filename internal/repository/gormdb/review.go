package gormdb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a ReviewRepository backed by GORM.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByProduct(ctx context.Context, productID uint) ([]entity.Review, error) {
	var reviews []entity.Review
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return reviews, nil
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a CustomerRepository backed by GORM.
func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %d: %w", id, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, c *entity.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Customer{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"full_name":    c.FullName,
			"phone_number": c.PhoneNumber,
			"address":      c.Address,
			"email":        c.Email,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("customer %d: %w", c.ID, entity.ErrNotFound)
	}
	return nil
}
