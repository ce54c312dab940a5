package gormdb

import (
	"context"
	"errors"
	"fmt"

	slugify "github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a ProductRepository backed by GORM.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("PackSizes.PackSize").
		Where("available = ?", true).
		Order("name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("PackSizes.PackSize").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("PackSizes.PackSize").
		First(&product, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", slug, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

// Create inserts the product and derives its slug from the name. On
// collision the candidate is suffixed with the colliding row's id and
// re-checked; the assigned slug is immutable afterwards.
func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.Slug == "" {
			candidate := slugify.Make(p.Name)
			for {
				var existing entity.Product
				err := tx.Unscoped().
					Where("slug = ?", candidate).
					Order("id DESC").
					First(&existing).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					break
				}
				if err != nil {
					return fmt.Errorf("failed to check slug %q: %w", candidate, err)
				}
				candidate = fmt.Sprintf("%s-%d", candidate, existing.ID)
			}
			p.Slug = candidate
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":                p.Name,
			"description":         p.Description,
			"category_id":         p.CategoryID,
			"original_price":      p.OriginalPrice,
			"discount_percentage": p.DiscountPercentage,
			"stock":               p.Stock,
			"available":           p.Available,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", p.ID, entity.ErrNotFound)
	}
	return nil
}

func (r *productRepository) PackSizes(ctx context.Context, productID uint) ([]entity.ProductPackSize, error) {
	var sizes []entity.ProductPackSize
	err := r.db.WithContext(ctx).
		Preload("PackSize").
		Where("product_id = ?", productID).
		Find(&sizes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pack sizes: %w", err)
	}
	entity.SortPackSizes(sizes)
	return sizes, nil
}

func (r *productRepository) PackSizePrice(ctx context.Context, productID uint, label string) (decimal.Decimal, error) {
	var pps entity.ProductPackSize
	err := r.db.WithContext(ctx).
		Joins("JOIN pack_sizes ON pack_sizes.id = product_pack_sizes.pack_size_id").
		Where("product_pack_sizes.product_id = ? AND pack_sizes.size = ?", productID, label).
		First(&pps).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Decimal{}, fmt.Errorf("pack size %q for product %d: %w", label, productID, entity.ErrNotFound)
		}
		return decimal.Decimal{}, fmt.Errorf("failed to query pack size price: %w", err)
	}
	return pps.Price, nil
}

func (r *productRepository) Seed(ctx context.Context, categories []entity.Category, products []entity.Product) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil // already seeded
	}

	for i := range categories {
		if err := r.db.WithContext(ctx).Create(&categories[i]).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", categories[i].Name, err)
		}
	}
	for i := range products {
		if err := r.Create(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", products[i].Name, err)
		}
	}
	return nil
}
