package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/egannguyen/go-storefront/internal/cache"
	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
)

const (
	cacheKeyAllProducts = "products:all"
	cacheKeyProduct     = "product:" // + slug
)

// CatalogService serves read-mostly catalog data with a cache-aside layer
// and handles product and review writes.
type CatalogService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	cache    *cache.Cache
}

// NewCatalogService creates a CatalogService. The cache may be nil, in which
// case every read goes to the database.
func NewCatalogService(products repository.ProductRepository, reviews repository.ReviewRepository, c *cache.Cache) *CatalogService {
	return &CatalogService{
		products: products,
		reviews:  reviews,
		cache:    c,
	}
}

// Products returns all available products.
func (s *CatalogService) Products(ctx context.Context) ([]entity.Product, error) {
	if s.cache != nil {
		var cached []entity.Product
		hit, err := s.cache.Get(ctx, cacheKeyAllProducts, &cached)
		if err != nil {
			slog.Warn("Catalog cache read failed, falling back to database", "err", err)
		} else if hit {
			return cached, nil
		}
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyAllProducts, products); err != nil {
			slog.Warn("Catalog cache write failed", "err", err)
		}
	}
	return products, nil
}

// ProductBySlug returns one product by its slug.
func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	if s.cache != nil {
		var cached entity.Product
		hit, err := s.cache.Get(ctx, cacheKeyProduct+slug, &cached)
		if err != nil {
			slog.Warn("Catalog cache read failed, falling back to database", "err", err)
		} else if hit {
			return &cached, nil
		}
	}

	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyProduct+slug, product); err != nil {
			slog.Warn("Catalog cache write failed", "err", err)
		}
	}
	return product, nil
}

// PackSizes returns the product's pack-size overrides sorted by normalized
// weight.
func (s *CatalogService) PackSizes(ctx context.Context, productID uint) ([]entity.ProductPackSize, error) {
	return s.products.PackSizes(ctx, productID)
}

// CreateProduct validates and inserts a product; the repository derives a
// unique slug from its name.
func (s *CatalogService) CreateProduct(ctx context.Context, p *entity.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", entity.ErrValidation)
	}
	if p.OriginalPrice.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", entity.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", entity.ErrValidation)
	}
	if p.DiscountPercentage != nil && *p.DiscountPercentage > 100 {
		return fmt.Errorf("%w: discount percentage must be at most 100", entity.ErrValidation)
	}

	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.Slug)
	return nil
}

// UpdateProduct persists catalog changes and invalidates cached reads.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *entity.Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", entity.ErrValidation)
	}
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.Slug)
	return nil
}

// Reviews lists a product's reviews, newest first.
func (s *CatalogService) Reviews(ctx context.Context, productID uint) ([]entity.Review, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.FindByProduct(ctx, productID)
}

// AddReview records a customer's product review. Rating must be 1..5.
func (s *CatalogService) AddReview(ctx context.Context, customer *entity.Customer, productID uint, rating int, text string) (*entity.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", entity.ErrValidation)
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	review := &entity.Review{
		CustomerID: customer.ID,
		ProductID:  productID,
		Email:      customer.Email,
		Rating:     rating,
		Review:     text,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *CatalogService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyAllProducts, cacheKeyProduct+slug); err != nil {
		slog.Warn("Catalog cache invalidation failed", "err", err)
	}
}
