package gormdb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-storefront/internal/entity"
)

func TestCreateAssignsSlug(t *testing.T) {
	db := setupTestDB(t)
	product := createTestProduct(t, db, "Organic Cane Jaggery", "500.00", 10)

	if product.Slug != "organic-cane-jaggery" {
		t.Errorf("slug = %q, want organic-cane-jaggery", product.Slug)
	}
}

func TestCreateDeduplicatesSlug(t *testing.T) {
	db := setupTestDB(t)

	first := createTestProduct(t, db, "Cane Sugar", "100.00", 10)
	second := createTestProduct(t, db, "Cane Sugar", "110.00", 10)

	if second.Slug == first.Slug {
		t.Fatalf("colliding slugs: %q", second.Slug)
	}
	want := fmt.Sprintf("cane-sugar-%d", first.ID)
	if second.Slug != want {
		t.Errorf("slug = %q, want %q (suffixed with colliding id)", second.Slug, want)
	}
}

func TestCreateKeepsPresetSlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	category := &entity.Category{Name: "Preset"}
	if err := db.Create(category).Error; err != nil {
		t.Fatal(err)
	}

	product := &entity.Product{
		CategoryID:    category.ID,
		Name:          "Named Product",
		Slug:          "hand-picked-slug",
		OriginalPrice: decimal.RequireFromString("10.00"),
		Available:     true,
	}
	if err := repo.Create(context.Background(), product); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if product.Slug != "hand-picked-slug" {
		t.Errorf("slug = %q, preset slug must be immutable", product.Slug)
	}
}

func TestFindBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	created := createTestProduct(t, db, "Jaggery Powder", "320.00", 10)

	found, err := repo.FindBySlug(ctx, created.Slug)
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("found product %d, want %d", found.ID, created.ID)
	}

	_, err = repo.FindBySlug(ctx, "no-such-product")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("FindBySlug() unknown slug error = %v, want ErrNotFound", err)
	}
}

func TestPackSizePrice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	category := &entity.Category{Name: "Packs"}
	if err := db.Create(category).Error; err != nil {
		t.Fatal(err)
	}
	product := &entity.Product{
		CategoryID:    category.ID,
		Name:          "Packed Jaggery",
		OriginalPrice: decimal.RequireFromString("500.00"),
		Stock:         10,
		Available:     true,
		PackSizes: []entity.ProductPackSize{
			{PackSize: entity.PackSize{Size: "250g"}, Price: decimal.RequireFromString("140.00")},
			{PackSize: entity.PackSize{Size: "1kg"}, Price: decimal.RequireFromString("480.00")},
		},
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	price, err := repo.PackSizePrice(ctx, product.ID, "250g")
	if err != nil {
		t.Fatalf("PackSizePrice() error = %v", err)
	}
	if !price.Equal(decimal.RequireFromString("140.00")) {
		t.Errorf("price = %s, want 140.00", price)
	}

	_, err = repo.PackSizePrice(ctx, product.ID, "5kg")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("PackSizePrice() missing label error = %v, want ErrNotFound", err)
	}
}

func TestPackSizesSortedByWeight(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	category := &entity.Category{Name: "Sorted"}
	if err := db.Create(category).Error; err != nil {
		t.Fatal(err)
	}
	product := &entity.Product{
		CategoryID:    category.ID,
		Name:          "Sorted Jaggery",
		OriginalPrice: decimal.RequireFromString("500.00"),
		Available:     true,
		PackSizes: []entity.ProductPackSize{
			{PackSize: entity.PackSize{Size: "2kg"}, Price: decimal.RequireFromString("900.00")},
			{PackSize: entity.PackSize{Size: "250g"}, Price: decimal.RequireFromString("140.00")},
			{PackSize: entity.PackSize{Size: "1kg"}, Price: decimal.RequireFromString("480.00")},
		},
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sizes, err := repo.PackSizes(ctx, product.ID)
	if err != nil {
		t.Fatalf("PackSizes() error = %v", err)
	}
	want := []string{"250g", "1kg", "2kg"}
	if len(sizes) != len(want) {
		t.Fatalf("pack sizes = %d, want %d", len(sizes), len(want))
	}
	for i, label := range want {
		if sizes[i].PackSize.Size != label {
			t.Errorf("sizes[%d] = %q, want %q", i, sizes[i].PackSize.Size, label)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	categories := []entity.Category{{Name: "Seeded"}}
	products := []entity.Product{{
		CategoryID:    1,
		Name:          "Seeded Product",
		OriginalPrice: decimal.RequireFromString("10.00"),
		Available:     true,
	}}
	if err := repo.Seed(ctx, categories, products); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if err := repo.Seed(ctx, categories, products); err != nil {
		t.Fatalf("Seed() second call error = %v", err)
	}

	var count int64
	if err := db.Model(&entity.Product{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("products = %d, want 1 after repeated seed", count)
	}
}
