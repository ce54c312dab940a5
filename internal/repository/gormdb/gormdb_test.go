package gormdb

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/egannguyen/go-storefront/internal/entity"
)

// setupTestDB creates an in-memory SQLite database for testing. A single
// connection keeps the in-memory database alive and visible to every
// goroutine in the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestCustomer(t *testing.T, db *gorm.DB, username string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		Username:    username,
		Email:       username + "@example.com",
		FullName:    "Test " + username,
		PhoneNumber: "+91 9016247243",
		Address:     "12 Cane Street",
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("failed to create test customer: %v", err)
	}
	return customer
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *entity.Product {
	t.Helper()
	category := &entity.Category{Name: "Test Category"}
	if err := db.FirstOrCreate(category, entity.Category{Name: "Test Category"}).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	product := &entity.Product{
		CategoryID:    category.ID,
		Name:          name,
		OriginalPrice: decimal.RequireFromString(price),
		Stock:         stock,
		Available:     true,
	}
	if err := NewProductRepository(db).Create(context.Background(), product); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}
