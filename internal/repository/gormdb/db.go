package gormdb

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/egannguyen/go-storefront/internal/entity"
)

// Migrate creates the schema and the partial unique index that enforces the
// single-open-order-per-customer invariant at the data layer.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Category{},
		&entity.PackSize{},
		&entity.Product{},
		&entity.ProductPackSize{},
		&entity.Customer{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.Payment{},
		&entity.Review{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Partial unique indexes are outside AutoMigrate's vocabulary; both
	// Postgres and SQLite support this form.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_per_customer ON orders (customer_id) WHERE NOT paid",
	).Error; err != nil {
		return fmt.Errorf("failed to create open-order index: %w", err)
	}

	slog.Info("Database migrated")
	return nil
}
