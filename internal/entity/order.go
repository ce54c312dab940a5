package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a checkout basket. At most one Order with Paid=false exists per
// customer at any time; that row is the customer's open cart. OrderID is the
// user-visible identifier, assigned once at checkout and never regenerated.
type Order struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	CustomerID uint        `gorm:"not null;index" json:"customer_id"`
	Customer   Customer    `json:"customer"`
	OrderID    string      `gorm:"size:20" json:"order_id"`
	Paid       bool        `gorm:"not null;default:false" json:"paid"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one product+pack-size line in an order. UnitPrice is the
// resolved per-unit price at add time; Price is the stored line total and is
// recomputed as UnitPrice×Quantity on every quantity change, never recovered
// by division.
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;uniqueIndex:idx_order_product_pack" json:"order_id"`
	ProductID uint            `gorm:"not null;uniqueIndex:idx_order_product_pack" json:"product_id"`
	Product   Product         `json:"product"`
	PackSize  string          `gorm:"size:50;default:'';uniqueIndex:idx_order_product_pack" json:"pack_size"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string { return "order_items" }

// TotalPrice returns the stored line total. A partially initialized row with
// no price yields zero rather than failing.
func (i *OrderItem) TotalPrice() decimal.Decimal {
	if i.Price.IsZero() && i.UnitPrice.IsPositive() && i.Quantity > 0 {
		return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	}
	return i.Price
}

// NewOrderID builds a user-visible order identifier of the form
// ORD-<YYYYMMDD>-<5-char uppercase token>.
func NewOrderID(now time.Time) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:5]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), token)
}
