package entity

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products in the catalog.
type Category struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// PackSize is a named quantity variant, e.g. "250g" or "1kg".
type PackSize struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Size string `gorm:"size:100;not null" json:"size"`
}

// ProductPackSize attaches a per-pack price override to a product.
// A product has at most one override per pack size.
type ProductPackSize struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	ProductID  uint            `gorm:"not null;uniqueIndex:idx_product_pack" json:"product_id"`
	PackSizeID uint            `gorm:"not null;uniqueIndex:idx_product_pack" json:"pack_size_id"`
	PackSize   PackSize        `json:"pack_size"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Product is a catalog item. The slug is unique and immutable once assigned.
type Product struct {
	ID                 uint              `gorm:"primarykey" json:"id"`
	CategoryID         uint              `gorm:"index;not null" json:"category_id"`
	Category           Category          `json:"category"`
	Name               string            `gorm:"size:255;not null" json:"name"`
	Slug               string            `gorm:"size:255;uniqueIndex" json:"slug"`
	Description        string            `gorm:"type:text" json:"description"`
	OriginalPrice      decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"original_price"`
	DiscountPercentage *uint             `json:"discount_percentage,omitempty"`
	Stock              int               `gorm:"not null;default:0" json:"stock"`
	Available          bool              `gorm:"not null;default:true" json:"available"`
	PackSizes          []ProductPackSize `gorm:"foreignKey:ProductID" json:"pack_sizes,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }

// DiscountedPrice returns the selling price truncated toward zero to one
// decimal place. Truncation, not half-up rounding, is the contract: the
// result is reproducible across stores and re-reads.
func (p *Product) DiscountedPrice() decimal.Decimal {
	price := p.OriginalPrice
	if p.DiscountPercentage != nil && *p.DiscountPercentage > 0 {
		pct := decimal.NewFromInt(int64(*p.DiscountPercentage))
		discount := price.Mul(pct).Div(decimal.NewFromInt(100))
		price = price.Sub(discount)
	}
	return price.Truncate(1)
}

// PriceForPackSize returns the override price for the given pack-size label,
// or false when the product carries no override for it.
func (p *Product) PriceForPackSize(label string) (decimal.Decimal, bool) {
	for _, pps := range p.PackSizes {
		if pps.PackSize.Size == label {
			return pps.Price, true
		}
	}
	return decimal.Decimal{}, false
}

// DiscountedPrice applies the owning product's discount to the pack override.
// Discounted pack prices round to a whole amount; undiscounted ones keep one
// decimal place, half up.
func (pps *ProductPackSize) DiscountedPrice(product *Product) decimal.Decimal {
	if product.DiscountPercentage != nil && *product.DiscountPercentage > 0 {
		pct := decimal.NewFromInt(int64(*product.DiscountPercentage))
		discount := pps.Price.Mul(pct).Div(decimal.NewFromInt(100))
		return pps.Price.Sub(discount).Round(0)
	}
	return pps.Price.Round(1)
}

// NormalizedWeight converts a pack-size label to grams for ordering purposes
// only; the display label is untouched. Sizes in kilograms count ×1000.
// Labels without a recognizable unit normalize to zero.
func NormalizedWeight(label string) int {
	s := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(s, "kg"):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "kg")))
		if err != nil {
			return 0
		}
		return n * 1000
	case strings.Contains(s, "g"):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "g")))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// SortPackSizes orders pack-size overrides ascending by normalized weight.
func SortPackSizes(sizes []ProductPackSize) {
	sort.SliceStable(sizes, func(i, j int) bool {
		return NormalizedWeight(sizes[i].PackSize.Size) < NormalizedWeight(sizes[j].PackSize.Size)
	})
}
