package entity

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewOrderID(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-20260829-[A-Z0-9]{5}$`)

	id := NewOrderID(now)
	if !pattern.MatchString(id) {
		t.Errorf("NewOrderID() = %q, want match for %s", id, pattern)
	}

	if other := NewOrderID(now); other == id {
		t.Errorf("two generated ids collided: %q", id)
	}
}

func TestOrderItemTotalPrice(t *testing.T) {
	item := &OrderItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("450.0"),
		Price:     decimal.RequireFromString("1350.0"),
	}
	if got := item.TotalPrice(); !got.Equal(decimal.RequireFromString("1350.0")) {
		t.Errorf("TotalPrice() = %s, want 1350.0", got)
	}
}

func TestOrderItemTotalPriceUnsetPrice(t *testing.T) {
	// A partially initialized row must yield zero, not fail.
	empty := &OrderItem{Quantity: 2}
	if got := empty.TotalPrice(); !got.IsZero() {
		t.Errorf("TotalPrice() on empty row = %s, want 0", got)
	}

	// With a unit price but no stored total, derive it.
	derived := &OrderItem{Quantity: 2, UnitPrice: decimal.RequireFromString("450.0")}
	if got := derived.TotalPrice(); !got.Equal(decimal.RequireFromString("900.0")) {
		t.Errorf("TotalPrice() derived = %s, want 900.0", got)
	}
}

func TestCleanPhoneNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+91 90162-47243", "919016247243", false},
		{"(91) 9016 247 243", "919016247243", false},
		{"9016247243", "9016247243", false},
		{"", "", true},
		{"+91-ABCDE", "", true},
		{"phone", "", true},
	}
	for _, tt := range tests {
		got, err := CleanPhoneNumber(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("CleanPhoneNumber(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("CleanPhoneNumber(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CleanPhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
