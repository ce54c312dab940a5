package entity

import "time"

// Review is a customer's product rating and comment.
type Review struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   Customer  `json:"customer"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Email      string    `gorm:"size:255" json:"email"`
	Rating     int       `gorm:"not null" json:"rating"`
	Review     string    `gorm:"type:text" json:"review"`
	CreatedAt  time.Time `json:"submitted_date"`
}

func (Review) TableName() string { return "reviews" }
