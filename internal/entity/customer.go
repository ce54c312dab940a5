package entity

import (
	"fmt"
	"strings"
	"time"
)

// Customer is the identity snapshot supplied by the authentication
// collaborator. This core never authenticates; it only reads and updates
// contact details.
type Customer struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Username    string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName    string    `gorm:"size:255" json:"full_name"`
	PhoneNumber string    `gorm:"size:20" json:"phone_number"`
	Address     string    `gorm:"type:text" json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// CleanPhoneNumber strips "+", spaces, dashes and parentheses, then checks
// the remainder is digits only. Returns the cleaned number or an error
// wrapping ErrValidation.
func CleanPhoneNumber(phone string) (string, error) {
	cleaned := strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "").Replace(phone)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty phone number", ErrValidation)
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: phone number %q is not digits only", ErrValidation, phone)
		}
	}
	return cleaned, nil
}
