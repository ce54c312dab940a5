package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/egannguyen/go-storefront/internal/entity"
	"github.com/egannguyen/go-storefront/internal/repository"
)

// AccountService reads and updates the customer's contact details. It never
// authenticates; identity comes from the surrounding request layer.
type AccountService struct {
	customers repository.CustomerRepository
}

// NewAccountService creates an AccountService.
func NewAccountService(customers repository.CustomerRepository) *AccountService {
	return &AccountService{customers: customers}
}

// ProfileUpdate carries the mutable contact fields of a profile.
type ProfileUpdate struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// Profile returns the customer's identity snapshot.
func (s *AccountService) Profile(ctx context.Context, customerID uint) (*entity.Customer, error) {
	return s.customers.FindByID(ctx, customerID)
}

// UpdateProfile validates and persists contact details. A phone number that
// is not digits only after stripping formatting is rejected; the stored
// value keeps the customer's original formatting.
func (s *AccountService) UpdateProfile(ctx context.Context, customerID uint, update ProfileUpdate) (*entity.Customer, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if update.Email != "" {
		if !strings.Contains(update.Email, "@") {
			return nil, fmt.Errorf("%w: malformed email %q", entity.ErrValidation, update.Email)
		}
		customer.Email = update.Email
	}
	if update.PhoneNumber != "" {
		if _, err := entity.CleanPhoneNumber(update.PhoneNumber); err != nil {
			return nil, err
		}
		customer.PhoneNumber = update.PhoneNumber
	}
	if update.FullName != "" {
		customer.FullName = update.FullName
	}
	if update.Address != "" {
		customer.Address = update.Address
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
