package services

import (
	"context"
	"strings"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// AddressService manages the saved addresses of a user.
type AddressService struct {
	repo repositories.AddressRepository
}

// NewAddressService creates a new instance of AddressService.
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

func validateAddress(a *models.Address) error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" {
		return invalid("address line and city are required")
	}
	return nil
}

// List returns the saved addresses of the user.
func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	return s.repo.List(ctx, userID)
}

// Create saves a new address for the user.
func (s *AddressService) Create(ctx context.Context, userID string, address *models.Address) error {
	if err := validateAddress(address); err != nil {
		return err
	}
	address.ID = ""
	address.UserID = userID
	return domainErr(s.repo.Create(ctx, address))
}

// Update replaces an address the user owns.
func (s *AddressService) Update(ctx context.Context, userID, id string, address *models.Address) error {
	if err := validateAddress(address); err != nil {
		return err
	}
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return domainErr(err)
	}
	address.ID = current.ID
	address.UserID = userID
	address.CreatedAt = current.CreatedAt
	return domainErr(s.repo.Update(ctx, address))
}

// Delete removes one of the user's addresses.
func (s *AddressService) Delete(ctx context.Context, userID, id string) error {
	return domainErr(s.repo.Delete(ctx, userID, id))
}
