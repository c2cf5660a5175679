package services

import (
	"errors"
	"fmt"

	"pasar/internal/repositories"
)

// Errors returned by services. Handlers map them to HTTP status codes.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidState       = errors.New("invalid state")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOTPNotFound        = errors.New("otp not found")
	ErrOTPAlreadyUsed     = errors.New("otp already used")
	ErrOTPMismatch        = errors.New("invalid otp")
	ErrTotalMismatch      = errors.New("total does not match order items")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// domainErr lifts repository sentinels into the service taxonomy.
func domainErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repositories.ErrInsufficientStock):
		return fmt.Errorf("%w: %w", ErrInsufficientStock, err)
	case errors.Is(err, repositories.ErrStateChanged):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return err
}
