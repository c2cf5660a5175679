package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrInsufficientStock is returned when a variant cannot cover an order line.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStateChanged is returned when a conditional update matched no row.
	ErrStateChanged = errors.New("record state changed")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
