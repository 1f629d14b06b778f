package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation")

	ErrEmptyCart        = errors.New("cart is empty")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")

	// ErrAddressNotFound covers both a missing address and an address owned
	// by another user; callers never learn which.
	ErrAddressNotFound = errors.New("address not found or permission denied")

	ErrInvalidTransition = errors.New("invalid status transition")

	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotEmpty = errors.New("category still contains products")
)

// InsufficientStockError aborts a checkout when a line's requested quantity
// exceeds the product's available stock. It carries everything the caller
// needs for a user-facing message.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}
