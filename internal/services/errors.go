package services

import "errors"

var (
	// ErrNotFound is returned when a referenced row or object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoFields is the soft failure for a partial update with nothing to write.
	ErrNoFields = errors.New("no fields to update")

	// ErrCartEmpty is returned when a cart checkout is attempted with no items.
	ErrCartEmpty = errors.New("cart is empty")
)
