package domain

import (
	"errors"
	"fmt"
)

// Domain-level errors
var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductNotFoundError is returned when no product matches the requested ID.
type ProductNotFoundError struct {
	ID int64
}

func NewProductNotFoundError(id int64) *ProductNotFoundError {
	return &ProductNotFoundError{ID: id}
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%d", e.ID)
}

// Is lets errors.Is match the ErrProductNotFound sentinel.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}
