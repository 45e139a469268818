package global

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrNotFound           = errors.New("not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrValidation         = errors.New("validation failed")
)

// ProductUnavailableError names the product that failed the stock check.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}

func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductUnavailable
}

// ValidationFailure carries the per-field problems found at the boundary.
type ValidationFailure struct {
	Errors []ValidationError
}

func (e *ValidationFailure) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationFailure) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationFailure builds a single-field failure.
func NewValidationFailure(field, message, code string) *ValidationFailure {
	return &ValidationFailure{Errors: []ValidationError{{Field: field, Message: message, Code: code}}}
}
