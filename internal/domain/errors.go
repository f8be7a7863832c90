package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when the catalog has no products for a query
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCatalogAPIFailure is returned when the product catalog request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrCatalogNotConfigured is returned when products must be fetched but no catalog client exists
	ErrCatalogNotConfigured = errors.New("catalog client not configured")

	// ErrContractViolation is returned when a collaborator hands over malformed data
	ErrContractViolation = errors.New("upstream contract violation")
)

// ContractViolationError describes malformed or wrongly typed input from a
// collaborator. It is the only error class the matching pipeline surfaces;
// messy but well-typed data degrades confidence instead.
type ContractViolationError struct {
	Component string
	Field     string
	Reason    string
}

func (e *ContractViolationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("contract violation in %s (field '%s'): %s", e.Component, e.Field, e.Reason)
	}
	return fmt.Sprintf("contract violation in %s: %s", e.Component, e.Reason)
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

// NewContractViolationError creates a new ContractViolationError
func NewContractViolationError(component, field, reason string) *ContractViolationError {
	return &ContractViolationError{Component: component, Field: field, Reason: reason}
}
