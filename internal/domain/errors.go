package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found or is not
	// owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation marks malformed or missing input; wrap with detail.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated indicates a missing, invalid, or expired credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound indicates the authenticated principal no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// AvailabilityReason classifies why a line item cannot be fulfilled.
type AvailabilityReason string

const (
	ReasonProductUnavailable    AvailabilityReason = "product_unavailable"
	ReasonVariantUnavailable    AvailabilityReason = "variant_unavailable"
	ReasonSizeUnavailable       AvailabilityReason = "size_unavailable"
	ReasonInsufficientInventory AvailabilityReason = "insufficient_inventory"
	ReasonBelowMinimumOrder     AvailabilityReason = "below_minimum_order"
)

// AvailabilityError reports that a product, variant, or size cannot satisfy
// a requested quantity. Available carries the remaining stock when known so
// clients can offer a reduced-quantity retry without re-querying.
type AvailabilityError struct {
	ProductID string
	VariantID string
	SizeID    string
	Reason    AvailabilityReason
	Available int
	MinOrder  int
}

func (e *AvailabilityError) Error() string {
	switch e.Reason {
	case ReasonInsufficientInventory:
		return fmt.Sprintf("insufficient inventory for product %s: %d available", e.ProductID, e.Available)
	case ReasonBelowMinimumOrder:
		return fmt.Sprintf("product %s requires a minimum order quantity of %d", e.ProductID, e.MinOrder)
	case ReasonVariantUnavailable:
		return fmt.Sprintf("variant %s of product %s is unavailable", e.VariantID, e.ProductID)
	case ReasonSizeUnavailable:
		return fmt.Sprintf("size %s of product %s is unavailable", e.SizeID, e.ProductID)
	default:
		return fmt.Sprintf("product %s is unavailable", e.ProductID)
	}
}

// InvalidTransitionError names both ends of a rejected status change.
type InvalidTransitionError struct {
	Kind string // "order" or "payment"
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %s to %s", e.Kind, e.From, e.To)
}
