package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
)

// LineItem is one reservation request: a product selection plus quantity.
// Variant and size identifiers are opaque string keys matched verbatim
// against the catalog's embedded documents.
type LineItem struct {
	ProductID string
	VariantID *string
	SizeID    *string
	Quantity  int
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Product, error)
	DecrementInventory(ctx context.Context, tx pgx.Tx, productID, variantID, sizeID string, qty int) error
	RecomputeStatus(ctx context.Context, tx pgx.Tx, productID string) (domain.ProductStatus, error)
	RestoreInventory(ctx context.Context, productID, variantID, sizeID string, qty int) error
}

// Engine converts validated line items into committed inventory decrements
// and keeps the product stock-status label consistent with the counters.
type Engine struct {
	catalog catalog
	logger  *log.Logger
}

func New(catalog catalog, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{catalog: catalog, logger: logger}
}

// Reserve validates and decrements inventory for every line item inside the
// caller's transaction. The first failing item aborts the whole call; the
// caller's rollback undoes any decrements already applied, so a mid-loop
// failure never leaks a partial reservation.
func (e *Engine) Reserve(ctx context.Context, tx pgx.Tx, items []LineItem) error {
	for _, item := range items {
		p, err := e.catalog.GetByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.AvailabilityError{ProductID: item.ProductID, Reason: domain.ReasonProductUnavailable}
			}
			return err
		}
		if err := ValidateSelection(p, item.VariantID, item.SizeID, item.Quantity); err != nil {
			return err
		}
		if item.VariantID == nil || item.SizeID == nil {
			continue // variantless products carry no size-level inventory
		}
		if err := e.catalog.DecrementInventory(ctx, tx, p.ID, *item.VariantID, *item.SizeID, item.Quantity); err != nil {
			return err
		}
		if _, err := e.catalog.RecomputeStatus(ctx, tx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Restore is the best-effort inverse of Reserve, invoked on cancellation.
// It never fails the caller: restoring inventory for a product, variant, or
// size that was deleted since purchase is meaningless, so errors are logged
// and swallowed.
func (e *Engine) Restore(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if item.VariantID == nil || item.SizeID == nil {
			continue
		}
		err := e.catalog.RestoreInventory(ctx, item.ProductID, *item.VariantID, *item.SizeID, item.Quantity)
		if err != nil {
			e.logger.Printf("inventory: restore product=%s size=%s qty=%d failed: %v",
				item.ProductID, *item.SizeID, item.Quantity, err)
		}
	}
}

// CheckAvailability runs the same validation as Reserve without touching
// inventory. Cart mutations use it so nothing is decremented before
// checkout.
func (e *Engine) CheckAvailability(ctx context.Context, item LineItem) error {
	p, err := e.catalog.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.AvailabilityError{ProductID: item.ProductID, Reason: domain.ReasonProductUnavailable}
		}
		return err
	}
	return ValidateSelection(p, item.VariantID, item.SizeID, item.Quantity)
}

// ValidateSelection applies the availability rules to a loaded product.
// Out-of-stock products are rejected outright; low-stock products remain
// purchasable and the size-level inventory check bounds the quantity.
func ValidateSelection(p *domain.Product, variantID, sizeID *string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if !p.IsPublished || p.Status == domain.StatusOutOfStock {
		return &domain.AvailabilityError{ProductID: p.ID, Reason: domain.ReasonProductUnavailable}
	}

	if !p.HasVariants {
		if minQty := p.MinOrderQuantity; minQty > 1 && qty < minQty {
			return &domain.AvailabilityError{
				ProductID: p.ID,
				Reason:    domain.ReasonBelowMinimumOrder,
				MinOrder:  minQty,
			}
		}
		return nil
	}

	if variantID == nil {
		return fmt.Errorf("%w: variantId is required for this product", domain.ErrValidation)
	}
	variant := p.FindVariant(*variantID)
	if variant == nil || !variant.IsActive {
		return &domain.AvailabilityError{
			ProductID: p.ID,
			VariantID: *variantID,
			Reason:    domain.ReasonVariantUnavailable,
		}
	}

	if len(variant.Sizes) == 0 {
		return nil
	}
	if sizeID == nil {
		return fmt.Errorf("%w: sizeId is required for this variant", domain.ErrValidation)
	}
	size := variant.FindSize(*sizeID)
	if size == nil || !size.IsActive {
		return &domain.AvailabilityError{
			ProductID: p.ID,
			VariantID: *variantID,
			SizeID:    *sizeID,
			Reason:    domain.ReasonSizeUnavailable,
		}
	}
	if size.Inventory < qty {
		return &domain.AvailabilityError{
			ProductID: p.ID,
			VariantID: *variantID,
			SizeID:    *sizeID,
			Reason:    domain.ReasonInsufficientInventory,
			Available: size.Inventory,
		}
	}
	return nil
}
