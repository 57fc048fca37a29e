package product

import (
	"context"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
)

// Repository is the catalog store. Reads return products with their nested
// variants and sizes; writes are limited to inventory counters and the
// derived status label.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListPublished(ctx context.Context, limit, offset int) ([]domain.Product, error)

	// DecrementInventory conditionally subtracts qty from one size's
	// inventory inside the caller's transaction. Returns
	// *domain.AvailabilityError with the remaining quantity when the
	// condition fails.
	DecrementInventory(ctx context.Context, tx pgx.Tx, productID, variantID, sizeID string, qty int) error

	// RecomputeStatus re-derives the product's stock-status label from the
	// summed inventory of its active sizes.
	RecomputeStatus(ctx context.Context, tx pgx.Tx, productID string) (domain.ProductStatus, error)

	// RestoreInventory adds qty back to a size and recomputes the status in
	// its own transaction. Returns domain.ErrNotFound when the size row no
	// longer exists.
	RestoreInventory(ctx context.Context, productID, variantID, sizeID string, qty int) error
}
