package cart

import (
	"context"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
)

// Repository persists per-user carts. Derived totals are recomputed from the
// full item list inside the same transaction as every mutation, never
// adjusted in place.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)

	// UpsertItem inserts the line item, or adds its quantity onto an
	// existing item with the same (product, variant, size) tuple.
	UpsertItem(ctx context.Context, cartID string, item domain.CartItem) error

	// SetItemQuantity replaces an item's quantity; zero or less removes it.
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error

	// Transaction-scoped variants used by checkout and the wishlist move.
	GetOrCreateTx(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error)
	UpsertItemTx(ctx context.Context, tx pgx.Tx, cartID string, item domain.CartItem) error
	RemoveItemsTx(ctx context.Context, tx pgx.Tx, cartID string, itemIDs []string) error
}
