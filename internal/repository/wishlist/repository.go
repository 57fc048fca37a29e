package wishlist

import (
	"context"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
)

// Repository persists per-user wishlists. The default list is created
// lazily on first access.
type Repository interface {
	GetDefaultByUser(ctx context.Context, userID string) (*domain.Wishlist, error)

	// AddItem returns domain.ErrAlreadyExists when the (product, variant)
	// pair is already on the list.
	AddItem(ctx context.Context, wishlistID string, item domain.WishlistItem) (*domain.WishlistItem, error)
	GetItem(ctx context.Context, wishlistID, itemID string) (*domain.WishlistItem, error)
	RemoveItem(ctx context.Context, wishlistID, itemID string) error

	// RemoveItemTx participates in the all-or-nothing move-to-cart
	// transaction.
	RemoveItemTx(ctx context.Context, tx pgx.Tx, wishlistID, itemID string) error
}
