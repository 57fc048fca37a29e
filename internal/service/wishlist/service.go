package wishlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
	"shopcore/internal/service/inventory"
)

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type wishlistRepo interface {
	GetDefaultByUser(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddItem(ctx context.Context, wishlistID string, item domain.WishlistItem) (*domain.WishlistItem, error)
	GetItem(ctx context.Context, wishlistID, itemID string) (*domain.WishlistItem, error)
	RemoveItem(ctx context.Context, wishlistID, itemID string) error
	RemoveItemTx(ctx context.Context, tx pgx.Tx, wishlistID, itemID string) error
}

type cartRepo interface {
	GetOrCreateTx(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error)
	UpsertItemTx(ctx context.Context, tx pgx.Tx, cartID string, item domain.CartItem) error
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service manages the user's default wishlist. Wishlist entries never hold
// inventory; availability matters only at the moment an entry moves to the
// cart.
type Service struct {
	db        txBeginner
	wishlists wishlistRepo
	carts     cartRepo
	catalog   catalog
	logger    *log.Logger
}

func New(db txBeginner, wishlists wishlistRepo, carts cartRepo, catalog catalog, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{db: db, wishlists: wishlists, carts: carts, catalog: catalog, logger: logger}
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return s.wishlists.GetDefaultByUser(ctx, userID)
}

// AddInput identifies the product (and optionally a variant) to save.
type AddInput struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId"`
	Note      string  `json:"note"`
}

// AddItem saves a product reference onto the default list. The product must
// exist but need not be in stock. Duplicate (product, variant) pairs return
// domain.ErrAlreadyExists.
func (s *Service) AddItem(ctx context.Context, userID string, in AddInput) (*domain.Wishlist, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: productId is required", domain.ErrValidation)
	}
	p, err := s.catalog.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if in.VariantID != nil && p.FindVariant(*in.VariantID) == nil {
		return nil, fmt.Errorf("%w: variant %s", domain.ErrNotFound, *in.VariantID)
	}

	w, err := s.wishlists.GetDefaultByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, err = s.wishlists.AddItem(ctx, w.ID, domain.WishlistItem{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Note:      in.Note,
	})
	if err != nil {
		return nil, err
	}
	return s.wishlists.GetDefaultByUser(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Wishlist, error) {
	w, err := s.wishlists.GetDefaultByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.wishlists.RemoveItem(ctx, w.ID, itemID); err != nil {
		return nil, err
	}
	return s.wishlists.GetDefaultByUser(ctx, userID)
}

// MoveInput completes the selection a wishlist entry lacks: a size when the
// variant carries sizes, and the quantity to buy.
type MoveInput struct {
	SizeID   *string `json:"sizeId"`
	Quantity int     `json:"quantity"`
}

// MoveToCart atomically removes the entry from the wishlist and upserts the
// completed selection into the cart. Merge quantities count against the
// availability check the same way a direct cart add would.
func (s *Service) MoveToCart(ctx context.Context, userID, itemID string, in MoveInput) (*domain.Wishlist, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}

	w, err := s.wishlists.GetDefaultByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry, err := s.wishlists.GetItem(ctx, w.ID, itemID)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.GetByID(ctx, entry.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.AvailabilityError{ProductID: entry.ProductID, Reason: domain.ReasonProductUnavailable}
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := s.carts.GetOrCreateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	merged := in.Quantity
	for _, existing := range c.Items {
		if existing.SameSelection(entry.ProductID, entry.VariantID, in.SizeID) {
			merged += existing.Quantity
			break
		}
	}
	if err := inventory.ValidateSelection(p, entry.VariantID, in.SizeID, merged); err != nil {
		return nil, err
	}

	item := snapshotItem(p, entry, in)
	if err := s.carts.UpsertItemTx(ctx, tx, c.ID, item); err != nil {
		return nil, err
	}
	if err := s.wishlists.RemoveItemTx(ctx, tx, w.ID, itemID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit move to cart: %w", err)
	}
	s.logger.Printf("wishlist %s: moved item %s to cart %s", w.ID, itemID, c.ID)

	return s.wishlists.GetDefaultByUser(ctx, userID)
}

func snapshotItem(p *domain.Product, entry *domain.WishlistItem, in MoveInput) domain.CartItem {
	item := domain.CartItem{
		ProductID:      p.ID,
		VariantID:      entry.VariantID,
		SizeID:         in.SizeID,
		Quantity:       in.Quantity,
		UnitPriceCents: p.BasePriceCents,
		ProductName:    p.Name,
	}
	if entry.VariantID != nil {
		if v := p.FindVariant(*entry.VariantID); v != nil {
			item.UnitPriceCents = v.PriceCents
			item.Color = v.Color
			if len(v.Images) > 0 {
				item.Image = v.Images[0]
			}
			if in.SizeID != nil {
				if sz := v.FindSize(*in.SizeID); sz != nil {
					item.Size = sz.Size
				}
			}
		}
	}
	return item
}
