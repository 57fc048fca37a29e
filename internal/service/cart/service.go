package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"shopcore/internal/domain"
	"shopcore/internal/service/inventory"
)

type cartRepo interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertItem(ctx context.Context, cartID string, item domain.CartItem) error
	SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns cart mutations. Prices, names, and images are snapshotted at
// add time; availability is re-evaluated live on every read instead.
type Service struct {
	carts   cartRepo
	catalog catalog
	logger  *log.Logger
}

func New(carts cartRepo, catalog catalog, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, catalog: catalog, logger: logger}
}

// AddInput identifies one product selection to add. VariantID and SizeID
// stay nil for variantless products.
type AddInput struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId"`
	SizeID    *string `json:"sizeId"`
	Quantity  int     `json:"quantity"`
}

// Get returns the user's cart with IsAvailable recomputed per item. Users
// without a cart get an empty one back rather than an error.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	s.annotateAvailability(ctx, c)
	return c, nil
}

// AddItem validates the selection against the quantity that would result
// after merging with any existing item for the same tuple, then upserts.
func (s *Service) AddItem(ctx context.Context, userID string, in AddInput) (*domain.Cart, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: productId is required", domain.ErrValidation)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}

	p, err := s.catalog.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.AvailabilityError{ProductID: in.ProductID, Reason: domain.ReasonProductUnavailable}
		}
		return nil, err
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := in.Quantity
	for _, existing := range c.Items {
		if existing.SameSelection(in.ProductID, in.VariantID, in.SizeID) {
			merged += existing.Quantity
			break
		}
	}
	if err := inventory.ValidateSelection(p, in.VariantID, in.SizeID, merged); err != nil {
		return nil, err
	}

	item := snapshotItem(p, in)
	if err := s.carts.UpsertItem(ctx, c.ID, item); err != nil {
		return nil, err
	}
	s.logger.Printf("cart %s: add product=%s qty=%d", c.ID, in.ProductID, in.Quantity)
	return s.Get(ctx, userID)
}

// UpdateQuantity replaces an item's quantity, re-validating availability for
// the new target. Zero removes the item.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", domain.ErrValidation)
	}
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := findItem(c, itemID)
	if item == nil {
		return nil, fmt.Errorf("%w: cart item %s", domain.ErrNotFound, itemID)
	}

	if quantity > 0 {
		p, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.AvailabilityError{ProductID: item.ProductID, Reason: domain.ReasonProductUnavailable}
			}
			return nil, err
		}
		if err := inventory.ValidateSelection(p, item.VariantID, item.SizeID, quantity); err != nil {
			return nil, err
		}
	}

	if err := s.carts.SetItemQuantity(ctx, c.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(ctx, c.ID, itemID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.carts.Clear(ctx, c.ID)
}

// annotateAvailability flags each item with whether its selection could be
// checked out at its stored quantity right now. Catalog lookups that fail
// for reasons other than a missing product are treated as unavailable and
// logged, never surfaced: reading a cart must not fail on a flaky lookup.
func (s *Service) annotateAvailability(ctx context.Context, c *domain.Cart) {
	products := make(map[string]*domain.Product, len(c.Items))
	for i := range c.Items {
		item := &c.Items[i]
		p, ok := products[item.ProductID]
		if !ok {
			loaded, err := s.catalog.GetByID(ctx, item.ProductID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("cart %s: availability lookup product=%s: %v", c.ID, item.ProductID, err)
			}
			p = loaded
			products[item.ProductID] = p
		}
		if p == nil {
			item.IsAvailable = false
			continue
		}
		item.IsAvailable = inventory.ValidateSelection(p, item.VariantID, item.SizeID, item.Quantity) == nil
	}
}

func findItem(c *domain.Cart, itemID string) *domain.CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// snapshotItem captures the display fields and unit price at add time so the
// cart stays meaningful even if the catalog changes afterwards.
func snapshotItem(p *domain.Product, in AddInput) domain.CartItem {
	item := domain.CartItem{
		ProductID:      p.ID,
		VariantID:      in.VariantID,
		SizeID:         in.SizeID,
		Quantity:       in.Quantity,
		UnitPriceCents: p.BasePriceCents,
		ProductName:    p.Name,
	}
	if in.VariantID != nil {
		if v := p.FindVariant(*in.VariantID); v != nil {
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
