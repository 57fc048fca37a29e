package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/domain"
)

type stubCarts struct {
	cart        *domain.Cart
	upserted    []domain.CartItem
	setQuantity map[string]int
	removed     []string
	cleared     bool
}

func (s *stubCarts) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	if s.cart == nil {
		return nil, fmt.Errorf("cart for %s: %w", userID, domain.ErrNotFound)
	}
	copied := *s.cart
	copied.Items = append([]domain.CartItem(nil), s.cart.Items...)
	return &copied, nil
}

func (s *stubCarts) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	if s.cart == nil {
		s.cart = &domain.Cart{ID: "c1", UserID: userID, Items: []domain.CartItem{}}
	}
	return s.GetByUser(ctx, userID)
}

func (s *stubCarts) UpsertItem(_ context.Context, cartID string, item domain.CartItem) error {
	s.upserted = append(s.upserted, item)
	for i := range s.cart.Items {
		if s.cart.Items[i].SameSelection(item.ProductID, item.VariantID, item.SizeID) {
			s.cart.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	item.ID = fmt.Sprintf("i%d", len(s.cart.Items)+1)
	item.CartID = cartID
	s.cart.Items = append(s.cart.Items, item)
	return nil
}

func (s *stubCarts) SetItemQuantity(_ context.Context, _, itemID string, quantity int) error {
	if s.setQuantity == nil {
		s.setQuantity = map[string]int{}
	}
	s.setQuantity[itemID] = quantity
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == itemID {
			if quantity <= 0 {
				s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			} else {
				s.cart.Items[i].Quantity = quantity
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubCarts) RemoveItem(_ context.Context, _, itemID string) error {
	s.removed = append(s.removed, itemID)
	return nil
}

func (s *stubCarts) Clear(context.Context, string) error {
	s.cleared = true
	return nil
}

type stubCatalog struct {
	products map[string]*domain.Product
}

func (s *stubCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func strPtr(v string) *string { return &v }

func shirt(inventory int) *domain.Product {
	return &domain.Product{
		ID:          "p1",
		Name:        "Oxford Shirt",
		HasVariants: true,
		Status:      domain.StockStatusFor(inventory),
		IsPublished: true,
		Variants: []domain.Variant{
			{
				ID:         "v1",
				Color:      "navy",
				PriceCents: 2500,
				Images:     []string{"shirt-navy.jpg"},
				IsActive:   true,
				Sizes: []domain.Size{
					{ID: "s1", Size: "M", Inventory: inventory, IsActive: true},
				},
			},
		},
	}
}

func newService(products ...*domain.Product) (*Service, *stubCarts) {
	catalog := &stubCatalog{products: map[string]*domain.Product{}}
	for _, p := range products {
		catalog.products[p.ID] = p
	}
	carts := &stubCarts{}
	return New(carts, catalog, nil), carts
}

func TestAddItemSnapshotsCatalogFields(t *testing.T) {
	svc, carts := newService(shirt(20))

	c, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2,
	})
	require.NoError(t, err)

	require.Len(t, carts.upserted, 1)
	got := carts.upserted[0]
	assert.Equal(t, int64(2500), got.UnitPriceCents)
	assert.Equal(t, "Oxford Shirt", got.ProductName)
	assert.Equal(t, "navy", got.Color)
	assert.Equal(t, "M", got.Size)
	assert.Equal(t, "shirt-navy.jpg", got.Image)

	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].IsAvailable)
}

func TestAddItemMergesSameTuple(t *testing.T) {
	svc, carts := newService(shirt(5))

	_, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 3,
	})
	require.NoError(t, err)

	// second add of the same tuple would merge to 6 against inventory 5
	_, err = svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 3,
	})
	var availErr *domain.AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, domain.ReasonInsufficientInventory, availErr.Reason)
	assert.Equal(t, 5, availErr.Available)

	// merging to 5 exactly is fine
	c, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Len(t, carts.upserted, 2)
}

func TestAddItemDistinctTuplesStaySeparate(t *testing.T) {
	p := shirt(20)
	p.Variants[0].Sizes = append(p.Variants[0].Sizes, domain.Size{ID: "s2", Size: "L", Inventory: 20, IsActive: true})
	svc, _ := newService(p)

	_, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 1,
	})
	require.NoError(t, err)
	c, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s2"), Quantity: 1,
	})
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newService()

	_, err := svc.AddItem(context.Background(), "u1", AddInput{ProductID: "missing", Quantity: 1})
	var availErr *domain.AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, domain.ReasonProductUnavailable, availErr.Reason)
}

func TestAddItemVariantlessMinimumOrder(t *testing.T) {
	p := &domain.Product{
		ID: "bulk", Name: "Fabric Roll", MinOrderQuantity: 5,
		BasePriceCents: 900, Status: domain.StatusInStock, IsPublished: true,
	}
	svc, carts := newService(p)

	_, err := svc.AddItem(context.Background(), "u1", AddInput{ProductID: "bulk", Quantity: 2})
	var availErr *domain.AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, domain.ReasonBelowMinimumOrder, availErr.Reason)
	assert.Equal(t, 5, availErr.MinOrder)

	c, err := svc.AddItem(context.Background(), "u1", AddInput{ProductID: "bulk", Quantity: 5})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(900), carts.upserted[0].UnitPriceCents)
}

func TestGetAnnotatesAvailability(t *testing.T) {
	p := shirt(10)
	svc, _ := newService(p)

	_, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2,
	})
	require.NoError(t, err)

	// size sells out after the item was added
	p.Variants[0].Sizes[0].Inventory = 0

	c, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.False(t, c.Items[0].IsAvailable)
	assert.Equal(t, int64(2500), c.Items[0].UnitPriceCents, "snapshot price untouched")
}

func TestGetWithoutCartReturnsEmpty(t *testing.T) {
	svc, _ := newService()

	c, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, "u1", c.UserID)
}

func TestUpdateQuantityRevalidates(t *testing.T) {
	svc, carts := newService(shirt(5))

	c, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2,
	})
	require.NoError(t, err)
	itemID := c.Items[0].ID

	_, err = svc.UpdateQuantity(context.Background(), "u1", itemID, 9)
	var availErr *domain.AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, domain.ReasonInsufficientInventory, availErr.Reason)

	c, err = svc.UpdateQuantity(context.Background(), "u1", itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.Equal(t, 4, carts.setQuantity[itemID])
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	svc, _ := newService(shirt(5))

	c, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2,
	})
	require.NoError(t, err)

	c, err = svc.UpdateQuantity(context.Background(), "u1", c.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	svc, _ := newService(shirt(5))
	_, err := svc.AddItem(context.Background(), "u1", AddInput{
		ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 1,
	})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(context.Background(), "u1", "nope", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClearWithoutCartIsNoop(t *testing.T) {
	svc, carts := newService()
	require.NoError(t, svc.Clear(context.Background(), "u1"))
	assert.False(t, carts.cleared)
}
