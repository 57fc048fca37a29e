package checkout

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/domain"
	"shopcore/internal/service/inventory"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (d *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	d.tx = &fakeTx{}
	return d.tx, nil
}

type stubCarts struct {
	cart        *domain.Cart
	cartErr     error
	removedIDs  []string
	removedCart string
	removeErr   error
}

func (s *stubCarts) GetByUser(context.Context, string) (*domain.Cart, error) {
	return s.cart, s.cartErr
}

func (s *stubCarts) RemoveItemsTx(_ context.Context, _ pgx.Tx, cartID string, itemIDs []string) error {
	s.removedCart = cartID
	s.removedIDs = itemIDs
	return s.removeErr
}

type stubAddresses struct {
	addr *domain.Address
	err  error
}

func (s *stubAddresses) GetByID(context.Context, string, string) (*domain.Address, error) {
	return s.addr, s.err
}

type stubOrders struct {
	created   *domain.Order
	createErr error
	lastOrder domain.Order
	exists    bool
}

func (s *stubOrders) CreateTx(_ context.Context, _ pgx.Tx, o domain.Order) (*domain.Order, error) {
	s.lastOrder = o
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	out := o
	out.ID = "order-1"
	return &out, nil
}

func (s *stubOrders) OrderNumberExistsTx(context.Context, pgx.Tx, string) (bool, error) {
	return s.exists, nil
}

type stubReserver struct {
	err   error
	items []inventory.LineItem
}

func (s *stubReserver) Reserve(_ context.Context, _ pgx.Tx, items []inventory.LineItem) error {
	s.items = items
	return s.err
}

func strPtr(v string) *string { return &v }

func testCart() *domain.Cart {
	return &domain.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []domain.CartItem{
			{ID: "item-1", ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2, UnitPriceCents: 1500, ProductName: "Tee"},
			{ID: "item-2", ProductID: "p2", VariantID: strPtr("v2"), SizeID: strPtr("s2"), Quantity: 1, UnitPriceCents: 4000, ProductName: "Jeans"},
		},
	}
}

func testAddress() *domain.Address {
	return &domain.Address{ID: "addr-1", UserID: "user-1", FirstName: "Asha", City: "Pune", PinCode: "411001", PhoneNumber: "9876543210", Country: "IN"}
}

func newService(db *fakeDB, carts *stubCarts, addrs *stubAddresses, orders *stubOrders, res *stubReserver) *Service {
	return New(db, carts, addrs, orders, res, nil)
}

func TestCheckoutHappyPath(t *testing.T) {
	db := &fakeDB{}
	carts := &stubCarts{cart: testCart()}
	orders := &stubOrders{}
	res := &stubReserver{}
	svc := newService(db, carts, &stubAddresses{addr: testAddress()}, orders, res)

	order, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:     "addr-1",
		CartItemIDs:   []string{"item-1", "item-2"},
		ShippingCents: 500,
		TaxCents:      300,
		DiscountCents: 200,
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	// subtotal 2*1500 + 1*4000 = 7000; total 7000+500+300-200
	assert.Equal(t, int64(7000), order.SubtotalCents)
	assert.Equal(t, int64(7600), order.TotalCents)
	assert.Equal(t, domain.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, "Asha", order.ShippingAddress.FirstName)

	require.Len(t, res.items, 2)
	assert.Equal(t, "p1", res.items[0].ProductID)
	assert.Equal(t, 2, res.items[0].Quantity)

	assert.Equal(t, "cart-1", carts.removedCart)
	assert.Equal(t, []string{"item-1", "item-2"}, carts.removedIDs)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func TestCheckoutPartialSelection(t *testing.T) {
	db := &fakeDB{}
	carts := &stubCarts{cart: testCart()}
	svc := newService(db, carts, &stubAddresses{addr: testAddress()}, &stubOrders{}, &stubReserver{})

	order, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:   "addr-1",
		CartItemIDs: []string{"item-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4000), order.SubtotalCents)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Jeans", order.Items[0].ProductName)
	assert.Equal(t, []string{"item-2"}, carts.removedIDs)
}

func TestCheckoutReservationFailureRollsBack(t *testing.T) {
	db := &fakeDB{}
	carts := &stubCarts{cart: testCart()}
	availErr := &domain.AvailabilityError{ProductID: "p1", Reason: domain.ReasonInsufficientInventory, Available: 1}
	svc := newService(db, carts, &stubAddresses{addr: testAddress()}, &stubOrders{}, &stubReserver{err: availErr})

	_, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:   "addr-1",
		CartItemIDs: []string{"item-1"},
	})
	var gotErr *domain.AvailabilityError
	require.ErrorAs(t, err, &gotErr)
	assert.Equal(t, 1, gotErr.Available)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
	assert.Empty(t, carts.removedIDs)
}

func TestCheckoutOrderInsertFailureRollsBack(t *testing.T) {
	db := &fakeDB{}
	svc := newService(db, &stubCarts{cart: testCart()}, &stubAddresses{addr: testAddress()}, &stubOrders{createErr: domain.ErrAlreadyExists}, &stubReserver{})

	_, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:   "addr-1",
		CartItemIDs: []string{"item-1"},
	})
	require.Error(t, err)
	assert.True(t, db.tx.rolledBack)
}

func TestCheckoutUnknownCartItem(t *testing.T) {
	db := &fakeDB{}
	svc := newService(db, &stubCarts{cart: testCart()}, &stubAddresses{addr: testAddress()}, &stubOrders{}, &stubReserver{})

	_, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:   "addr-1",
		CartItemIDs: []string{"ghost"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, db.tx) // fails before the transaction starts
}

func TestCheckoutMissingAddress(t *testing.T) {
	svc := newService(&fakeDB{}, &stubCarts{cart: testCart()}, &stubAddresses{err: domain.ErrNotFound}, &stubOrders{}, &stubReserver{})
	_, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:   "addr-9",
		CartItemIDs: []string{"item-1"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckoutValidation(t *testing.T) {
	svc := newService(&fakeDB{}, &stubCarts{}, &stubAddresses{}, &stubOrders{}, &stubReserver{})

	_, err := svc.Checkout(context.Background(), "user-1", Input{CartItemIDs: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Checkout(context.Background(), "user-1", Input{AddressID: "a"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Checkout(context.Background(), "user-1", Input{AddressID: "a", CartItemIDs: []string{"x"}, DiscountCents: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Checkout(context.Background(), "user-1", Input{AddressID: "a", CartItemIDs: []string{"x"}, PaymentMethod: "coupon"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCheckoutDiscountExceedingTotal(t *testing.T) {
	svc := newService(&fakeDB{}, &stubCarts{cart: testCart()}, &stubAddresses{addr: testAddress()}, &stubOrders{}, &stubReserver{})
	_, err := svc.Checkout(context.Background(), "user-1", Input{
		AddressID:     "addr-1",
		CartItemIDs:   []string{"item-1"},
		DiscountCents: 99999,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^20260314\d{5}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, GenerateOrderNumber(now))
	}
}
