package checkout

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
	"shopcore/internal/service/inventory"
)

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type cartRepo interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	RemoveItemsTx(ctx context.Context, tx pgx.Tx, cartID string, itemIDs []string) error
}

type addressRepo interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Address, error)
}

type orderRepo interface {
	CreateTx(ctx context.Context, tx pgx.Tx, o domain.Order) (*domain.Order, error)
	OrderNumberExistsTx(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error)
}

type reserver interface {
	Reserve(ctx context.Context, tx pgx.Tx, items []inventory.LineItem) error
}

// Service turns a user's cart selection into a priced, inventory-reserving
// order. The reservation, the order insert, and the cart cleanup share one
// transaction: either all of them commit or none do.
type Service struct {
	db        txBeginner
	carts     cartRepo
	addresses addressRepo
	orders    orderRepo
	engine    reserver
	logger    *log.Logger
}

func New(db txBeginner, carts cartRepo, addresses addressRepo, orders orderRepo, engine reserver, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		db:        db,
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		engine:    engine,
		logger:    logger,
	}
}

// Input is the checkout request. Shipping, discount, and tax are opaque
// additive inputs; the order invariant total = subtotal + shipping + tax -
// discount is enforced here.
type Input struct {
	AddressID     string               `json:"addressId"`
	CartItemIDs   []string             `json:"cartItemIds"`
	ShippingCents int64                `json:"shippingCents"`
	DiscountCents int64                `json:"discountCents"`
	TaxCents      int64                `json:"taxCents"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Notes         string               `json:"notes,omitempty"`
}

const numberAttempts = 5

// Checkout places an order from the selected cart items.
func (s *Service) Checkout(ctx context.Context, userID string, in Input) (*domain.Order, error) {
	if in.AddressID == "" {
		return nil, fmt.Errorf("%w: addressId required", domain.ErrValidation)
	}
	if len(in.CartItemIDs) == 0 {
		return nil, fmt.Errorf("%w: cartItemIds required", domain.ErrValidation)
	}
	if in.ShippingCents < 0 || in.DiscountCents < 0 || in.TaxCents < 0 {
		return nil, fmt.Errorf("%w: charges must not be negative", domain.ErrValidation)
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCOD
	}
	if method != domain.PaymentMethodCOD && method != domain.PaymentMethodPrepaid {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.PaymentMethod)
	}

	addr, err := s.addresses.GetByID(ctx, userID, in.AddressID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: address %s", domain.ErrNotFound, in.AddressID)
		}
		return nil, err
	}

	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
		}
		return nil, err
	}

	selected, err := selectItems(cart, in.CartItemIDs)
	if err != nil {
		return nil, err
	}

	lineItems := make([]inventory.LineItem, 0, len(selected))
	orderItems := make([]domain.OrderItem, 0, len(selected))
	var subtotal int64
	for _, item := range selected {
		lineItems = append(lineItems, inventory.LineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			SizeID:    item.SizeID,
			Quantity:  item.Quantity,
		})
		lineTotal := item.UnitPriceCents * int64(item.Quantity)
		subtotal += lineTotal
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			VariantID:       item.VariantID,
			SizeID:          item.SizeID,
			Color:           item.Color,
			Size:            item.Size,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			TotalPriceCents: lineTotal,
			Image:           item.Image,
		})
	}

	total := subtotal + in.ShippingCents + in.TaxCents - in.DiscountCents
	if total < 0 {
		return nil, fmt.Errorf("%w: discount exceeds order total", domain.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.engine.Reserve(ctx, tx, lineItems); err != nil {
		return nil, err
	}

	orderNumber, err := s.freeOrderNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	created, err := s.orders.CreateTx(ctx, tx, domain.Order{
		OrderNumber:     orderNumber,
		UserID:          userID,
		Items:           orderItems,
		ShippingAddress: domain.SnapshotAddress(*addr),
		SubtotalCents:   subtotal,
		ShippingCents:   in.ShippingCents,
		DiscountCents:   in.DiscountCents,
		TaxCents:        in.TaxCents,
		TotalCents:      total,
		OrderStatus:     domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   method,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.RemoveItemsTx(ctx, tx, cart.ID, in.CartItemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Printf("checkout: order %s placed user=%s items=%d total_cents=%d",
		created.OrderNumber, userID, len(created.Items), created.TotalCents)
	return created, nil
}

func selectItems(cart *domain.Cart, ids []string) ([]domain.CartItem, error) {
	byID := make(map[string]domain.CartItem, len(cart.Items))
	for _, item := range cart.Items {
		byID[item.ID] = item
	}
	selected := make([]domain.CartItem, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: cart item %s", domain.ErrNotFound, id)
		}
		selected = append(selected, item)
	}
	return selected, nil
}

// freeOrderNumber picks an unused order number of the form YYYYMMDD plus a
// 5-digit random suffix. The existence check runs inside the checkout
// transaction; the unique constraint on orders.order_number backstops the
// residual race.
func (s *Service) freeOrderNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		candidate := GenerateOrderNumber(time.Now().UTC())
		exists, err := s.orders.OrderNumberExistsTx(ctx, tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", errors.New("order number collision")
}

// GenerateOrderNumber builds the human-lookup key: date prefix plus a
// 5-digit random suffix. Unique but not unpredictable; not suitable for
// security-sensitive lookup.
func GenerateOrderNumber(now time.Time) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%s%05d", now.Format("20060102"), now.UnixNano()%100000)
	}
	suffix := binary.BigEndian.Uint32(buf[:]) % 100000
	return fmt.Sprintf("%s%05d", now.Format("20060102"), suffix)
}
