package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"shopcore/internal/domain"
)

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUser(ctx context.Context, userID, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, o domain.Order, expected domain.OrderStatus) (*domain.Order, error)
}

type restorer interface {
	Restore(ctx context.Context, items []domain.OrderItem)
}

// Service owns the order and payment status machines and their coupled side
// effects. Orders are mutated only through it.
type Service struct {
	orders    orderRepo
	inventory restorer
	logger    *log.Logger
	now       func() time.Time
}

func New(orders orderRepo, inventory restorer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:    orders,
		inventory: inventory,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.orders.GetByIDForUser(ctx, userID, orderID)
}

func (s *Service) GetByNumber(ctx context.Context, userID, orderNumber string) (*domain.Order, error) {
	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, status)
	}
	return s.orders.List(ctx, status, limit, offset)
}

// UpdateInput is the admin order mutation request. Nil fields are left
// untouched.
type UpdateInput struct {
	NewStatus      *domain.OrderStatus `json:"newStatus,omitempty"`
	TrackingNumber *string             `json:"trackingNumber,omitempty"`
	CourierName    *string             `json:"courierName,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
	Reason         string              `json:"reason,omitempty"`
}

// UpdateStatus applies an admin mutation. Status changes go through the
// transition table; illegal ones leave the order untouched.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in UpdateInput) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	expected := o.OrderStatus

	if in.TrackingNumber != nil {
		o.TrackingNumber = *in.TrackingNumber
	}
	if in.CourierName != nil {
		o.CourierName = *in.CourierName
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}

	restoring := false
	if in.NewStatus != nil {
		next := *in.NewStatus
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, next)
		}
		if !o.OrderStatus.CanTransitionTo(next) {
			return nil, &domain.InvalidTransitionError{Kind: "order", From: o.OrderStatus.String(), To: next.String()}
		}
		restoring = next == domain.OrderStatusCancelled
		s.applyTransition(o, next, in.Reason)
	}

	updated, err := s.orders.UpdateStatus(ctx, *o, expected)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.transitionConflict(ctx, orderID, o.OrderStatus)
		}
		return nil, err
	}
	if restoring {
		s.inventory.Restore(ctx, updated.Items)
	}
	return updated, nil
}

// Cancel is the customer-facing view of the same machine, limited to orders
// that have not shipped.
func (s *Service) Cancel(ctx context.Context, userID, orderID, reason string) (*domain.Order, error) {
	o, err := s.orders.GetByIDForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OrderStatus.UserCancellable() {
		return nil, fmt.Errorf("%w: cannot cancel order in %s state", domain.ErrValidation, o.OrderStatus)
	}
	expected := o.OrderStatus

	s.applyTransition(o, domain.OrderStatusCancelled, reason)
	updated, err := s.orders.UpdateStatus(ctx, *o, expected)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.transitionConflict(ctx, orderID, domain.OrderStatusCancelled)
		}
		return nil, err
	}
	s.inventory.Restore(ctx, updated.Items)
	return updated, nil
}

// SetPaymentStatus drives the payment sub-machine. One exception to the
// table: a delivered order may settle pending -> paid post-hoc (late COD
// collection).
func (s *Service) SetPaymentStatus(ctx context.Context, orderID string, next domain.PaymentStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrValidation, next)
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.PaymentStatus.CanTransitionTo(next) {
		deliveredSettlement := o.OrderStatus == domain.OrderStatusDelivered &&
			o.PaymentStatus == domain.PaymentStatusPending && next == domain.PaymentStatusPaid
		if !deliveredSettlement {
			return nil, &domain.InvalidTransitionError{Kind: "payment", From: o.PaymentStatus.String(), To: next.String()}
		}
	}

	o.PaymentStatus = next
	updated, err := s.orders.UpdateStatus(ctx, *o, o.OrderStatus)
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return nil, s.transitionConflict(ctx, orderID, o.OrderStatus)
	}
	return updated, err
}

// transitionConflict disambiguates a compare-and-swap miss: the order moved
// to another state between read and write, or the row is gone.
func (s *Service) transitionConflict(ctx context.Context, orderID string, next domain.OrderStatus) error {
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return &domain.InvalidTransitionError{Kind: "order", From: current.OrderStatus.String(), To: next.String()}
}

// applyTransition stamps the side effects coupled to entering a state.
func (s *Service) applyTransition(o *domain.Order, next domain.OrderStatus, reason string) {
	now := s.now().UTC()
	o.OrderStatus = next
	switch next {
	case domain.OrderStatusCancelled:
		o.CancelledAt = &now
		o.CancelledReason = reason
		if o.PaymentStatus == domain.PaymentStatusPaid {
			o.PaymentStatus = domain.PaymentStatusRefunded
		}
	case domain.OrderStatusShipped:
		o.ShippingDate = &now
	case domain.OrderStatusDelivered:
		o.DeliveredAt = &now
		if o.PaymentMethod == domain.PaymentMethodCOD && o.PaymentStatus == domain.PaymentStatusPending {
			o.PaymentStatus = domain.PaymentStatusPaid
		}
	}
}
