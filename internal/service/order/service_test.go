package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/domain"
)

type stubRepo struct {
	order      *domain.Order
	getErr     error
	updated    *domain.Order
	updateErr  error
	staleReads int
}

func (s *stubRepo) GetByID(context.Context, string) (*domain.Order, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	copied := *s.order
	if s.staleReads > 0 {
		s.staleReads--
		copied.OrderStatus = domain.OrderStatusPending
	}
	return &copied, nil
}

func (s *stubRepo) GetByIDForUser(ctx context.Context, _, id string) (*domain.Order, error) {
	return s.GetByID(ctx, id)
}

func (s *stubRepo) GetByNumber(ctx context.Context, _ string) (*domain.Order, error) {
	return s.GetByID(ctx, "")
}

func (s *stubRepo) ListByUser(context.Context, string, int, int) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubRepo) List(context.Context, domain.OrderStatus, int, int) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, o domain.Order, expected domain.OrderStatus) (*domain.Order, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.order.OrderStatus != expected {
		return nil, domain.ErrNotFound
	}
	stored := o
	s.order = &stored
	s.updated = &stored
	return &stored, nil
}

type stubRestorer struct {
	restored [][]domain.OrderItem
}

func (s *stubRestorer) Restore(_ context.Context, items []domain.OrderItem) {
	s.restored = append(s.restored, items)
}

func strPtr(v string) *string { return &v }

func codOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:            "o1",
		OrderNumber:   "2026031412345",
		UserID:        "user-1",
		OrderStatus:   status,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCOD,
		Items: []domain.OrderItem{
			{ProductID: "p1", VariantID: strPtr("v1"), SizeID: strPtr("s1"), Quantity: 2},
		},
	}
}

func statusPtr(s domain.OrderStatus) *domain.OrderStatus { return &s }

func fixedNow(svc *Service) time.Time {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return now
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	repo := &stubRepo{order: codOrder(domain.OrderStatusShipped)}
	svc := New(repo, &stubRestorer{}, nil)

	_, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{NewStatus: statusPtr(domain.OrderStatusPending)})
	var transErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "shipped", transErr.From)
	assert.Equal(t, "pending", transErr.To)
	assert.Nil(t, repo.updated, "state must remain unchanged")
}

func TestShippedStampsShippingDate(t *testing.T) {
	repo := &stubRepo{order: codOrder(domain.OrderStatusProcessing)}
	svc := New(repo, &stubRestorer{}, nil)
	now := fixedNow(svc)

	updated, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{
		NewStatus:      statusPtr(domain.OrderStatusShipped),
		TrackingNumber: strPtr("TRK123"),
		CourierName:    strPtr("BlueDart"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.OrderStatus)
	require.NotNil(t, updated.ShippingDate)
	assert.Equal(t, now, *updated.ShippingDate)
	assert.Equal(t, "TRK123", updated.TrackingNumber)
	assert.Equal(t, "BlueDart", updated.CourierName)
}

func TestDeliveredAutoPaysCOD(t *testing.T) {
	repo := &stubRepo{order: codOrder(domain.OrderStatusShipped)}
	svc := New(repo, &stubRestorer{}, nil)
	now := fixedNow(svc)

	updated, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{NewStatus: statusPtr(domain.OrderStatusDelivered)})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.DeliveredAt)
	assert.Equal(t, now, *updated.DeliveredAt)
}

func TestDeliveredLeavesPrepaidPaymentAlone(t *testing.T) {
	o := codOrder(domain.OrderStatusShipped)
	o.PaymentMethod = domain.PaymentMethodPrepaid
	repo := &stubRepo{order: o}
	svc := New(repo, &stubRestorer{}, nil)

	updated, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{NewStatus: statusPtr(domain.OrderStatusDelivered)})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, updated.PaymentStatus)
}

func TestAdminCancelRestoresInventoryAndRefundsPaid(t *testing.T) {
	o := codOrder(domain.OrderStatusConfirmed)
	o.PaymentStatus = domain.PaymentStatusPaid
	repo := &stubRepo{order: o}
	restorer := &stubRestorer{}
	svc := New(repo, restorer, nil)

	updated, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{
		NewStatus: statusPtr(domain.OrderStatusCancelled),
		Reason:    "stock damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, updated.PaymentStatus)
	assert.Equal(t, "stock damaged", updated.CancelledReason)
	require.NotNil(t, updated.CancelledAt)
	require.Len(t, restorer.restored, 1)
	assert.Equal(t, updated.Items, restorer.restored[0])
}

func TestUserCancelAllowedStates(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusProcessing} {
		repo := &stubRepo{order: codOrder(status)}
		restorer := &stubRestorer{}
		svc := New(repo, restorer, nil)

		updated, err := svc.Cancel(context.Background(), "user-1", "o1", "changed my mind")
		require.NoErrorf(t, err, "cancel from %s", status)
		assert.Equal(t, domain.OrderStatusCancelled, updated.OrderStatus)
		assert.Len(t, restorer.restored, 1)
	}
}

func TestUserCancelRejectedAfterShipping(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		repo := &stubRepo{order: codOrder(status)}
		restorer := &stubRestorer{}
		svc := New(repo, restorer, nil)

		_, err := svc.Cancel(context.Background(), "user-1", "o1", "too late")
		require.ErrorIsf(t, err, domain.ErrValidation, "cancel from %s", status)
		assert.Contains(t, err.Error(), string(status))
		assert.Empty(t, restorer.restored, "no restore on rejected cancel")
	}
}

func TestCancelledOrderCannotBeCancelledAgain(t *testing.T) {
	// terminal-state rejection is what guarantees restore is not
	// double-credited
	repo := &stubRepo{order: codOrder(domain.OrderStatusCancelled)}
	restorer := &stubRestorer{}
	svc := New(repo, restorer, nil)

	_, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{NewStatus: statusPtr(domain.OrderStatusCancelled)})
	var transErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Empty(t, restorer.restored)
}

func TestConcurrentCancelRestoresInventoryOnce(t *testing.T) {
	repo := &stubRepo{order: codOrder(domain.OrderStatusPending)}
	restorer := &stubRestorer{}
	svc := New(repo, restorer, nil)

	_, err := svc.Cancel(context.Background(), "user-1", "o1", "changed my mind")
	require.NoError(t, err)

	// the second caller read the order before the first write landed; the
	// conditional write must miss and no second restore may run
	repo.staleReads = 1
	_, err = svc.Cancel(context.Background(), "user-1", "o1", "changed my mind")
	var transErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "cancelled", transErr.From)
	assert.Len(t, restorer.restored, 1, "inventory restored exactly once")
}

func TestSetPaymentStatusTable(t *testing.T) {
	o := codOrder(domain.OrderStatusConfirmed)
	o.PaymentStatus = domain.PaymentStatusRefunded
	repo := &stubRepo{order: o}
	svc := New(repo, &stubRestorer{}, nil)

	_, err := svc.SetPaymentStatus(context.Background(), "o1", domain.PaymentStatusPaid)
	var transErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "payment", transErr.Kind)
}

func TestSetPaymentStatusDeliveredSettlement(t *testing.T) {
	o := codOrder(domain.OrderStatusDelivered)
	repo := &stubRepo{order: o}
	svc := New(repo, &stubRestorer{}, nil)

	updated, err := svc.SetPaymentStatus(context.Background(), "o1", domain.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)
}

func TestGetByNumberChecksOwnership(t *testing.T) {
	repo := &stubRepo{order: codOrder(domain.OrderStatusPending)}
	svc := New(repo, &stubRestorer{}, nil)

	_, err := svc.GetByNumber(context.Background(), "someone-else", "2026031412345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetByNumber(context.Background(), "user-1", "2026031412345")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
}
