package order

import (
	"context"

	"github.com/jackc/pgx/v5"

	"shopcore/internal/domain"
)

// Repository persists orders. Item and address snapshots are stored as JSON
// documents; orders are never deleted.
type Repository interface {
	// CreateTx inserts the order inside the checkout transaction so a
	// failed insert rolls back the inventory decrements with it.
	CreateTx(ctx context.Context, tx pgx.Tx, o domain.Order) (*domain.Order, error)

	// OrderNumberExistsTx checks a candidate number inside the checkout
	// transaction before insert.
	OrderNumberExistsTx(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error)

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUser(ctx context.Context, userID, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error)

	// UpdateStatus persists the mutable lifecycle fields of an order. The
	// write is conditional on the row still being in the expected state;
	// a miss returns ErrNotFound for the caller to disambiguate.
	UpdateStatus(ctx context.Context, o domain.Order, expected domain.OrderStatus) (*domain.Order, error)
}
