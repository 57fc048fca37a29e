package address

import (
	"context"

	"shopcore/internal/domain"
)

// Repository persists the per-user address book. Every write that touches
// IsDefault runs the unset-others and set steps in one transaction so no
// reader can observe two defaults.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Address, error)
	Create(ctx context.Context, addr domain.Address) (*domain.Address, error)
	Update(ctx context.Context, addr domain.Address) (*domain.Address, error)

	// Delete removes the address; when it was the default, the most
	// recently created remaining address is promoted in the same
	// transaction.
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}
