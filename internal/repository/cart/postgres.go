package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcore/internal/domain"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, user_id::text, total_items, total_price_cents, created_at`

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return fetchCart(ctx, r.pool, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID)
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	return getOrCreate(ctx, r.pool, userID)
}

func (r *postgresRepo) GetOrCreateTx(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error) {
	return getOrCreate(ctx, tx, userID)
}

func getOrCreate(ctx context.Context, q querier, userID string) (*domain.Cart, error) {
	const query = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING ` + cartColumns + `
`
	return fetchCart(ctx, q, query, userID)
}

func fetchCart(ctx context.Context, q querier, cartQuery string, arg string) (*domain.Cart, error) {
	var cart domain.Cart
	err := q.QueryRow(ctx, cartQuery, arg).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.TotalItems,
		&cart.TotalPriceCents,
		&cart.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const itemsQuery = `
SELECT id::text, cart_id::text, product_id::text, variant_id::text, size_id::text,
       quantity, unit_price_cents, product_name, color, size, image, created_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := q.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.VariantID,
			&item.SizeID,
			&item.Quantity,
			&item.UnitPriceCents,
			&item.ProductName,
			&item.Color,
			&item.Size,
			&item.Image,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) UpsertItem(ctx context.Context, cartID string, item domain.CartItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := upsertItem(ctx, tx, cartID, item); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) UpsertItemTx(ctx context.Context, tx pgx.Tx, cartID string, item domain.CartItem) error {
	return upsertItem(ctx, tx, cartID, item)
}

func upsertItem(ctx context.Context, tx pgx.Tx, cartID string, item domain.CartItem) error {
	const q = `
INSERT INTO cart_items (cart_id, product_id, variant_id, size_id, quantity, unit_price_cents, product_name, color, size, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (cart_id, product_id, COALESCE(variant_id, '00000000-0000-0000-0000-000000000000'::uuid), COALESCE(size_id, '00000000-0000-0000-0000-000000000000'::uuid))
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, q,
		cartID,
		item.ProductID,
		item.VariantID,
		item.SizeID,
		item.Quantity,
		item.UnitPriceCents,
		item.ProductName,
		item.Color,
		item.Size,
		item.Image,
	); err != nil {
		return err
	}
	return updateCartTotals(ctx, tx, cartID)
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`, quantity, itemID, cartID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := updateCartTotals(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	return r.SetItemQuantity(ctx, cartID, itemID, 0)
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	if err := updateCartTotals(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveItemsTx(ctx context.Context, tx pgx.Tx, cartID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE cart_id = $1 AND id = ANY($2)
`, cartID, itemIDs); err != nil {
		return err
	}
	return updateCartTotals(ctx, tx, cartID)
}

// updateCartTotals rederives both totals from the item list so they cannot
// drift from the items.
func updateCartTotals(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_items = COALESCE((
        SELECT SUM(quantity) FROM cart_items WHERE cart_id = $1
    ), 0),
    total_price_cents = COALESCE((
        SELECT SUM(quantity * unit_price_cents) FROM cart_items WHERE cart_id = $1
    ), 0)
WHERE id = $1
`, cartID)
	return err
}
