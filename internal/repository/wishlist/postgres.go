package wishlist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcore/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetDefaultByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	const q = `
INSERT INTO wishlists (user_id, is_default)
VALUES ($1, true)
ON CONFLICT (user_id) WHERE is_default DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id::text, user_id::text, name, is_default, created_at
`
	var list domain.Wishlist
	if err := r.pool.QueryRow(ctx, q, userID).Scan(
		&list.ID,
		&list.UserID,
		&list.Name,
		&list.IsDefault,
		&list.CreatedAt,
	); err != nil {
		return nil, err
	}

	const itemsQuery = `
SELECT id::text, wishlist_id::text, product_id::text, variant_id::text, note, added_at
FROM wishlist_items
WHERE wishlist_id = $1
ORDER BY added_at DESC
`
	rows, err := r.pool.Query(ctx, itemsQuery, list.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.WishlistID, &item.ProductID, &item.VariantID, &item.Note, &item.AddedAt); err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	list.ItemCount = len(list.Items)
	return &list, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, wishlistID string, item domain.WishlistItem) (*domain.WishlistItem, error) {
	const q = `
INSERT INTO wishlist_items (wishlist_id, product_id, variant_id, note)
VALUES ($1, $2, $3, $4)
RETURNING id::text, wishlist_id::text, product_id::text, variant_id::text, note, added_at
`
	var created domain.WishlistItem
	err := r.pool.QueryRow(ctx, q, wishlistID, item.ProductID, item.VariantID, item.Note).Scan(
		&created.ID,
		&created.WishlistID,
		&created.ProductID,
		&created.VariantID,
		&created.Note,
		&created.AddedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *postgresRepo) GetItem(ctx context.Context, wishlistID, itemID string) (*domain.WishlistItem, error) {
	const q = `
SELECT id::text, wishlist_id::text, product_id::text, variant_id::text, note, added_at
FROM wishlist_items
WHERE wishlist_id = $1 AND id = $2
`
	var item domain.WishlistItem
	err := r.pool.QueryRow(ctx, q, wishlistID, itemID).Scan(
		&item.ID,
		&item.WishlistID,
		&item.ProductID,
		&item.VariantID,
		&item.Note,
		&item.AddedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, wishlistID, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1 AND id = $2`, wishlistID, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveItemTx(ctx context.Context, tx pgx.Tx, wishlistID, itemID string) error {
	cmd, err := tx.Exec(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1 AND id = $2`, wishlistID, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
