package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcore/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, slug, name, COALESCE(description, ''), has_variants, min_order_quantity, base_price_cents, status, is_published, created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.fetchProduct(ctx, r.pool, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *postgresRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Product, error) {
	return r.fetchProduct(ctx, tx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.fetchProduct(ctx, r.pool, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

func (r *postgresRepo) ListPublished(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE is_published
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadVariants(ctx, r.pool, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) fetchProduct(ctx context.Context, q querier, query, arg string) (*domain.Product, error) {
	var p domain.Product
	if err := scanProduct(q.QueryRow(ctx, query, arg), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: fetch %q error=%v", arg, err)
		return nil, err
	}
	if err := r.loadVariants(ctx, q, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&p.HasVariants,
		&p.MinOrderQuantity,
		&p.BasePriceCents,
		&p.Status,
		&p.IsPublished,
		&p.CreatedAt,
	)
}

func (r *postgresRepo) loadVariants(ctx context.Context, q querier, p *domain.Product) error {
	const variantQuery = `
SELECT id::text, product_id::text, color, price_cents, images, is_active
FROM product_variants
WHERE product_id = $1
ORDER BY id
`
	rows, err := q.Query(ctx, variantQuery, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Color, &v.PriceCents, &v.Images, &v.IsActive); err != nil {
			return err
		}
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const sizeQuery = `
SELECT vs.id::text, vs.variant_id::text, vs.size, vs.inventory, vs.is_active
FROM variant_sizes vs
JOIN product_variants pv ON pv.id = vs.variant_id
WHERE pv.product_id = $1
ORDER BY vs.id
`
	sizeRows, err := q.Query(ctx, sizeQuery, p.ID)
	if err != nil {
		return err
	}
	defer sizeRows.Close()

	sizesByVariant := make(map[string][]domain.Size)
	for sizeRows.Next() {
		var s domain.Size
		if err := sizeRows.Scan(&s.ID, &s.VariantID, &s.Size, &s.Inventory, &s.IsActive); err != nil {
			return err
		}
		sizesByVariant[s.VariantID] = append(sizesByVariant[s.VariantID], s)
	}
	if err := sizeRows.Err(); err != nil {
		return err
	}
	for i := range p.Variants {
		p.Variants[i].Sizes = sizesByVariant[p.Variants[i].ID]
	}
	return nil
}

// DecrementInventory is a single conditional update scoped to the exact
// variant+size row, so two checkouts racing for the last units cannot both
// succeed.
func (r *postgresRepo) DecrementInventory(ctx context.Context, tx pgx.Tx, productID, variantID, sizeID string, qty int) error {
	const q = `
UPDATE variant_sizes
SET inventory = inventory - $1
WHERE id = $2 AND variant_id = $3 AND is_active AND inventory >= $1
`
	cmd, err := tx.Exec(ctx, q, qty, sizeID, variantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var available int
	err = tx.QueryRow(ctx, `
SELECT inventory
FROM variant_sizes
WHERE id = $1 AND variant_id = $2 AND is_active
`, sizeID, variantID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.AvailabilityError{
				ProductID: productID,
				VariantID: variantID,
				SizeID:    sizeID,
				Reason:    domain.ReasonSizeUnavailable,
			}
		}
		return err
	}
	return &domain.AvailabilityError{
		ProductID: productID,
		VariantID: variantID,
		SizeID:    sizeID,
		Reason:    domain.ReasonInsufficientInventory,
		Available: available,
	}
}

func (r *postgresRepo) RecomputeStatus(ctx context.Context, tx pgx.Tx, productID string) (domain.ProductStatus, error) {
	return recomputeStatus(ctx, tx, productID)
}

func recomputeStatus(ctx context.Context, q querier, productID string) (domain.ProductStatus, error) {
	const query = `
UPDATE products p
SET status = CASE
    WHEN agg.total = 0 THEN 'out-of-stock'
    WHEN agg.total <= $2 THEN 'low-stock'
    ELSE 'in-stock'
END
FROM (
    SELECT COALESCE(SUM(vs.inventory), 0) AS total
    FROM variant_sizes vs
    JOIN product_variants pv ON pv.id = vs.variant_id
    WHERE pv.product_id = $1 AND pv.is_active AND vs.is_active
) agg
WHERE p.id = $1
RETURNING p.status
`
	var status domain.ProductStatus
	if err := q.QueryRow(ctx, query, productID, domain.LowStockThreshold).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *postgresRepo) RestoreInventory(ctx context.Context, productID, variantID, sizeID string, qty int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE variant_sizes
SET inventory = inventory + $1
WHERE id = $2 AND variant_id = $3
`, qty, sizeID, variantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := recomputeStatus(ctx, tx, productID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
