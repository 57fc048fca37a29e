package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

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
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, order_number, user_id::text, items, shipping_address,
subtotal_cents, shipping_cents, discount_cents, tax_cents, total_cents,
order_status, payment_status, payment_method, tracking_number, courier_name, notes,
cancelled_reason, cancelled_at, shipping_date, delivered_at, created_at`

func (r *postgresRepo) CreateTx(ctx context.Context, tx pgx.Tx, o domain.Order) (*domain.Order, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return nil, err
	}
	addrJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO orders (order_number, user_id, items, shipping_address,
    subtotal_cents, shipping_cents, discount_cents, tax_cents, total_cents,
    order_status, payment_status, payment_method, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + orderColumns + `
`
	row := tx.QueryRow(ctx, q,
		o.OrderNumber,
		o.UserID,
		itemsJSON,
		addrJSON,
		o.SubtotalCents,
		o.ShippingCents,
		o.DiscountCents,
		o.TaxCents,
		o.TotalCents,
		o.OrderStatus,
		o.PaymentStatus,
		o.PaymentMethod,
		o.Notes,
	)
	created, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: create user_id=%s error=%v", o.UserID, err)
		return nil, err
	}
	return created, nil
}

func (r *postgresRepo) OrderNumberExistsTx(ctx context.Context, tx pgx.Tx, orderNumber string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, orderNumber).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByIDForUser(ctx context.Context, userID, id string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND id = $2`, userID, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	return r.listOrders(ctx, q, userID, clampLimit(limit), clampOffset(offset))
}

func (r *postgresRepo) List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error) {
	if status == "" {
		const q = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`
		return r.listOrders(ctx, q, clampLimit(limit), clampOffset(offset))
	}
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE order_status = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	return r.listOrders(ctx, q, status, clampLimit(limit), clampOffset(offset))
}

func (r *postgresRepo) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

// UpdateStatus is a compare-and-swap on order_status, mirroring the
// conditional inventory decrement: a concurrent transition makes the WHERE
// miss and the caller sees ErrNotFound instead of clobbering the row.
func (r *postgresRepo) UpdateStatus(ctx context.Context, o domain.Order, expected domain.OrderStatus) (*domain.Order, error) {
	const q = `
UPDATE orders
SET order_status = $2, payment_status = $3, tracking_number = $4, courier_name = $5,
    notes = $6, cancelled_reason = $7, cancelled_at = $8, shipping_date = $9, delivered_at = $10
WHERE id = $1 AND order_status = $11
RETURNING ` + orderColumns + `
`
	updated, err := scanOrder(r.pool.QueryRow(ctx, q,
		o.ID,
		o.OrderStatus,
		o.PaymentStatus,
		o.TrackingNumber,
		o.CourierName,
		o.Notes,
		o.CancelledReason,
		o.CancelledAt,
		o.ShippingDate,
		o.DeliveredAt,
		expected,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: update id=%s error=%v", o.ID, err)
		return nil, err
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var itemsJSON, addrJSON []byte
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&itemsJSON,
		&addrJSON,
		&o.SubtotalCents,
		&o.ShippingCents,
		&o.DiscountCents,
		&o.TaxCents,
		&o.TotalCents,
		&o.OrderStatus,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.TrackingNumber,
		&o.CourierName,
		&o.Notes,
		&o.CancelledReason,
		&o.CancelledAt,
		&o.ShippingDate,
		&o.DeliveredAt,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return nil, err
	}
	return &o, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
