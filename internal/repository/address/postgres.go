package address

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

const addressColumns = `id::text, user_id::text, first_name, last_name, address_line, city, state, pin_code, phone_number, country, address_type, is_default, created_at`

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE user_id = $1
ORDER BY is_default DESC, created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("address repo: list user_id=%s error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := scanAddress(rows, &a); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, userID, id string) (*domain.Address, error) {
	return getByID(ctx, r.pool, userID, id)
}

func getByID(ctx context.Context, q querier, userID, id string) (*domain.Address, error) {
	var a domain.Address
	err := scanAddress(q.QueryRow(ctx, `
SELECT `+addressColumns+`
FROM addresses
WHERE user_id = $1 AND id = $2
`, userID, id), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner, a *domain.Address) error {
	return row.Scan(
		&a.ID,
		&a.UserID,
		&a.FirstName,
		&a.LastName,
		&a.AddressLine,
		&a.City,
		&a.State,
		&a.PinCode,
		&a.PhoneNumber,
		&a.Country,
		&a.AddressType,
		&a.IsDefault,
		&a.CreatedAt,
	)
}

func (r *postgresRepo) Create(ctx context.Context, addr domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if addr.IsDefault {
		if err := unsetDefaults(ctx, tx, addr.UserID); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO addresses (user_id, first_name, last_name, address_line, city, state, pin_code, phone_number, country, address_type, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + addressColumns + `
`
	var created domain.Address
	err = scanAddress(tx.QueryRow(ctx, q,
		addr.UserID,
		addr.FirstName,
		addr.LastName,
		addr.AddressLine,
		addr.City,
		addr.State,
		addr.PinCode,
		addr.PhoneNumber,
		addr.Country,
		addr.AddressType,
		addr.IsDefault,
	), &created)
	if err != nil {
		r.logger.Printf("address repo: create user_id=%s error=%v", addr.UserID, err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *postgresRepo) Update(ctx context.Context, addr domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if addr.IsDefault {
		if err := unsetDefaults(ctx, tx, addr.UserID); err != nil {
			return nil, err
		}
	}

	const q = `
UPDATE addresses
SET first_name = $3, last_name = $4, address_line = $5, city = $6, state = $7,
    pin_code = $8, phone_number = $9, country = $10, address_type = $11, is_default = $12
WHERE user_id = $1 AND id = $2
RETURNING ` + addressColumns + `
`
	var updated domain.Address
	err = scanAddress(tx.QueryRow(ctx, q,
		addr.UserID,
		addr.ID,
		addr.FirstName,
		addr.LastName,
		addr.AddressLine,
		addr.City,
		addr.State,
		addr.PinCode,
		addr.PhoneNumber,
		addr.Country,
		addr.AddressType,
		addr.IsDefault,
	), &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var wasDefault bool
	err = tx.QueryRow(ctx, `
DELETE FROM addresses
WHERE user_id = $1 AND id = $2
RETURNING is_default
`, userID, id).Scan(&wasDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	if wasDefault {
		// Promote the most recently created remaining address, if any.
		if _, err := tx.Exec(ctx, `
UPDATE addresses
SET is_default = true
WHERE id = (
    SELECT id FROM addresses
    WHERE user_id = $1
    ORDER BY created_at DESC, id DESC
    LIMIT 1
)
`, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := getByID(ctx, tx, userID, id); err != nil {
		return err
	}
	if err := unsetDefaults(ctx, tx, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
UPDATE addresses
SET is_default = true
WHERE user_id = $1 AND id = $2
`, userID, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func unsetDefaults(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `
UPDATE addresses
SET is_default = false
WHERE user_id = $1 AND is_default
`, userID)
	return err
}
