package cart

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcore/internal/domain"
	"shopcore/internal/migrate"
)

func TestPostgres_UpsertMergesSelectionTuples(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "cart-test@example.com")
	productID, variantID, sizeID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if cart.UserID != userID || len(cart.Items) != 0 {
		t.Fatalf("unexpected cart %+v", cart)
	}

	// creating again must return the same cart
	again, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatalf("expected one cart per user, got %s and %s", cart.ID, again.ID)
	}

	item := domain.CartItem{
		ProductID:      productID,
		VariantID:      &variantID,
		SizeID:         &sizeID,
		Quantity:       2,
		UnitPriceCents: 2500,
		ProductName:    "Oxford Shirt",
		Color:          "navy",
		Size:           "M",
	}
	if err := repo.UpsertItem(ctx, cart.ID, item); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	if err := repo.UpsertItem(ctx, cart.ID, item); err != nil {
		t.Fatalf("UpsertItem merge: %v", err)
	}

	got, err := repo.GetByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected merged line item, got %d items", len(got.Items))
	}
	if got.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4 after merge, got %d", got.Items[0].Quantity)
	}
	if got.TotalItems != 4 || got.TotalPriceCents != 10000 {
		t.Fatalf("totals not recomputed: items=%d price=%d", got.TotalItems, got.TotalPriceCents)
	}

	// a different size is a separate line item
	var otherSizeID string
	err = pool.QueryRow(ctx,
		`INSERT INTO variant_sizes (variant_id, size, inventory) VALUES ($1, 'L', 5) RETURNING id::text`,
		variantID,
	).Scan(&otherSizeID)
	if err != nil {
		t.Fatalf("insert size: %v", err)
	}
	item.SizeID = &otherSizeID
	item.Size = "L"
	if err := repo.UpsertItem(ctx, cart.ID, item); err != nil {
		t.Fatalf("UpsertItem distinct size: %v", err)
	}
	got, err = repo.GetByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected two line items, got %d", len(got.Items))
	}
}

func TestPostgres_SetItemQuantityAndClear(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "cart-qty@example.com")
	productID, variantID, sizeID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if err := repo.UpsertItem(ctx, cart.ID, domain.CartItem{
		ProductID: productID, VariantID: &variantID, SizeID: &sizeID,
		Quantity: 2, UnitPriceCents: 2500, ProductName: "Oxford Shirt",
	}); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}

	got, _ := repo.GetByUser(ctx, userID)
	itemID := got.Items[0].ID

	if err := repo.SetItemQuantity(ctx, cart.ID, itemID, 5); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	got, _ = repo.GetByUser(ctx, userID)
	if got.Items[0].Quantity != 5 || got.TotalPriceCents != 12500 {
		t.Fatalf("unexpected after set: %+v", got)
	}

	if err := repo.SetItemQuantity(ctx, cart.ID, itemID, 0); err != nil {
		t.Fatalf("SetItemQuantity zero: %v", err)
	}
	got, _ = repo.GetByUser(ctx, userID)
	if len(got.Items) != 0 || got.TotalItems != 0 {
		t.Fatalf("expected empty cart after zero quantity, got %+v", got)
	}

	if err := repo.SetItemQuantity(ctx, cart.ID, itemID, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed item, got %v", err)
	}
}

func TestPostgres_RemoveItemsTx(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "cart-tx@example.com")
	productID, variantID, sizeID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if err := repo.UpsertItem(ctx, cart.ID, domain.CartItem{
		ProductID: productID, VariantID: &variantID, SizeID: &sizeID,
		Quantity: 1, UnitPriceCents: 2500, ProductName: "Oxford Shirt",
	}); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	got, _ := repo.GetByUser(ctx, userID)
	itemID := got.Items[0].ID

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.RemoveItemsTx(ctx, tx, cart.ID, []string{itemID}); err != nil {
		tx.Rollback(ctx)
		t.Fatalf("RemoveItemsTx: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, _ = repo.GetByUser(ctx, userID)
	if len(got.Items) != 0 || got.TotalPriceCents != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, carts, variant_sizes, product_variants, products, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func insertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id::text`, email,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool) (productID, variantID, sizeID string) {
	t.Helper()
	err := pool.QueryRow(ctx,
		`INSERT INTO products (slug, name, has_variants, status, is_published)
		 VALUES ('oxford-shirt', 'Oxford Shirt', true, 'in-stock', true) RETURNING id::text`,
	).Scan(&productID)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	err = pool.QueryRow(ctx,
		`INSERT INTO product_variants (product_id, color, price_cents) VALUES ($1, 'navy', 2500) RETURNING id::text`,
		productID,
	).Scan(&variantID)
	if err != nil {
		t.Fatalf("insert variant: %v", err)
	}
	err = pool.QueryRow(ctx,
		`INSERT INTO variant_sizes (variant_id, size, inventory) VALUES ($1, 'M', 20) RETURNING id::text`,
		variantID,
	).Scan(&sizeID)
	if err != nil {
		t.Fatalf("insert size: %v", err)
	}
	return productID, variantID, sizeID
}
