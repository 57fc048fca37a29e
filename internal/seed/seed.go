package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopcore/internal/domain"
)

type sizeSeed struct {
	Size      string
	Inventory int
}

type variantSeed struct {
	Color      string
	PriceCents int64
	Image      string
	Sizes      []sizeSeed
}

type productSeed struct {
	Slug             string
	Name             string
	Description      string
	HasVariants      bool
	MinOrderQuantity int
	BasePriceCents   int64
	Variants         []variantSeed
}

// Apply inserts a small demo catalog for manual testing. It is idempotent
// via ON CONFLICT on the product slug; variants and sizes get fresh ids on
// first insert only.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Slug:        "oxford-shirt",
			Name:        "Oxford Shirt",
			Description: "Button-down oxford in garment-washed cotton",
			HasVariants: true,
			Variants: []variantSeed{
				{
					Color: "navy", PriceCents: 2500, Image: "oxford-navy.jpg",
					Sizes: []sizeSeed{{"S", 12}, {"M", 20}, {"L", 8}},
				},
				{
					Color: "white", PriceCents: 2500, Image: "oxford-white.jpg",
					Sizes: []sizeSeed{{"S", 4}, {"M", 0}, {"L", 15}},
				},
			},
		},
		{
			Slug:        "linen-trousers",
			Name:        "Linen Trousers",
			Description: "Relaxed-fit trousers in washed linen",
			HasVariants: true,
			Variants: []variantSeed{
				{
					Color: "sand", PriceCents: 4200, Image: "trousers-sand.jpg",
					Sizes: []sizeSeed{{"30", 6}, {"32", 3}, {"34", 0}},
				},
			},
		},
		{
			Slug:             "fabric-roll",
			Name:             "Fabric Roll",
			Description:      "Plain-weave cotton fabric sold by the roll",
			HasVariants:      false,
			MinOrderQuantity: 5,
			BasePriceCents:   900,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	return nil
}

func imageList(image string) []string {
	if image == "" {
		return []string{}
	}
	return []string{image}
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	minQty := p.MinOrderQuantity
	if minQty < 1 {
		minQty = 1
	}
	status := domain.StatusInStock
	if p.HasVariants {
		total := 0
		for _, v := range p.Variants {
			for _, s := range v.Sizes {
				total += s.Inventory
			}
		}
		status = domain.StockStatusFor(total)
	}

	const productQ = `
INSERT INTO products (slug, name, description, has_variants, min_order_quantity, base_price_cents, status, is_published)
VALUES ($1, $2, $3, $4, $5, $6, $7, true)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
RETURNING id::text, (xmax = 0) AS inserted
`
	var productID string
	var inserted bool
	if err := pool.QueryRow(ctx, productQ,
		p.Slug, p.Name, p.Description, p.HasVariants, minQty, p.BasePriceCents, string(status),
	).Scan(&productID, &inserted); err != nil {
		return err
	}
	if !inserted {
		// re-seeding an existing product would duplicate its variants
		return nil
	}

	for _, v := range p.Variants {
		variantID := uuid.NewString()
		const variantQ = `
INSERT INTO product_variants (id, product_id, color, price_cents, images)
VALUES ($1, $2, $3, $4, $5)
`
		images, err := json.Marshal(imageList(v.Image))
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, variantQ, variantID, productID, v.Color, v.PriceCents, images); err != nil {
			return err
		}
		for _, s := range v.Sizes {
			const sizeQ = `
INSERT INTO variant_sizes (id, variant_id, size, inventory)
VALUES ($1, $2, $3, $4)
`
			if _, err := pool.Exec(ctx, sizeQ, uuid.NewString(), variantID, s.Size, s.Inventory); err != nil {
				return err
			}
		}
	}
	return nil
}
