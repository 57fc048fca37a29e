package domain

import "time"

// ProductStatus is the aggregate stock label derived from summed inventory
// across all active sizes of all active variants.
type ProductStatus string

const (
	StatusInStock    ProductStatus = "in-stock"
	StatusLowStock   ProductStatus = "low-stock"
	StatusOutOfStock ProductStatus = "out-of-stock"
)

// LowStockThreshold is the inclusive upper bound for the low-stock label.
const LowStockThreshold = 10

// StockStatusFor maps a summed inventory count to its status label.
func StockStatusFor(totalInventory int) ProductStatus {
	switch {
	case totalInventory <= 0:
		return StatusOutOfStock
	case totalInventory <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

type Product struct {
	ID               string        `json:"id"`
	Slug             string        `json:"slug"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	HasVariants      bool          `json:"hasVariants"`
	MinOrderQuantity int           `json:"minOrderQuantity"`
	BasePriceCents   int64         `json:"basePriceCents"`
	Status           ProductStatus `json:"status"`
	IsPublished      bool          `json:"isPublished"`
	Variants         []Variant     `json:"variants,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// Variant is one selectable attribute axis instance of a product, carrying
// its own price and size breakdown.
type Variant struct {
	ID         string   `json:"id"`
	ProductID  string   `json:"-"`
	Color      string   `json:"color"`
	PriceCents int64    `json:"priceCents"`
	Images     []string `json:"images,omitempty"`
	IsActive   bool     `json:"isActive"`
	Sizes      []Size   `json:"sizes,omitempty"`
}

// Size is the innermost inventory-bearing unit within a variant.
type Size struct {
	ID        string `json:"id"`
	VariantID string `json:"-"`
	Size      string `json:"size"`
	Inventory int    `json:"inventory"`
	IsActive  bool   `json:"isActive"`
}

// FindVariant matches an embedded variant by its opaque string key.
func (p *Product) FindVariant(variantID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// FindSize matches an embedded size by its opaque string key.
func (v *Variant) FindSize(sizeID string) *Size {
	for i := range v.Sizes {
		if v.Sizes[i].ID == sizeID {
			return &v.Sizes[i]
		}
	}
	return nil
}

// TotalInventory sums inventory over active sizes of active variants.
func (p *Product) TotalInventory() int {
	total := 0
	for _, v := range p.Variants {
		if !v.IsActive {
			continue
		}
		for _, s := range v.Sizes {
			if s.IsActive {
				total += s.Inventory
			}
		}
	}
	return total
}
