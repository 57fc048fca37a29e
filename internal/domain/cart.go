package domain

import "time"

// Cart holds a user's selected line items. One cart per user, created
// lazily on first add.
type Cart struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	TotalItems      int        `json:"totalItems"`
	TotalPriceCents int64      `json:"totalPriceCents"`
	Items           []CartItem `json:"items"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CartItem is one line item. At most one item exists per distinct
// (productId, variantId, sizeId) tuple; duplicate adds merge quantities.
type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"-"`
	ProductID      string    `json:"productId"`
	VariantID      *string   `json:"variantId,omitempty"`
	SizeID         *string   `json:"sizeId,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	ProductName    string    `json:"productName"`
	Color          string    `json:"color,omitempty"`
	Size           string    `json:"size,omitempty"`
	Image          string    `json:"image,omitempty"`
	IsAvailable    bool      `json:"isAvailable"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SameSelection reports whether two items reference the same
// (product, variant, size) tuple.
func (i CartItem) SameSelection(productID string, variantID, sizeID *string) bool {
	if i.ProductID != productID {
		return false
	}
	return equalKey(i.VariantID, variantID) && equalKey(i.SizeID, sizeID)
}

func equalKey(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
