package domain

import "time"

// Wishlist is a user's saved-product list. Each user has one default list.
type Wishlist struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Name      string         `json:"name"`
	IsDefault bool           `json:"isDefault"`
	ItemCount int            `json:"itemCount"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
}

// WishlistItem carries no price or inventory commitment; uniqueness is on
// (productId, variantId) within a list.
type WishlistItem struct {
	ID         string    `json:"id"`
	WishlistID string    `json:"-"`
	ProductID  string    `json:"productId"`
	VariantID  *string   `json:"variantId,omitempty"`
	Note       string    `json:"note,omitempty"`
	AddedAt    time.Time `json:"addedAt"`
}
