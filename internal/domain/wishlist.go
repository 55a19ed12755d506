package domain

import "time"

// ProductRef is the part of a product the console cares about
type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type WishlistItem struct {
	ID        int64      `json:"id"`
	Product   ProductRef `json:"product"`
	CreatedAt time.Time  `json:"created_at"`
}

// Wishlist is the server copy of the shopper's wishlist
type Wishlist struct {
	ID         int64          `json:"id"`
	Items      []WishlistItem `json:"items"`
	TotalItems int            `json:"total_items"`
}

// ProductIDs lists the wishlisted product ids in server order
func (w Wishlist) ProductIDs() []int64 {
	ids := make([]int64, 0, len(w.Items))
	for _, item := range w.Items {
		ids = append(ids, item.Product.ID)
	}
	return ids
}
