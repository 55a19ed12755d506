package backend

import (
	"context"
	"net/http"

	"github.com/eyewearvn/storefront/internal/domain"
)

type cartItemRequest struct {
	VariantID int64 `json:"variant_id,omitempty"`
	ItemID    int64 `json:"item_id,omitempty"`
	Quantity  int   `json:"quantity,omitempty"`
}

type wishlistItemRequest struct {
	ProductID int64 `json:"product_id"`
}

func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.Do(ctx, http.MethodGet, PathCart, nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetVariant fetches one variant with its live stock. Inactive variants are not found.
func (c *Client) GetVariant(ctx context.Context, id int64) (*domain.CartVariant, error) {
	var v domain.CartVariant
	if err := c.Do(ctx, http.MethodGet, VariantPath(id), nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) AddCartItem(ctx context.Context, variantID int64, quantity int) error {
	return c.Do(ctx, http.MethodPost, PathCartAddItem, nil, cartItemRequest{VariantID: variantID, Quantity: quantity}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	return c.Do(ctx, http.MethodPatch, PathCartUpdateItem, nil, cartItemRequest{ItemID: itemID, Quantity: quantity}, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	return c.Do(ctx, http.MethodDelete, PathCartRemoveItem, nil, cartItemRequest{ItemID: itemID}, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathCartClear, nil, nil, nil)
}

func (c *Client) GetWishlist(ctx context.Context) (*domain.Wishlist, error) {
	var w domain.Wishlist
	if err := c.Do(ctx, http.MethodGet, PathWishlist, nil, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) AddWishlistItem(ctx context.Context, productID int64) error {
	return c.Do(ctx, http.MethodPost, PathWishlistAddItem, nil, wishlistItemRequest{ProductID: productID}, nil)
}

func (c *Client) RemoveWishlistItem(ctx context.Context, productID int64) error {
	return c.Do(ctx, http.MethodDelete, PathWishlistRemoveItem, nil, wishlistItemRequest{ProductID: productID}, nil)
}

func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathWishlistClear, nil, nil, nil)
}
