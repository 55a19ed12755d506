package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/api/middleware"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/service"
)

const (
	msgLoadCartFailed   = "Không thể tải giỏ hàng. Vui lòng thử lại."
	msgUpdateCartFailed = "Không thể cập nhật giỏ hàng. Vui lòng thử lại."
	msgWishlistFailed   = "Không thể cập nhật danh sách yêu thích."
)

// UpdateCartItemRequest represents the quantity change of one cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func shippingPolicy(cfg *config.Config) domain.ShippingPolicy {
	return domain.ShippingPolicy{
		Fee:                   cfg.Shop.ShippingFee,
		FreeShippingThreshold: cfg.Shop.FreeShippingThreshold,
	}
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		cart := service.NewCartService(middleware.ClientFor(store, api, logger), store, shippingPolicy(cfg), logger)
		view, err := cart.Get(c.Request.Context())
		if err != nil {
			respondError(c, err, msgLoadCartFailed, logger)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleAddCartItem handles POST /v1/cart/items
func HandleAddCartItem(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cart := service.NewCartService(middleware.ClientFor(store, api, logger), store, shippingPolicy(cfg), logger)
		view, err := cart.Add(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, msgUpdateCartFailed, logger)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleUpdateCartItem handles PATCH /v1/cart/items/:id
func HandleUpdateCartItem(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		itemID, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req UpdateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cart := service.NewCartService(middleware.ClientFor(store, api, logger), store, shippingPolicy(cfg), logger)
		view, err := cart.Update(c.Request.Context(), itemID, req.Quantity)
		if err != nil {
			respondError(c, err, msgUpdateCartFailed, logger)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleRemoveCartItem handles DELETE /v1/cart/items/:id
func HandleRemoveCartItem(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		itemID, ok := parseID(c, "id")
		if !ok {
			return
		}

		cart := service.NewCartService(middleware.ClientFor(store, api, logger), store, shippingPolicy(cfg), logger)
		view, err := cart.Remove(c.Request.Context(), itemID)
		if err != nil {
			respondError(c, err, msgUpdateCartFailed, logger)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		cart := service.NewCartService(middleware.ClientFor(store, api, logger), store, shippingPolicy(cfg), logger)
		view, err := cart.Clear(c.Request.Context())
		if err != nil {
			respondError(c, err, msgUpdateCartFailed, logger)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleToggleWishlist handles POST /v1/wishlist/:product/toggle.
// Anonymous sessions keep the wishlist locally until login.
func HandleToggleWishlist(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		productID, ok := parseID(c, "product")
		if !ok {
			return
		}

		client := middleware.ClientFor(store, api, logger)
		sessions := service.NewSessionService(client, accountClient(store, api, logger), store, logger)
		added, err := sessions.ToggleWishlist(c.Request.Context(), productID, store.Snapshot().InWishlist(productID))
		if err != nil {
			respondError(c, err, msgWishlistFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"product_id":  productID,
			"in_wishlist": added,
			"wishlist":    store.Snapshot().Wishlist,
		})
	}
}

// HandleClearWishlist handles DELETE /v1/wishlist
func HandleClearWishlist(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		client := middleware.ClientFor(store, api, logger)
		sessions := service.NewSessionService(client, accountClient(store, api, logger), store, logger)
		if err := sessions.ClearWishlist(c.Request.Context()); err != nil {
			respondError(c, err, msgWishlistFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wishlist": store.Snapshot().Wishlist})
	}
}
