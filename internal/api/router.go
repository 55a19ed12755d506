package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/api/handlers"
	"github.com/eyewearvn/storefront/internal/api/middleware"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/metrics"
	"github.com/eyewearvn/storefront/internal/service"
	"github.com/eyewearvn/storefront/internal/state"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, api *backend.Client, sessions *state.Manager, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(metrics.Middleware())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// One guard for the whole process so two sessions cannot race on an order.
	guard := service.NewInFlightGuard()

	v1 := router.Group("/v1")
	{
		v1.POST("/session", handlers.HandleCreateSession(sessions, logger))

		// Anonymous sessions allowed
		sessionRoutes := v1.Group("")
		sessionRoutes.Use(middleware.SessionMiddleware(sessions, logger))
		{
			sessionRoutes.GET("/session", handlers.HandleGetSession(api, logger))
			sessionRoutes.DELETE("/session", handlers.HandleEndSession(sessions, api, logger))
			sessionRoutes.POST("/session/login", handlers.HandleLogin(api, logger))
			sessionRoutes.POST("/session/logout", handlers.HandleLogout(api, logger))
			sessionRoutes.PUT("/session/preferences", handlers.HandleUpdatePreferences(logger))
			sessionRoutes.POST("/session/theme/toggle", handlers.HandleToggleTheme(logger))
			sessionRoutes.POST("/session/recently-viewed", handlers.HandleRecentlyViewed(logger))
			sessionRoutes.POST("/wishlist/:product/toggle", handlers.HandleToggleWishlist(api, logger))
			sessionRoutes.DELETE("/wishlist", handlers.HandleClearWishlist(api, logger))

			// Guest carts live on the shop session cookie and merge on login
			sessionRoutes.GET("/cart", handlers.HandleGetCart(cfg, api, logger))
			sessionRoutes.DELETE("/cart", handlers.HandleClearCart(cfg, api, logger))
			sessionRoutes.POST("/cart/items", handlers.HandleAddCartItem(cfg, api, logger))
			sessionRoutes.PATCH("/cart/items/:id", handlers.HandleUpdateCartItem(cfg, api, logger))
			sessionRoutes.DELETE("/cart/items/:id", handlers.HandleRemoveCartItem(cfg, api, logger))

			sessionRoutes.GET("/payments/vnpay/return", handlers.HandleVNPayReturn(api, logger))
		}

		// Signed-in routes
		authRoutes := v1.Group("")
		authRoutes.Use(middleware.SessionMiddleware(sessions, logger))
		authRoutes.Use(middleware.RequireAuth())
		{
			authRoutes.GET("/orders", handlers.HandleListOrders(api, guard, logger))
			authRoutes.GET("/orders/stats", handlers.HandleOrderStats(api, guard, logger))
			authRoutes.GET("/orders/:id", handlers.HandleGetOrder(api, guard, logger))
			authRoutes.POST("/orders/:id/actions/:action", handlers.HandleOrderAction(api, guard, logger))

			authRoutes.POST("/checkout", handlers.HandleCheckout(api, logger))

			authRoutes.GET("/addresses", handlers.HandleListAddresses(api, logger))
			authRoutes.POST("/addresses", handlers.HandleCreateAddress(api, logger))
			authRoutes.GET("/addresses/:id", handlers.HandleGetAddress(api, logger))
			authRoutes.PUT("/addresses/:id", handlers.HandleUpdateAddress(api, logger))
			authRoutes.DELETE("/addresses/:id", handlers.HandleDeleteAddress(api, logger))
			authRoutes.POST("/addresses/:id/default", handlers.HandleSetDefaultAddress(api, logger))

			// The shop restricts voucher lookups to staff
			authRoutes.GET("/vouchers/active", handlers.HandleActiveVouchers(cfg, api, logger))
			authRoutes.POST("/vouchers/validate", handlers.HandleValidateVoucher(cfg, api, logger))
		}

		// Warehouse routes; the shop API enforces staff permissions
		inventoryRoutes := v1.Group("/inventory")
		inventoryRoutes.Use(middleware.SessionMiddleware(sessions, logger))
		inventoryRoutes.Use(middleware.RequireAuth())
		{
			inventoryRoutes.GET("/low-stock", handlers.HandleLowStock(cfg, api, logger))
			inventoryRoutes.GET("/logs", handlers.HandleInventoryLogs(cfg, api, logger))
			inventoryRoutes.GET("/stats", handlers.HandleInventoryStats(cfg, api, logger))
			inventoryRoutes.GET("/variants/:id/reconcile", handlers.HandleReconcile(cfg, api, logger))
			inventoryRoutes.POST("/import-notes", handlers.HandleImport(cfg, api, logger))
			inventoryRoutes.GET("/import-notes/drafts", handlers.HandleListDrafts(cfg, api, logger))
			inventoryRoutes.POST("/import-notes/:id/complete", handlers.HandleCompleteDraft(cfg, api, logger))
			inventoryRoutes.POST("/import-notes/:id/cancel", handlers.HandleCancelDraft(cfg, api, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if status >= 500 {
			logger.Error("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
