package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/api/middleware"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/service"
)

const msgCheckoutFailed = "Đặt hàng thất bại. Vui lòng thử lại."

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var form domain.CheckoutForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		checkout := service.NewCheckoutService(middleware.ClientFor(store, api, logger), store, logger)
		result, err := checkout.Checkout(c.Request.Context(), form)
		if err != nil {
			respondError(c, err, msgCheckoutFailed, logger)
			return
		}

		logger.Info("Order placed",
			zap.String("session_id", store.ID()),
			zap.String("order_number", result.OrderNumber),
			zap.String("payment_method", string(form.PaymentMethod)),
		)
		c.JSON(http.StatusCreated, result)
	}
}

// HandleVNPayReturn handles GET /v1/payments/vnpay/return. The VNPAY query
// is forwarded untouched; the answer is always 200 with success set.
func HandleVNPayReturn(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		checkout := service.NewCheckoutService(middleware.ClientFor(store, api, logger), store, logger)
		c.JSON(http.StatusOK, checkout.VerifyReturn(c.Request.Context(), c.Request.URL.Query()))
	}
}
