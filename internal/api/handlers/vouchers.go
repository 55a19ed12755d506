package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/service"
)

const (
	msgLoadVouchersFailed    = "Không thể tải danh sách voucher."
	msgValidateVoucherFailed = "Không thể kiểm tra mã voucher. Vui lòng thử lại."
)

// ValidateVoucherRequest checks one code. OrderTotal defaults to the cart subtotal.
type ValidateVoucherRequest struct {
	Code       string           `json:"code" binding:"required"`
	OrderTotal *decimal.Decimal `json:"order_total,omitempty"`
}

// HandleActiveVouchers handles GET /v1/vouchers/active
func HandleActiveVouchers(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}

		list, err := service.NewVoucherService(client, shippingPolicy(cfg), logger).Active(c.Request.Context())
		if err != nil {
			respondError(c, err, msgLoadVouchersFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vouchers": list})
	}
}

// HandleValidateVoucher handles POST /v1/vouchers/validate. A refused code is
// still a 200 with valid false and the shop's reason.
func HandleValidateVoucher(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}

		var req ValidateVoucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		check, err := service.NewVoucherService(client, shippingPolicy(cfg), logger).Validate(c.Request.Context(), req.Code, req.OrderTotal)
		if err != nil {
			respondError(c, err, msgValidateVoucherFailed, logger)
			return
		}
		c.JSON(http.StatusOK, check)
	}
}
