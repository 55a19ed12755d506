package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/service"
)

const (
	msgLoadAddressesFailed = "Không thể tải danh sách địa chỉ."
	msgSaveAddressFailed   = "Không thể lưu địa chỉ. Vui lòng thử lại."
	msgDeleteAddressFailed = "Không thể xóa địa chỉ. Vui lòng thử lại."
)

// HandleListAddresses handles GET /v1/addresses
func HandleListAddresses(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}

		list, err := service.NewAddressService(client, logger).List(c.Request.Context())
		if err != nil {
			respondError(c, err, msgLoadAddressesFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"addresses": list})
	}
}

// HandleGetAddress handles GET /v1/addresses/:id
func HandleGetAddress(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		addr, err := service.NewAddressService(client, logger).Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, msgLoadAddressesFailed, logger)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

// HandleCreateAddress handles POST /v1/addresses
func HandleCreateAddress(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}

		var in domain.AddressInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		addr, err := service.NewAddressService(client, logger).Create(c.Request.Context(), in)
		if err != nil {
			respondError(c, err, msgSaveAddressFailed, logger)
			return
		}
		c.JSON(http.StatusCreated, addr)
	}
}

// HandleUpdateAddress handles PUT /v1/addresses/:id
func HandleUpdateAddress(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var in domain.AddressInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		addr, err := service.NewAddressService(client, logger).Update(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, err, msgSaveAddressFailed, logger)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

// HandleDeleteAddress handles DELETE /v1/addresses/:id
func HandleDeleteAddress(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := service.NewAddressService(client, logger).Delete(c.Request.Context(), id); err != nil {
			respondError(c, err, msgDeleteAddressFailed, logger)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleSetDefaultAddress handles POST /v1/addresses/:id/default
func HandleSetDefaultAddress(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		addr, err := service.NewAddressService(client, logger).SetDefault(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, msgSaveAddressFailed, logger)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}
