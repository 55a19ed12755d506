package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/api/middleware"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	msgLoadOrderFailed = "Không thể tải đơn hàng. Vui lòng thử lại."
)

func audienceOf(c *gin.Context) (domain.Audience, bool) {
	audience := domain.Audience(c.DefaultQuery("audience", string(domain.AudienceCustomer)))
	if !audience.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid audience"})
		return "", false
	}
	return audience, true
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(api *backend.Client, guard *service.InFlightGuard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		pageSize := queryInt(c, "page_size", defaultPageSize)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
		filter := backend.OrderFilter{
			Page:     queryInt(c, "page", 1),
			PageSize: pageSize,
			Search:   c.Query("search"),
			DateFrom: c.Query("date_from"),
			DateTo:   c.Query("date_to"),
		}
		if s := c.Query("status"); s != "" {
			filter.Status = domain.OrderStatus(s)
			if !filter.Status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
		}
		if s := c.Query("payment_status"); s != "" {
			filter.PaymentStatus = domain.PaymentStatus(s)
			if !filter.PaymentStatus.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_status"})
				return
			}
		}

		gateway := service.NewOrderGateway(middleware.ClientFor(store, api, logger), guard, store, logger)
		page, err := gateway.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, msgLoadOrderFailed, logger)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleOrderStats handles GET /v1/orders/stats
func HandleOrderStats(api *backend.Client, guard *service.InFlightGuard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		gateway := service.NewOrderGateway(middleware.ClientFor(store, api, logger), guard, store, logger)
		stats, err := gateway.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err, msgLoadOrderFailed, logger)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(api *backend.Client, guard *service.InFlightGuard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		orderID, ok := parseID(c, "id")
		if !ok {
			return
		}
		audience, ok := audienceOf(c)
		if !ok {
			return
		}

		gateway := service.NewOrderGateway(middleware.ClientFor(store, api, logger), guard, store, logger)
		view, err := gateway.View(c.Request.Context(), orderID, audience)
		if err != nil {
			respondError(c, err, msgLoadOrderFailed, logger)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleOrderAction handles POST /v1/orders/:id/actions/:action
func HandleOrderAction(api *backend.Client, guard *service.InFlightGuard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		orderID, ok := parseID(c, "id")
		if !ok {
			return
		}
		audience, ok := audienceOf(c)
		if !ok {
			return
		}

		var input domain.ActionInput
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		gateway := service.NewOrderGateway(middleware.ClientFor(store, api, logger), guard, store, logger)
		outcome, err := gateway.Perform(c.Request.Context(), service.ActionRequest{
			OrderID:  orderID,
			Audience: audience,
			Action:   domain.Action(c.Param("action")),
			Input:    input,
		})
		if err != nil {
			respondError(c, err, "", logger)
			return
		}

		logger.Info("Order action performed",
			zap.Int64("order_id", orderID),
			zap.String("action", c.Param("action")),
			zap.Bool("stale", outcome.Stale),
		)
		c.JSON(http.StatusOK, outcome)
	}
}
