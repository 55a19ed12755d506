package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/api/middleware"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

const (
	msgActionNotAvailable = "Thao tác không khả dụng cho đơn hàng này."
	msgActionInFlight     = "Đơn hàng đang được xử lý. Vui lòng đợi."
	msgNotFound           = "Không tìm thấy dữ liệu."
	msgInvalidState       = "Trạng thái hiện tại không cho phép thao tác này."
)

// respondError writes err with the status matching its kind. fallback is
// shown for transport failures that carry no message of their own.
func respondError(c *gin.Context, err error, fallback string, logger *zap.Logger) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  errors.UserMessage(e, fallback),
			"fields": e.Fields,
		})
	case *errors.ErrBusinessRule:
		status := http.StatusConflict
		if e.Status == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": errors.UserMessage(e, fallback)})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "redirect": middleware.LoginPath})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound, "resource": e.Resource})
	case *errors.ErrActionNotAvailable:
		c.JSON(http.StatusConflict, gin.H{"error": msgActionNotAvailable, "action": e.Action, "status": e.Status})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, gin.H{"error": msgInvalidState, "from": e.From, "to": e.To})
	case *errors.ErrActionInFlight:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msgActionInFlight})
	case *errors.ErrPartialImport:
		logger.Error("Import note left in draft", zap.Int64("draft_id", e.DraftID), zap.Error(e.Err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":         errors.UserMessage(e, fallback),
			"draft_id":      e.DraftID,
			"import_number": e.ImportNumber,
		})
	case *errors.ErrPaymentLinkFailed:
		logger.Error("Order placed without payment link", zap.Int64("order_id", e.OrderID), zap.Error(e.Err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":        errors.UserMessage(e, fallback),
			"order_id":     e.OrderID,
			"order_number": e.OrderNumber,
			"retry_action": string(domain.ActionRetryPayment),
		})
	case *errors.ErrTransport:
		logger.Warn("Shop API unavailable", zap.String("path", c.FullPath()), zap.Error(e))
		c.JSON(http.StatusBadGateway, gin.H{"error": errors.UserMessage(e, fallback)})
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// sessionClient returns the shop API client for the request's session
func sessionClient(c *gin.Context, api *backend.Client, logger *zap.Logger) (*backend.Client, bool) {
	store, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return middleware.ClientFor(store, api, logger), true
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// queryInt reads a positive integer query parameter, def when absent or invalid
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}
