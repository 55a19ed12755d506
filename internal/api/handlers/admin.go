package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/service"
)

const msgLoadInventoryFailed = "Không thể tải dữ liệu kho. Vui lòng thử lại."

// HandleLowStock handles GET /v1/inventory/low-stock
func HandleLowStock(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)

		outOfStockOnly, _ := strconv.ParseBool(c.Query("out_of_stock_only"))
		report, err := inventory.LowStock(c.Request.Context(), queryInt(c, "threshold", 0), outOfStockOnly)
		if err != nil {
			respondError(c, err, msgLoadInventoryFailed, logger)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// HandleInventoryLogs handles GET /v1/inventory/logs
func HandleInventoryLogs(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)

		filter := backend.LogFilter{
			FromDate: c.Query("from_date"),
			ToDate:   c.Query("to_date"),
			Page:     queryInt(c, "page", 1),
			PageSize: queryInt(c, "page_size", 0),
		}
		if v := c.Query("variant_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid variant_id"})
				return
			}
			filter.VariantID = id
		}
		if t := c.Query("transaction_type"); t != "" {
			filter.Type = domain.TransactionType(t)
			if !filter.Type.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction_type"})
				return
			}
		}

		logs, err := inventory.Logs(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, msgLoadInventoryFailed, logger)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

// HandleInventoryStats handles GET /v1/inventory/stats
func HandleInventoryStats(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)
		stats, err := inventory.Stats(c.Request.Context())
		if err != nil {
			respondError(c, err, msgLoadInventoryFailed, logger)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// HandleReconcile handles GET /v1/inventory/variants/:id/reconcile
func HandleReconcile(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)
		variantID, ok := parseID(c, "id")
		if !ok {
			return
		}

		breaks, err := inventory.Reconcile(c.Request.Context(), variantID)
		if err != nil {
			respondError(c, err, msgLoadInventoryFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"variant_id": variantID,
			"consistent": len(breaks) == 0,
			"breaks":     breaks,
		})
	}
}

// HandleImport handles POST /v1/inventory/import-notes
func HandleImport(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)

		var req domain.ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := inventory.Import(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, "", logger)
			return
		}

		logger.Info("Import note completed",
			zap.Int64("draft_id", result.DraftID),
			zap.String("import_number", result.Note.ImportNumber),
		)
		c.JSON(http.StatusCreated, result)
	}
}

// HandleListDrafts handles GET /v1/inventory/import-notes/drafts
func HandleListDrafts(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)
		drafts, err := inventory.ListDrafts(c.Request.Context())
		if err != nil {
			respondError(c, err, msgLoadInventoryFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(drafts), "results": drafts})
	}
}

// HandleCompleteDraft handles POST /v1/inventory/import-notes/:id/complete
func HandleCompleteDraft(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		note, err := inventory.CompleteDraft(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "", logger)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}

// HandleCancelDraft handles POST /v1/inventory/import-notes/:id/cancel
func HandleCancelDraft(cfg *config.Config, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := sessionClient(c, api, logger)
		if !ok {
			return
		}
		inventory := service.NewInventoryService(client, cfg.Shop.LowStockThreshold, logger)
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		note, err := inventory.CancelDraft(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "", logger)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}
