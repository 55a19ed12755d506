package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/metrics"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// WarehouseAPI is the part of the shop API the inventory service uses
type WarehouseAPI interface {
	LowStock(ctx context.Context, threshold int, outOfStockOnly bool) (*domain.LowStockReport, error)
	InventoryLogs(ctx context.Context, filter backend.LogFilter) (*domain.LogsPage, error)
	InventoryStats(ctx context.Context) (*domain.InventoryStats, error)
	CreateImportNote(ctx context.Context, req domain.ImportRequest) (*domain.ImportNote, error)
	CompleteImportNote(ctx context.Context, id int64) (*domain.ImportNote, error)
	CancelImportNote(ctx context.Context, id int64) (*domain.ImportNote, error)
	GetImportNote(ctx context.Context, id int64) (*domain.ImportNote, error)
	ListImportNotes(ctx context.Context, status domain.ImportNoteStatus) ([]domain.ImportNote, error)
}

const (
	msgImportFailed = "Tạo phiếu nhập thất bại"

	// DefaultLogsPageSize is the inventory log page size when none is given
	DefaultLogsPageSize = 50
	// ReconcileWindow is how many recent entries Reconcile checks per variant
	ReconcileWindow = 200
)

// InventoryService is the warehouse service as seen by callers
type InventoryService interface {
	Import(ctx context.Context, req domain.ImportRequest) (*ImportResult, error)
	ListDrafts(ctx context.Context) ([]domain.ImportNote, error)
	CompleteDraft(ctx context.Context, id int64) (*domain.ImportNote, error)
	CancelDraft(ctx context.Context, id int64) (*domain.ImportNote, error)
	LowStock(ctx context.Context, threshold int, outOfStockOnly bool) (*domain.LowStockReport, error)
	Logs(ctx context.Context, filter backend.LogFilter) (*domain.LogsPage, error)
	Stats(ctx context.Context) (*domain.InventoryStats, error)
	Reconcile(ctx context.Context, variantID int64) ([]domain.LedgerBreak, error)
}

type inventoryService struct {
	api       WarehouseAPI
	threshold int
	logger    *zap.Logger
}

// NewInventoryService creates the warehouse service. threshold is the default low-stock threshold.
func NewInventoryService(api WarehouseAPI, threshold int, logger *zap.Logger) *inventoryService {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	return &inventoryService{
		api:       api,
		threshold: threshold,
		logger:    logger,
	}
}

// Import creates a draft import note and then completes it.
// If the draft cannot be created nothing else is attempted. If completion
// fails the draft is left in place and *errors.ErrPartialImport names it.
func (s *inventoryService) Import(ctx context.Context, req domain.ImportRequest) (*ImportResult, error) {
	if fields := req.Validate(); fields != nil {
		metrics.RecordImportNote("invalid")
		return nil, &errors.ErrValidation{Fields: fields, Message: firstMessage(fields, "items")}
	}

	draft, err := s.api.CreateImportNote(ctx, req)
	if err != nil {
		metrics.RecordImportNote("draft_failed")
		s.logger.Error("Failed to create import note draft", zap.Error(err))
		return nil, withFallback(err, msgImportFailed)
	}

	note, err := s.api.CompleteImportNote(ctx, draft.ID)
	if err != nil {
		metrics.RecordImportNote("partial")
		s.logger.Error("Failed to complete import note, draft left open",
			zap.Int64("draft_id", draft.ID),
			zap.Int("total_quantity", req.TotalQuantity()),
			zap.Error(err),
		)
		return nil, &errors.ErrPartialImport{DraftID: draft.ID, ImportNumber: draft.ImportNumber, Err: err}
	}

	metrics.RecordImportNote("completed")
	s.logger.Info("Import note completed",
		zap.Int64("id", note.ID),
		zap.String("import_number", note.ImportNumber),
		zap.Int("total_quantity", req.TotalQuantity()),
	)
	return &ImportResult{
		Note:         note,
		DraftID:      draft.ID,
		LedgerBreaks: s.verifyImport(ctx, note, req),
	}, nil
}

// verifyImport cross-checks the IMPORT log entries a completed note produced.
// The import already happened, so lookup failures are logged and skipped.
func (s *inventoryService) verifyImport(ctx context.Context, note *domain.ImportNote, req domain.ImportRequest) []domain.LedgerBreak {
	checked := *note
	if len(checked.Items) == 0 {
		checked.Items = req.Items
	}
	if checked.ImportNumber == "" {
		return nil
	}

	var logged []domain.InventoryTransaction
	seen := map[int64]bool{}
	for _, item := range checked.Items {
		if seen[item.VariantID] {
			continue
		}
		seen[item.VariantID] = true
		page, err := s.api.InventoryLogs(ctx, backend.LogFilter{
			VariantID: item.VariantID,
			Type:      domain.TransactionTypeImport,
			PageSize:  ReconcileWindow,
		})
		if err != nil {
			s.logger.Warn("Failed to fetch import log entries",
				zap.String("import_number", checked.ImportNumber),
				zap.Int64("variant_id", item.VariantID),
				zap.Error(err),
			)
			return nil
		}
		logged = append(logged, page.Results...)
	}

	breaks := domain.VerifyImport(checked, logged)
	if len(breaks) > 0 {
		metrics.RecordImportNote("ledger_mismatch")
		s.logger.Warn("Import log entries do not match the completed note",
			zap.String("import_number", checked.ImportNumber),
			zap.Int("breaks", len(breaks)),
		)
	}
	return breaks
}

// ListDrafts returns import notes that were never completed or cancelled
func (s *inventoryService) ListDrafts(ctx context.Context) ([]domain.ImportNote, error) {
	return s.api.ListImportNotes(ctx, domain.ImportNoteStatusDraft)
}

// CompleteDraft completes an orphaned draft
func (s *inventoryService) CompleteDraft(ctx context.Context, id int64) (*domain.ImportNote, error) {
	if err := s.requireDraft(ctx, id, domain.ImportNoteStatusCompleted); err != nil {
		return nil, err
	}
	note, err := s.api.CompleteImportNote(ctx, id)
	if err != nil {
		metrics.RecordImportNote("recover_failed")
		return nil, err
	}
	metrics.RecordImportNote("recovered")
	return note, nil
}

// CancelDraft cancels an orphaned draft. Stock is not touched.
func (s *inventoryService) CancelDraft(ctx context.Context, id int64) (*domain.ImportNote, error) {
	if err := s.requireDraft(ctx, id, domain.ImportNoteStatusCancelled); err != nil {
		return nil, err
	}
	note, err := s.api.CancelImportNote(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.RecordImportNote("cancelled")
	return note, nil
}

func (s *inventoryService) requireDraft(ctx context.Context, id int64, to domain.ImportNoteStatus) error {
	note, err := s.api.GetImportNote(ctx, id)
	if err != nil {
		return err
	}
	if !note.Status.CanTransitionTo(to) {
		return &errors.ErrInvalidStateTransition{From: string(note.Status), To: string(to)}
	}
	return nil
}

// LowStock lists variants at or below threshold, using the configured default when threshold is 0
func (s *inventoryService) LowStock(ctx context.Context, threshold int, outOfStockOnly bool) (*domain.LowStockReport, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	report, err := s.api.LowStock(ctx, threshold, outOfStockOnly)
	if err != nil {
		return nil, err
	}
	for _, v := range report.Results {
		if !v.FlagsConsistent() {
			s.logger.Warn("Stock flags disagree with stock count",
				zap.Int64("variant_id", v.VariantID),
				zap.String("sku", v.SKU),
				zap.Int("stock", v.Stock),
				zap.Bool("is_low_stock", v.IsLowStock),
				zap.Bool("is_out_of_stock", v.IsOutOfStock),
			)
		}
	}
	return report, nil
}

func (s *inventoryService) Logs(ctx context.Context, filter backend.LogFilter) (*domain.LogsPage, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultLogsPageSize
	}
	return s.api.InventoryLogs(ctx, filter)
}

func (s *inventoryService) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	return s.api.InventoryStats(ctx)
}

// Reconcile checks the recent ledger of one variant. Current stock is taken
// from the variant info embedded in the entries when the API provides it.
func (s *inventoryService) Reconcile(ctx context.Context, variantID int64) ([]domain.LedgerBreak, error) {
	page, err := s.api.InventoryLogs(ctx, backend.LogFilter{VariantID: variantID, PageSize: ReconcileWindow})
	if err != nil {
		return nil, err
	}

	current := map[int64]int{}
	for _, e := range page.Results {
		if e.VariantInfo != nil {
			current[e.VariantID] = e.VariantInfo.Stock
			break
		}
	}

	breaks := domain.Reconcile(page.Results, current)
	if len(breaks) > 0 {
		s.logger.Warn("Inventory ledger does not reconcile",
			zap.Int64("variant_id", variantID),
			zap.Int("breaks", len(breaks)),
		)
	}
	return breaks, nil
}

func firstMessage(fields map[string][]string, key string) string {
	if msgs := fields[key]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
