package service

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

func importRequest() domain.ImportRequest {
	return domain.ImportRequest{
		Items: []domain.ImportNoteItem{{VariantID: 5, Quantity: 10}},
		Notes: "Nhập hàng đợt 1",
	}
}

func TestImportCreatesDraftThenCompletes(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /warehouse/import-notes/", http.StatusCreated, map[string]interface{}{
		"id": 9, "notes": "Nhập hàng đợt 1", "items": []map[string]interface{}{{"variant": 5, "quantity": 10}},
	})
	shop.json("POST /warehouse/import-notes/9/complete/", http.StatusOK, map[string]interface{}{
		"message":     "Import note completed",
		"import_note": map[string]interface{}{"id": 9, "import_number": "IMP-20261015-0001", "status": "COMPLETED"},
	})

	svc := NewInventoryService(client, 5, zaptest.NewLogger(t))
	result, err := svc.Import(context.Background(), importRequest())
	if err != nil {
		t.Fatalf("Expected import to succeed, got %v", err)
	}
	if result.Note.Status != domain.ImportNoteStatusCompleted || result.DraftID != 9 {
		t.Errorf("Expected completed note from draft 9, got %+v", result)
	}

	calls := shop.mutations()
	if len(calls) != 2 || calls[0].Path != "/warehouse/import-notes/" || calls[1].Path != "/warehouse/import-notes/9/complete/" {
		t.Fatalf("Expected create then complete, got %+v", calls)
	}
	body := decodeBody(t, calls[0].Body)
	items, _ := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected one item in draft body, got %v", body)
	}
	item := items[0].(map[string]interface{})
	if item["variant"] != float64(5) || item["quantity"] != float64(10) {
		t.Errorf("Expected {variant:5, quantity:10}, got %v", item)
	}
}

func TestImportNeverCompletesWhenDraftFails(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /warehouse/import-notes/", http.StatusBadRequest, map[string]interface{}{
		"items": []string{"Duplicate variants not allowed in the same import note"},
	})

	svc := NewInventoryService(client, 5, zaptest.NewLogger(t))
	if _, err := svc.Import(context.Background(), importRequest()); err == nil {
		t.Fatal("Expected import to fail")
	}
	if calls := shop.mutations(); len(calls) != 1 {
		t.Errorf("Expected only the draft call, got %+v", calls)
	}
}

func TestImportPartialFailureNamesDraft(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /warehouse/import-notes/", http.StatusCreated, map[string]interface{}{"id": 12})
	shop.handle("POST /warehouse/import-notes/12/complete/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc := NewInventoryService(client, 5, zaptest.NewLogger(t))
	_, err := svc.Import(context.Background(), importRequest())
	var partial *errors.ErrPartialImport
	if !stderrors.As(err, &partial) {
		t.Fatalf("Expected ErrPartialImport, got %v", err)
	}
	if partial.DraftID != 12 {
		t.Errorf("Expected draft 12, got %d", partial.DraftID)
	}
}

func TestImportValidatesLocally(t *testing.T) {
	shop, client := newFakeShop(t)
	svc := NewInventoryService(client, 5, zaptest.NewLogger(t))

	_, err := svc.Import(context.Background(), domain.ImportRequest{})
	if got := errors.UserMessage(err, ""); got != "Vui lòng chọn ít nhất một sản phẩm" {
		t.Errorf("Expected empty selection message, got %q", got)
	}
	if len(shop.recorded()) != 0 {
		t.Error("Expected no shop calls for an invalid request")
	}
}

func TestDraftRecovery(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("GET /warehouse/import-notes/", http.StatusOK, []map[string]interface{}{
		{"id": 12, "status": "DRAFT"},
		{"id": 13, "status": "COMPLETED"},
	})
	shop.json("GET /warehouse/import-notes/12/", http.StatusOK, map[string]interface{}{"id": 12, "status": "DRAFT"})
	shop.json("GET /warehouse/import-notes/13/", http.StatusOK, map[string]interface{}{"id": 13, "status": "COMPLETED"})
	shop.json("POST /warehouse/import-notes/12/cancel/", http.StatusOK, map[string]interface{}{
		"message": "Import note cancelled", "import_note": map[string]interface{}{"id": 12, "status": "CANCELLED"},
	})

	svc := NewInventoryService(client, 5, zaptest.NewLogger(t))
	ctx := context.Background()

	drafts, err := svc.ListDrafts(ctx)
	if err != nil || len(drafts) != 1 || drafts[0].ID != 12 {
		t.Fatalf("Expected draft 12 only, got %+v (%v)", drafts, err)
	}

	if _, err := svc.CompleteDraft(ctx, 13); err == nil {
		t.Error("Expected completing a completed note to be refused")
	} else if _, ok := err.(*errors.ErrInvalidStateTransition); !ok {
		t.Errorf("Expected ErrInvalidStateTransition, got %T", err)
	}
	if n := shop.count(http.MethodPost, "/warehouse/import-notes/13/complete/"); n != 0 {
		t.Errorf("Expected no complete call for note 13, got %d", n)
	}

	note, err := svc.CancelDraft(ctx, 12)
	if err != nil {
		t.Fatalf("Expected cancel to succeed, got %v", err)
	}
	if note.Status != domain.ImportNoteStatusCancelled {
		t.Errorf("Expected CANCELLED, got %s", note.Status)
	}
}

func TestLowStockUsesDefaultThreshold(t *testing.T) {
	shop, client := newFakeShop(t)
	thresholds := make(chan string, 1)
	shop.handle("GET /warehouse/inventory/low_stock/", func(w http.ResponseWriter, r *http.Request) {
		thresholds <- r.URL.Query().Get("threshold")
		writeTestJSON(w, http.StatusOK, map[string]interface{}{
			"count":     1,
			"threshold": 7,
			"results":   []map[string]interface{}{{"id": 5, "sku": "RB-01", "stock": 3, "is_low_stock": true}},
		})
	})

	svc := NewInventoryService(client, 7, zaptest.NewLogger(t))
	report, err := svc.LowStock(context.Background(), 0, false)
	if err != nil {
		t.Fatalf("Expected report, got %v", err)
	}
	if threshold := <-thresholds; threshold != "7" {
		t.Errorf("Expected threshold 7 to be sent, got %q", threshold)
	}
	if report.Results[0].Level() != domain.StockLevelLowStock {
		t.Errorf("Expected low stock level, got %s", report.Results[0].Level())
	}
}

func TestReconcileFindsBreaks(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("GET /warehouse/inventory/logs/", http.StatusOK, map[string]interface{}{
		"count": 2,
		"results": []map[string]interface{}{
			{"id": 2, "variant": 5, "transaction_type": "ORDER", "quantity_change": -2, "stock_before": 9, "stock_after": 7,
				"created_at": "2026-10-15T10:00:00Z", "variant_info": map[string]interface{}{"id": 5, "stock": 7}},
			{"id": 1, "variant": 5, "transaction_type": "IMPORT", "quantity_change": 10, "stock_before": 0, "stock_after": 10,
				"created_at": "2026-10-15T09:00:00Z"},
		},
	})

	svc := NewInventoryService(client, 5, zaptest.NewLogger(t))
	breaks, err := svc.Reconcile(context.Background(), 5)
	if err != nil {
		t.Fatalf("Expected reconcile to run, got %v", err)
	}
	if len(breaks) != 1 || breaks[0].EntryID != 2 {
		t.Errorf("Expected one break at entry 2, got %+v", breaks)
	}
}

func completedImportShop(t *testing.T, logged []map[string]interface{}) (*fakeShop, *inventoryService) {
	shop, client := newFakeShop(t)
	shop.json("POST /warehouse/import-notes/", http.StatusCreated, map[string]interface{}{"id": 9})
	shop.json("POST /warehouse/import-notes/9/complete/", http.StatusOK, map[string]interface{}{
		"message": "Import note completed",
		"import_note": map[string]interface{}{
			"id":            9,
			"import_number": "IMP-20261015-0001",
			"status":        "COMPLETED",
			"items":         []map[string]interface{}{{"variant": 5, "quantity": 10}},
		},
	})
	shop.json("GET /warehouse/inventory/logs/", http.StatusOK, map[string]interface{}{"count": len(logged), "results": logged})
	return shop, NewInventoryService(client, 5, zaptest.NewLogger(t))
}

func TestImportCrossChecksLoggedEntries(t *testing.T) {
	shop, svc := completedImportShop(t, []map[string]interface{}{{
		"id":               40,
		"transaction_id":   "IMP-20261015-0001",
		"transaction_type": "IMPORT",
		"variant":          5,
		"quantity_change":  10,
		"stock_before":     2,
		"stock_after":      12,
	}})

	result, err := svc.Import(context.Background(), importRequest())
	if err != nil {
		t.Fatalf("Expected import to succeed, got %v", err)
	}
	if len(result.LedgerBreaks) != 0 {
		t.Errorf("Expected logged entries to match, got %+v", result.LedgerBreaks)
	}
	calls := shop.recorded()
	last := calls[len(calls)-1]
	if last.Method != http.MethodGet || last.Path != "/warehouse/inventory/logs/" {
		t.Errorf("Expected log lookup after completion, got %+v", last)
	}
}

func TestImportReportsMismatchedLogEntries(t *testing.T) {
	_, svc := completedImportShop(t, []map[string]interface{}{{
		"id":               40,
		"transaction_id":   "IMP-20261015-0001",
		"transaction_type": "IMPORT",
		"variant":          5,
		"quantity_change":  1,
		"stock_before":     2,
		"stock_after":      3,
	}})

	result, err := svc.Import(context.Background(), importRequest())
	if err != nil {
		t.Fatalf("Expected import to succeed despite mismatch, got %v", err)
	}
	if len(result.LedgerBreaks) != 1 || result.LedgerBreaks[0].VariantID != 5 {
		t.Errorf("Expected one break on variant 5, got %+v", result.LedgerBreaks)
	}
}
