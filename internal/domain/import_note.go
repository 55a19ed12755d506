package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ImportNote is a warehouse goods-received note. It is created as DRAFT and
// only moves stock once completed.
type ImportNote struct {
	ID            int64            `json:"id"`
	ImportNumber  string           `json:"import_number"`
	Status        ImportNoteStatus `json:"status"`
	Items         []ImportNoteItem `json:"items,omitempty"`
	TotalItems    int              `json:"total_items"`
	TotalQuantity int              `json:"total_quantity"`
	Notes         string           `json:"notes,omitempty"`
	CreatedBy     Actor            `json:"created_by"`
	CreatedByName string           `json:"created_by_name,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
}

// ImportNoteItem is one variant line of an import note
type ImportNoteItem struct {
	ID          int64            `json:"id,omitempty"`
	VariantID   int64            `json:"variant"`
	VariantInfo *VariantStock    `json:"variant_info,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// ImportRequest is the body of the draft creation call
type ImportRequest struct {
	Items []ImportNoteItem `json:"items"`
	Notes string           `json:"notes"`
}

// Validate returns per-field messages, nil when the request can be sent
func (r ImportRequest) Validate() map[string][]string {
	fields := map[string][]string{}
	if len(r.Items) == 0 {
		fields["items"] = []string{"Vui lòng chọn ít nhất một sản phẩm"}
	}
	seen := map[int64]bool{}
	for i, item := range r.Items {
		key := fmt.Sprintf("items[%d]", i)
		switch {
		case item.VariantID <= 0:
			fields[key] = append(fields[key], "Vui lòng chọn sản phẩm")
		case seen[item.VariantID]:
			fields[key] = append(fields[key], fmt.Sprintf("Sản phẩm %d bị trùng trong phiếu nhập", item.VariantID))
		}
		seen[item.VariantID] = true
		if item.Quantity < 1 {
			fields[key] = append(fields[key], "Số lượng phải lớn hơn 0")
		}
		if item.UnitCost != nil && item.UnitCost.IsNegative() {
			fields[key] = append(fields[key], "Đơn giá không hợp lệ")
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// TotalQuantity sums the quantities of all lines
func (r ImportRequest) TotalQuantity() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

// ExpectedTransactions returns the IMPORT entries completing note should produce,
// starting from the given stock counts.
func ExpectedTransactions(note ImportNote, stock map[int64]int) []InventoryTransaction {
	running := make(map[int64]int, len(stock))
	for k, v := range stock {
		running[k] = v
	}
	out := make([]InventoryTransaction, 0, len(note.Items))
	for _, item := range note.Items {
		before := running[item.VariantID]
		out = append(out, InventoryTransaction{
			TransactionID:  note.ImportNumber,
			Type:           TransactionTypeImport,
			VariantID:      item.VariantID,
			QuantityChange: item.Quantity,
			StockBefore:    before,
			StockAfter:     before + item.Quantity,
			Note:           item.Note,
			CreatedBy:      note.CreatedBy,
		})
		running[item.VariantID] = before + item.Quantity
	}
	return out
}

// VerifyImport checks the IMPORT entries logged under a completed note's number
// against what completing it should have produced. Opening stock per variant
// is the stock_before of its first logged entry.
func VerifyImport(note ImportNote, logged []InventoryTransaction) []LedgerBreak {
	byVariant := map[int64][]InventoryTransaction{}
	for _, e := range logged {
		if e.Type == TransactionTypeImport && e.TransactionID == note.ImportNumber {
			byVariant[e.VariantID] = append(byVariant[e.VariantID], e)
		}
	}
	opening := map[int64]int{}
	for v, chain := range byVariant {
		sortEntries(chain)
		opening[v] = chain[0].StockBefore
	}

	ledger := NewLedger(opening)
	matched := map[int64]int{}
	var breaks []LedgerBreak
	for _, want := range ExpectedTransactions(note, opening) {
		chain := byVariant[want.VariantID]
		i := matched[want.VariantID]
		if i >= len(chain) {
			breaks = append(breaks, LedgerBreak{
				VariantID: want.VariantID,
				Reason:    fmt.Sprintf("no IMPORT entry logged for %s %+d", note.ImportNumber, want.QuantityChange),
			})
			continue
		}
		matched[want.VariantID] = i + 1

		got := chain[i]
		if _, err := ledger.Record(got.VariantID, got.Type, got.QuantityChange, got.TransactionID, got.CreatedBy, got.CreatedAt); err != nil {
			breaks = append(breaks, LedgerBreak{VariantID: got.VariantID, EntryID: got.ID, Reason: err.Error()})
			continue
		}
		if got.QuantityChange != want.QuantityChange || got.StockBefore != want.StockBefore || got.StockAfter != want.StockAfter {
			reason := fmt.Sprintf("logged %+d (%d to %d), expected %+d (%d to %d)",
				got.QuantityChange, got.StockBefore, got.StockAfter,
				want.QuantityChange, want.StockBefore, want.StockAfter)
			breaks = append(breaks, LedgerBreak{VariantID: got.VariantID, EntryID: got.ID, Reason: reason})
		}
	}

	for v, chain := range byVariant {
		if extra := len(chain) - matched[v]; extra > 0 {
			breaks = append(breaks, LedgerBreak{
				VariantID: v,
				EntryID:   chain[matched[v]].ID,
				Reason:    fmt.Sprintf("%d unexpected IMPORT entries logged for %s", extra, note.ImportNumber),
			})
			continue
		}
		if last := chain[len(chain)-1]; ledger.Stock(v) != last.StockAfter {
			breaks = append(breaks, LedgerBreak{
				VariantID: v,
				EntryID:   last.ID,
				Reason:    fmt.Sprintf("replayed stock %d does not match logged stock_after %d", ledger.Stock(v), last.StockAfter),
			})
		}
	}

	sort.SliceStable(breaks, func(i, j int) bool { return breaks[i].VariantID < breaks[j].VariantID })
	return breaks
}
