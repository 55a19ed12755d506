package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrStockMismatch  = errors.New("stock_after does not equal stock_before + quantity_change")
	ErrWrongSign      = errors.New("quantity_change has the wrong sign for the transaction type")
	ErrNegativeStock  = errors.New("stock cannot go below zero")
	ErrUnknownTxnType = errors.New("unknown transaction type")
)

// Actor is the creator of a ledger entry. The API sends either a user id or a display name.
type Actor string

func (a *Actor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Actor(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("actor: %w", err)
	}
	*a = Actor(n.String())
	return nil
}

// InventoryTransaction is one immutable ledger entry
type InventoryTransaction struct {
	ID             int64           `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	Type           TransactionType `json:"transaction_type"`
	VariantID      int64           `json:"variant"`
	QuantityChange int             `json:"quantity_change"`
	StockBefore    int             `json:"stock_before"`
	StockAfter     int             `json:"stock_after"`
	Note           string          `json:"note,omitempty"`
	CreatedBy      Actor           `json:"created_by"`
	CreatedByName  string          `json:"created_by_name,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	VariantInfo    *VariantStock   `json:"variant_info,omitempty"`
}

// Validate checks the bookkeeping of a single entry
func (t InventoryTransaction) Validate() error {
	if t.StockAfter != t.StockBefore+t.QuantityChange {
		return ErrStockMismatch
	}
	if t.StockAfter < 0 {
		return ErrNegativeStock
	}
	switch t.Type {
	case TransactionTypeImport, TransactionTypeRefund:
		if t.QuantityChange <= 0 {
			return ErrWrongSign
		}
	case TransactionTypeOrder:
		if t.QuantityChange >= 0 {
			return ErrWrongSign
		}
	case TransactionTypeAdjustment:
		if t.QuantityChange == 0 {
			return ErrWrongSign
		}
	default:
		return ErrUnknownTxnType
	}
	return nil
}

// LogsPage is a page of the inventory log query
type LogsPage struct {
	Count    int                    `json:"count"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Results  []InventoryTransaction `json:"results"`
}

// Ledger is an append-only inventory log with the running stock per variant.
// Entries are copied in and out so recorded history cannot be edited.
type Ledger struct {
	mu      sync.Mutex
	entries []InventoryTransaction
	stock   map[int64]int
	nextID  int64
}

// NewLedger starts a ledger from opening stock counts
func NewLedger(opening map[int64]int) *Ledger {
	stock := make(map[int64]int, len(opening))
	for k, v := range opening {
		stock[k] = v
	}
	return &Ledger{stock: stock, nextID: 1}
}

// Record applies delta to the variant's stock and appends the resulting entry
func (l *Ledger) Record(variant int64, typ TransactionType, delta int, ref string, actor Actor, at time.Time) (InventoryTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.stock[variant]
	txn := InventoryTransaction{
		ID:             l.nextID,
		TransactionID:  ref,
		Type:           typ,
		VariantID:      variant,
		QuantityChange: delta,
		StockBefore:    before,
		StockAfter:     before + delta,
		CreatedBy:      actor,
		CreatedAt:      at,
	}
	if err := txn.Validate(); err != nil {
		return InventoryTransaction{}, fmt.Errorf("variant %d %s %+d: %w", variant, typ, delta, err)
	}

	l.entries = append(l.entries, txn)
	l.stock[variant] = txn.StockAfter
	l.nextID++
	return txn, nil
}

// Stock returns the running stock of a variant
func (l *Ledger) Stock(variant int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[variant]
}

// Entries returns a copy of the recorded entries in order
func (l *Ledger) Entries() []InventoryTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]InventoryTransaction, len(l.entries))
	copy(out, l.entries)
	return out
}

// LedgerBreak describes one place where a log does not add up
type LedgerBreak struct {
	VariantID int64  `json:"variant_id"`
	EntryID   int64  `json:"entry_id,omitempty"`
	Reason    string `json:"reason"`
}

// Reconcile checks fetched log entries against current stock counts.
// Per variant, entries are ordered by created_at then id, each must balance,
// each must start where the previous one ended, and the last must end at the
// current stock when current has a value for that variant.
func Reconcile(entries []InventoryTransaction, current map[int64]int) []LedgerBreak {
	byVariant := map[int64][]InventoryTransaction{}
	for _, e := range entries {
		byVariant[e.VariantID] = append(byVariant[e.VariantID], e)
	}

	variants := make([]int64, 0, len(byVariant))
	for v := range byVariant {
		variants = append(variants, v)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i] < variants[j] })

	var breaks []LedgerBreak
	for _, v := range variants {
		chain := byVariant[v]
		sortEntries(chain)

		for i, e := range chain {
			if err := e.Validate(); err != nil {
				breaks = append(breaks, LedgerBreak{VariantID: v, EntryID: e.ID, Reason: err.Error()})
			}
			if i > 0 && e.StockBefore != chain[i-1].StockAfter {
				breaks = append(breaks, LedgerBreak{
					VariantID: v,
					EntryID:   e.ID,
					Reason:    fmt.Sprintf("stock_before %d does not continue previous stock_after %d", e.StockBefore, chain[i-1].StockAfter),
				})
			}
		}

		if stock, ok := current[v]; ok {
			last := chain[len(chain)-1]
			if last.StockAfter != stock {
				breaks = append(breaks, LedgerBreak{
					VariantID: v,
					EntryID:   last.ID,
					Reason:    fmt.Sprintf("last stock_after %d does not match current stock %d", last.StockAfter, stock),
				})
			}
		}
	}
	return breaks
}

// sortEntries orders one variant's entries by created_at then id
func sortEntries(chain []InventoryTransaction) {
	sort.SliceStable(chain, func(i, j int) bool {
		if !chain[i].CreatedAt.Equal(chain[j].CreatedAt) {
			return chain[i].CreatedAt.Before(chain[j].CreatedAt)
		}
		return chain[i].ID < chain[j].ID
	})
}
