package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// LogFilter holds the inventory log query parameters
type LogFilter struct {
	VariantID int64
	Type      domain.TransactionType
	FromDate  string
	ToDate    string
	Page      int
	PageSize  int
}

func (f LogFilter) Values() url.Values {
	v := url.Values{}
	if f.VariantID > 0 {
		v.Set("variant_id", strconv.FormatInt(f.VariantID, 10))
	}
	if f.Type != "" {
		v.Set("transaction_type", string(f.Type))
	}
	if f.FromDate != "" {
		v.Set("from_date", f.FromDate)
	}
	if f.ToDate != "" {
		v.Set("to_date", f.ToDate)
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return v
}

type importNoteEnvelope struct {
	Message    string             `json:"message"`
	ImportNote *domain.ImportNote `json:"import_note"`
}

func (c *Client) LowStock(ctx context.Context, threshold int, outOfStockOnly bool) (*domain.LowStockReport, error) {
	q := url.Values{}
	if threshold > 0 {
		q.Set("threshold", strconv.Itoa(threshold))
	}
	if outOfStockOnly {
		q.Set("out_of_stock_only", "true")
	}
	var report domain.LowStockReport
	if err := c.Do(ctx, http.MethodGet, PathLowStock, q, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) InventoryLogs(ctx context.Context, filter LogFilter) (*domain.LogsPage, error) {
	var page domain.LogsPage
	if err := c.Do(ctx, http.MethodGet, PathInventoryLogs, filter.Values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) InventoryStats(ctx context.Context) (*domain.InventoryStats, error) {
	var stats domain.InventoryStats
	if err := c.Do(ctx, http.MethodGet, PathInventoryStats, nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateImportNote creates a DRAFT note. Stock is untouched until it is completed.
func (c *Client) CreateImportNote(ctx context.Context, req domain.ImportRequest) (*domain.ImportNote, error) {
	var note domain.ImportNote
	if err := c.Do(ctx, http.MethodPost, PathImportNotes, nil, req, &note); err != nil {
		return nil, err
	}
	if note.ID == 0 {
		return nil, &errors.ErrTransport{Err: fmt.Errorf("import note created without an id")}
	}
	if note.Status == "" {
		note.Status = domain.ImportNoteStatusDraft
	}
	return &note, nil
}

func (c *Client) CompleteImportNote(ctx context.Context, id int64) (*domain.ImportNote, error) {
	return c.importNoteOp(ctx, id, "complete")
}

func (c *Client) CancelImportNote(ctx context.Context, id int64) (*domain.ImportNote, error) {
	return c.importNoteOp(ctx, id, "cancel")
}

func (c *Client) importNoteOp(ctx context.Context, id int64, op string) (*domain.ImportNote, error) {
	var env importNoteEnvelope
	if err := c.Do(ctx, http.MethodPost, ImportNoteOpPath(id, op), nil, struct{}{}, &env); err != nil {
		return nil, err
	}
	if env.ImportNote == nil {
		return &domain.ImportNote{ID: id}, nil
	}
	return env.ImportNote, nil
}

func (c *Client) GetImportNote(ctx context.Context, id int64) (*domain.ImportNote, error) {
	var note domain.ImportNote
	if err := c.Do(ctx, http.MethodGet, ImportNotePath(id), nil, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ListImportNotes lists notes, keeping only those in status when status is set
func (c *Client) ListImportNotes(ctx context.Context, status domain.ImportNoteStatus) ([]domain.ImportNote, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, PathImportNotes, q, nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[domain.ImportNote](raw)
	if err != nil {
		return nil, &errors.ErrTransport{Err: fmt.Errorf("failed to decode import notes: %w", err)}
	}
	if status == "" {
		return page.Results, nil
	}
	notes := make([]domain.ImportNote, 0, len(page.Results))
	for _, n := range page.Results {
		if n.Status == status {
			notes = append(notes, n)
		}
	}
	return notes, nil
}
