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

// OrderFilter holds the order list query parameters
type OrderFilter struct {
	Page          int
	PageSize      int
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Search        string
	DateFrom      string
	DateTo        string
}

func (f OrderFilter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.PaymentStatus != "" {
		v.Set("payment_status", string(f.PaymentStatus))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.DateFrom != "" {
		v.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		v.Set("date_to", f.DateTo)
	}
	return v
}

// ActionResult is the body returned by an order action endpoint
type ActionResult struct {
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Order   *domain.OrderDetail `json:"order,omitempty"`
}

// PaymentLink is returned by retry_payment and the VNPAY create endpoint
type PaymentLink struct {
	Success       bool   `json:"success"`
	PaymentURL    string `json:"payment_url,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentID     int64  `json:"payment_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// CreateOrderResult is the body returned by create_order. Older API
// versions return the order fields at the top level instead of under order.
type CreateOrderResult struct {
	Success         bool                `json:"success"`
	RequiresPayment bool                `json:"requires_payment"`
	PaymentURL      string              `json:"payment_url,omitempty"`
	TransactionID   string              `json:"transaction_id,omitempty"`
	Message         string              `json:"message,omitempty"`
	Order           *domain.OrderDetail `json:"order,omitempty"`
	ID              int64               `json:"id,omitempty"`
	OrderNumber     string              `json:"order_number,omitempty"`
}

// OrderRef returns the id and number of the created order, whichever shape it came in
func (r *CreateOrderResult) OrderRef() (int64, string) {
	if r.Order != nil && r.Order.ID != 0 {
		return r.Order.ID, r.Order.OrderNumber
	}
	return r.ID, r.OrderNumber
}

func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) (*Page[domain.OrderSummary], error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, PathOrders, filter.Values(), nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[domain.OrderSummary](raw)
	if err != nil {
		return nil, &errors.ErrTransport{Err: fmt.Errorf("failed to decode order list: %w", err)}
	}
	return page, nil
}

// GetOrder fetches the full order. It is read-only on the server.
func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	var order domain.OrderDetail
	if err := c.Do(ctx, http.MethodGet, OrderPath(id), nil, nil, &order); err != nil {
		if nf, ok := err.(*errors.ErrNotFound); ok {
			nf.Resource = "order"
			nf.ID = strconv.FormatInt(id, 10)
		}
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrderStats(ctx context.Context) (*domain.OrderStats, error) {
	var stats domain.OrderStats
	if err := c.Do(ctx, http.MethodGet, PathOrderStats, nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// PostOrderAction issues POST /orders/{id}/{action}/ with body, or no body when body is nil
func (c *Client) PostOrderAction(ctx context.Context, id int64, action domain.Action, body map[string]string) (*ActionResult, error) {
	var payload interface{}
	if body != nil {
		payload = body
	}
	var result ActionResult
	if err := c.Do(ctx, http.MethodPost, OrderActionPath(id, action), nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RetryPayment(ctx context.Context, id int64) (*PaymentLink, error) {
	var link PaymentLink
	if err := c.Do(ctx, http.MethodPost, OrderActionPath(id, domain.ActionRetryPayment), nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) CreateOrder(ctx context.Context, form domain.CheckoutForm) (*CreateOrderResult, error) {
	var result CreateOrderResult
	if err := c.Do(ctx, http.MethodPost, PathCreateOrder, nil, form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
