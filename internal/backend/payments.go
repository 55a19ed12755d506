package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

type vnpayCreateRequest struct {
	OrderID     int64  `json:"order_id"`
	PaymentType string `json:"payment_type"`
}

// PaymentReturn is the verification result of a VNPAY redirect
type PaymentReturn struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	OrderNumber   string          `json:"order_number,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	ResponseCode  string          `json:"response_code,omitempty"`
}

// CreateVNPayPayment asks the API for a gateway URL. paymentType is qr or card.
func (c *Client) CreateVNPayPayment(ctx context.Context, orderID int64, paymentType string) (*PaymentLink, error) {
	var link PaymentLink
	req := vnpayCreateRequest{OrderID: orderID, PaymentType: paymentType}
	if err := c.Do(ctx, http.MethodPost, PathVNPayCreate, nil, req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// VerifyVNPayReturn forwards the gateway redirect query untouched; signature checks happen server-side.
func (c *Client) VerifyVNPayReturn(ctx context.Context, query url.Values) (*PaymentReturn, error) {
	var result PaymentReturn
	if err := c.Do(ctx, http.MethodGet, PathVNPayReturn, query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
