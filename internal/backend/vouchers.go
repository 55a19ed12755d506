package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

type voucherValidateRequest struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// ActiveVouchers lists the vouchers currently usable. The shop restricts it to staff.
func (c *Client) ActiveVouchers(ctx context.Context) ([]domain.Voucher, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, PathActiveVouchers, nil, nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[domain.Voucher](raw)
	if err != nil {
		return nil, &errors.ErrTransport{Err: fmt.Errorf("failed to decode voucher list: %w", err)}
	}
	if page.Results == nil {
		return []domain.Voucher{}, nil
	}
	return page.Results, nil
}

// ValidateVoucher checks code against orderTotal. A code the shop refuses is
// an invalid check, not an error; only transport and auth failures are errors.
func (c *Client) ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal) (*domain.VoucherCheck, error) {
	var check domain.VoucherCheck
	err := c.Do(ctx, http.MethodPost, PathValidateVoucher, nil, voucherValidateRequest{Code: code, OrderTotal: orderTotal}, &check)
	switch e := err.(type) {
	case nil:
	case *errors.ErrNotFound:
		return &domain.VoucherCheck{Code: code, Error: domain.MsgVoucherNotFound}, nil
	case *errors.ErrBusinessRule:
		msg := e.Message
		if msg == "" {
			msg = domain.MsgVoucherInvalid
		}
		return &domain.VoucherCheck{Code: code, Error: msg}, nil
	case *errors.ErrValidation:
		return &domain.VoucherCheck{Code: code, Error: errors.UserMessage(e, domain.MsgVoucherInvalid)}, nil
	default:
		return nil, err
	}
	check.Code = code
	return &check, nil
}
