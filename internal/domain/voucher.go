package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MsgVoucherCodeRequired = "Vui lòng nhập mã voucher"
	MsgVoucherNotFound     = "Mã voucher không tồn tại"
	MsgVoucherInvalid      = "Mã voucher không hợp lệ"
)

type DiscountType string

const (
	DiscountPercentage   DiscountType = "PERCENTAGE"
	DiscountFixedAmount  DiscountType = "FIXED_AMOUNT"
	DiscountFreeShipping DiscountType = "FREE_SHIPPING"
)

// Voucher is a discount code as the shop API lists it
type Voucher struct {
	ID                int64            `json:"id"`
	Code              string           `json:"code"`
	Description       string           `json:"description,omitempty"`
	DiscountType      DiscountType     `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	DiscountDisplay   string           `json:"discount_display,omitempty"`
	MinOrderValue     decimal.Decimal  `json:"min_order_value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	UsageLimit        *int             `json:"usage_limit,omitempty"`
	UsagePerUser      int              `json:"usage_per_user"`
	TimesUsed         int              `json:"times_used"`
	ValidFrom         time.Time        `json:"valid_from"`
	ValidUntil        time.Time        `json:"valid_until"`
	IsActive          bool             `json:"is_active"`
	IsValid           bool             `json:"is_valid"`
}

// EstimateDiscount is the discount the voucher would give on subtotal with
// the given shipping fee. The shop recomputes it when the order is created.
func (v Voucher) EstimateDiscount(subtotal, shipping decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch v.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(v.DiscountValue).Div(decimal.NewFromInt(100))
		if v.MaxDiscountAmount != nil && v.MaxDiscountAmount.IsPositive() && discount.GreaterThan(*v.MaxDiscountAmount) {
			discount = *v.MaxDiscountAmount
		}
	case DiscountFixedAmount:
		discount = decimal.Min(v.DiscountValue, subtotal)
	case DiscountFreeShipping:
		discount = shipping
	}
	return discount.Round(2)
}

// VoucherCheck is the outcome of validating one code against an order total
type VoucherCheck struct {
	Valid             bool            `json:"valid"`
	Code              string          `json:"code"`
	Voucher           *Voucher        `json:"voucher,omitempty"`
	Message           string          `json:"message,omitempty"`
	Error             string          `json:"error,omitempty"`
	EstimatedDiscount decimal.Decimal `json:"estimated_discount"`
	EstimatedText     string          `json:"estimated_discount_text,omitempty"`
}

// NormalizeVoucherCode trims and upper-cases a code the way the shop stores it
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeVoucherCodes normalizes codes, dropping blanks and repeats
func NormalizeVoucherCodes(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, c := range codes {
		c = NormalizeVoucherCode(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
