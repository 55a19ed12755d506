package service

import (
	"github.com/eyewearvn/storefront/internal/domain"
)

// OrderView is an order with everything the detail page renders
type OrderView struct {
	Order              *domain.OrderDetail  `json:"order"`
	Display            domain.StatusDisplay `json:"display"`
	PaymentStatusLabel string               `json:"payment_status_label"`
	PaymentMethodLabel string               `json:"payment_method_label"`
	TotalText          string               `json:"total_text"`
	Actions            domain.ActionSet     `json:"actions"`
	Countdown          domain.Countdown     `json:"countdown"`
}

// ActionRequest is one user-triggered order action
type ActionRequest struct {
	OrderID  int64
	Audience domain.Audience
	Action   domain.Action
	Input    domain.ActionInput
}

// ActionOutcome is the result of a successful action. Order is the
// re-fetched detail; it is nil when the re-fetch failed.
type ActionOutcome struct {
	Action     domain.Action `json:"action"`
	Message    string        `json:"message,omitempty"`
	PaymentURL string        `json:"payment_url,omitempty"`
	Order      *OrderView    `json:"order,omitempty"`
	Stale      bool          `json:"stale,omitempty"`
}

// ImportResult is a completed two-step import
type ImportResult struct {
	Note         *domain.ImportNote   `json:"import_note"`
	DraftID      int64                `json:"draft_id"`
	LedgerBreaks []domain.LedgerBreak `json:"ledger_breaks,omitempty"`
}

// CheckoutResult tells the caller where to send the shopper next
type CheckoutResult struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	PaymentURL  string `json:"payment_url,omitempty"`
	Message     string `json:"message,omitempty"`
}

// PaymentReturnResult is the outcome of a VNPAY redirect
type PaymentReturnResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OrderNumber string `json:"order_number,omitempty"`
}

// CartView is the cart with the locally estimated totals
type CartView struct {
	Cart     *domain.Cart       `json:"cart"`
	Controls []QuantityControls `json:"controls"`
	Subtotal string             `json:"subtotal"`
	Shipping string             `json:"shipping"`
	Total    string             `json:"total"`
}

// QuantityControls says which quantity buttons are enabled for a cart line
type QuantityControls struct {
	ItemID       int64 `json:"item_id"`
	CanIncrement bool  `json:"can_increment"`
	CanDecrement bool  `json:"can_decrement"`
}
