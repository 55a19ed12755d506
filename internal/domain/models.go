package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapabilityFlags are computed by the shop API and trusted as-is.
// A nil flag means the server did not send it.
type CapabilityFlags struct {
	CanCancel         *bool `json:"can_cancel,omitempty"`
	CanConfirm        *bool `json:"can_confirm,omitempty"`
	CanMarkDelivering *bool `json:"can_mark_delivering,omitempty"`
	CanMarkDelivered  *bool `json:"can_mark_delivered,omitempty"`
	CanRequestRefund  *bool `json:"can_request_refund,omitempty"`
	CanRetryPayment   *bool `json:"can_retry_payment,omitempty"`
}

// Flag returns the value of a capability flag, false when absent
func Flag(b *bool) bool {
	return b != nil && *b
}

// Bool returns a pointer to v, handy for building flags
func Bool(v bool) *bool {
	return &v
}

// OrderSummary is a row of the order list
type OrderSummary struct {
	ID            int64           `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Status        OrderStatus     `json:"status"`
	StatusDisplay string          `json:"status_display,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	ItemsCount    int             `json:"items_count,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderDetail is the full order as returned by GET /orders/{id}/
type OrderDetail struct {
	ID                   int64            `json:"id"`
	OrderNumber          string           `json:"order_number"`
	CustomerName         string           `json:"customer_name"`
	Email                string           `json:"email"`
	Phone                string           `json:"phone"`
	Status               OrderStatus      `json:"status"`
	StatusDisplay        string           `json:"status_display,omitempty"`
	PaymentMethod        PaymentMethod    `json:"payment_method"`
	PaymentMethodDisplay string           `json:"payment_method_display,omitempty"`
	PaymentStatus        PaymentStatus    `json:"payment_status"`
	PaymentStatusDisplay string           `json:"payment_status_display,omitempty"`
	PaymentTransactionID string           `json:"payment_transaction_id,omitempty"`
	Subtotal             decimal.Decimal  `json:"subtotal"`
	ShippingCost         decimal.Decimal  `json:"shipping_cost"`
	DiscountAmount       decimal.Decimal  `json:"discount_amount"`
	Total                decimal.Decimal  `json:"total"`
	TrackingNumber       string           `json:"tracking_number,omitempty"`
	Carrier              string           `json:"carrier,omitempty"`
	CustomerNote         string           `json:"customer_note,omitempty"`
	AdminNote            string           `json:"admin_note,omitempty"`
	RefundReason         string           `json:"refund_reason,omitempty"`
	CancellationReason   string           `json:"cancellation_reason,omitempty"`
	Items                []OrderItem      `json:"items"`
	ShippingAddress      ShippingAddress  `json:"shipping_address"`
	StatusHistory        []StatusHistory  `json:"status_history"`
	AppliedVouchers      []AppliedVoucher `json:"applied_vouchers,omitempty"`

	CapabilityFlags

	// Seconds until an unpaid PENDING order is auto-canceled
	TimeUntilExpiration *float64 `json:"time_until_expiration,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ProcessingAt *time.Time `json:"processing_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	DeliveringAt *time.Time `json:"delivering_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
}

// ExpirationSeconds returns the remaining payment window in whole seconds, 0 when unknown or elapsed
func (o *OrderDetail) ExpirationSeconds() int {
	if o.TimeUntilExpiration == nil || *o.TimeUntilExpiration <= 0 {
		return 0
	}
	return int(*o.TimeUntilExpiration)
}

// TotalConsistent reports whether total = subtotal + shipping_cost - discount_amount holds
func (o *OrderDetail) TotalConsistent() bool {
	return OrderTotal(o.Subtotal, o.ShippingCost, o.DiscountAmount).Equal(o.Total)
}

// OrderItem is an immutable snapshot of a purchased variant
type OrderItem struct {
	ID             int64             `json:"id"`
	ProductName    string            `json:"product_name"`
	VariantSKU     string            `json:"variant_sku"`
	VariantDetails map[string]string `json:"variant_details,omitempty"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	Quantity       int               `json:"quantity"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
}

// ShippingAddress is copied into the order at checkout
type ShippingAddress struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Ward         string `json:"ward,omitempty"`
	District     string `json:"district,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country"`
	FullAddress  string `json:"full_address,omitempty"`
}

// StatusHistory is one entry of the order audit trail
type StatusHistory struct {
	FromStatus        OrderStatus `json:"from_status"`
	FromStatusDisplay string      `json:"from_status_display,omitempty"`
	ToStatus          OrderStatus `json:"to_status"`
	ToStatusDisplay   string      `json:"to_status_display,omitempty"`
	Note              string      `json:"note,omitempty"`
	ChangedByEmail    string      `json:"changed_by_email,omitempty"`
	ChangedByName     string      `json:"changed_by_name,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

type AppliedVoucher struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// StatusCount is one bucket of the status breakdown
type StatusCount struct {
	Status OrderStatus `json:"status"`
	Label  string      `json:"label"`
	Count  int         `json:"count"`
}

// OrderStats is the admin dashboard summary
type OrderStats struct {
	TotalOrdersToday         int             `json:"total_orders_today"`
	RevenueToday             decimal.Decimal `json:"revenue_today"`
	PendingConfirmationCount int             `json:"pending_confirmation_count"`
	PendingRefundCount       int             `json:"pending_refund_count"`
	ReadyToShipCount         int             `json:"ready_to_ship_count"`
	TotalOrders              int             `json:"total_orders"`
	TotalRevenue             decimal.Decimal `json:"total_revenue"`
	StatusBreakdown          []StatusCount   `json:"status_breakdown"`
}

// User is the authenticated account as returned by the auth endpoints
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}
