package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Checkout messages shown to the shopper
const (
	MsgEmailRequired          = "Email là bắt buộc"
	MsgPhoneRequired          = "Số điện thoại là bắt buộc"
	MsgRecipientRequired      = "Vui lòng nhập tên người nhận"
	MsgRecipientPhoneRequired = "Vui lòng nhập số điện thoại người nhận"
	MsgAddressRequired        = "Vui lòng nhập địa chỉ"
	MsgCityRequired           = "Vui lòng nhập thành phố"
	MsgCheckoutIncomplete     = "Vui lòng điền đầy đủ thông tin bắt buộc."
	MsgCartEmpty              = "Giỏ hàng trống"
	MsgOutOfStock             = "Sản phẩm đã hết hàng"
	MsgPaymentMethodInvalid   = "Phương thức thanh toán không hợp lệ"
)

const DefaultCountry = "Vietnam"

// CartVariant is the variant snapshot nested in a cart line
type CartVariant struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	Price        decimal.Decimal `json:"price"`
	DisplayPrice decimal.Decimal `json:"display_price"`
	Stock        int             `json:"stock"`
	StockStatus  StockLevel      `json:"stock_status,omitempty"`
	IsActive     bool            `json:"is_active"`
}

// CartItem is one line of the server-side cart
type CartItem struct {
	ID          int64           `json:"id"`
	Variant     CartVariant     `json:"variant"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug,omitempty"`
}

// UnitPrice is the price the shopper pays per unit
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.Variant.DisplayPrice.IsPositive() {
		return i.Variant.DisplayPrice
	}
	return i.Variant.Price
}

// Cart is the shopper's cart
type Cart struct {
	ID         string          `json:"id,omitempty"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// LineSubtotal sums unit price * quantity over all lines
func (c Cart) LineSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.UnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// Quantity counts all units in the cart
func (c Cart) Quantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Item finds a line by its id
func (c Cart) Item(id int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// ShippingPolicy estimates the shipping fee shown before the server prices the order
type ShippingPolicy struct {
	Fee                   decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// Estimate returns 0 when the subtotal reaches a positive free-shipping threshold
func (p ShippingPolicy) Estimate(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

// CheckoutForm is what the shopper fills in on the checkout page
type CheckoutForm struct {
	Email                string        `json:"email"`
	Phone                string        `json:"phone"`
	ShippingFullName     string        `json:"shipping_full_name"`
	ShippingPhone        string        `json:"shipping_phone"`
	ShippingAddressLine1 string        `json:"shipping_address_line1"`
	ShippingAddressLine2 string        `json:"shipping_address_line2"`
	ShippingWard         string        `json:"shipping_ward"`
	ShippingDistrict     string        `json:"shipping_district"`
	ShippingCity         string        `json:"shipping_city"`
	ShippingPostalCode   string        `json:"shipping_postal_code"`
	ShippingCountry      string        `json:"shipping_country"`
	PaymentMethod        PaymentMethod `json:"payment_method"`
	CustomerNote         string        `json:"customer_note"`
	VoucherCodes         []string      `json:"voucher_codes,omitempty"`

	// AddressID picks a saved address for the shipping fields. It is not sent to the shop.
	AddressID int64 `json:"address_id,omitempty"`
}

// HasShipping reports whether the shopper typed a shipping address
func (f CheckoutForm) HasShipping() bool {
	return strings.TrimSpace(f.ShippingAddressLine1) != ""
}

// Validate returns per-field messages, nil when the form is complete
func (f CheckoutForm) Validate() map[string][]string {
	fields := map[string][]string{}
	required := []struct {
		field, value, msg string
	}{
		{"email", f.Email, MsgEmailRequired},
		{"phone", f.Phone, MsgPhoneRequired},
		{"shipping_full_name", f.ShippingFullName, MsgRecipientRequired},
		{"shipping_phone", f.ShippingPhone, MsgRecipientPhoneRequired},
		{"shipping_address_line1", f.ShippingAddressLine1, MsgAddressRequired},
		{"shipping_city", f.ShippingCity, MsgCityRequired},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields[r.field] = []string{r.msg}
		}
	}
	if !f.PaymentMethod.IsValid() {
		fields["payment_method"] = []string{MsgPaymentMethodInvalid}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Payload returns the trimmed create_order body with the country defaulted
// and voucher codes normalized
func (f CheckoutForm) Payload() CheckoutForm {
	out := CheckoutForm{
		Email:                strings.TrimSpace(f.Email),
		Phone:                strings.TrimSpace(f.Phone),
		ShippingFullName:     strings.TrimSpace(f.ShippingFullName),
		ShippingPhone:        strings.TrimSpace(f.ShippingPhone),
		ShippingAddressLine1: strings.TrimSpace(f.ShippingAddressLine1),
		ShippingAddressLine2: strings.TrimSpace(f.ShippingAddressLine2),
		ShippingWard:         strings.TrimSpace(f.ShippingWard),
		ShippingDistrict:     strings.TrimSpace(f.ShippingDistrict),
		ShippingCity:         strings.TrimSpace(f.ShippingCity),
		ShippingPostalCode:   strings.TrimSpace(f.ShippingPostalCode),
		ShippingCountry:      strings.TrimSpace(f.ShippingCountry),
		PaymentMethod:        f.PaymentMethod,
		CustomerNote:         strings.TrimSpace(f.CustomerNote),
		VoucherCodes:         NormalizeVoucherCodes(f.VoucherCodes),
	}
	if out.ShippingCountry == "" {
		out.ShippingCountry = DefaultCountry
	}
	return out
}
