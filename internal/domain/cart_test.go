package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCheckoutFormValidate(t *testing.T) {
	fields := CheckoutForm{PaymentMethod: PaymentMethodCOD}.Validate()
	want := map[string]string{
		"email":                  MsgEmailRequired,
		"phone":                  MsgPhoneRequired,
		"shipping_full_name":     MsgRecipientRequired,
		"shipping_phone":         MsgRecipientPhoneRequired,
		"shipping_address_line1": MsgAddressRequired,
		"shipping_city":          MsgCityRequired,
	}
	if len(fields) != len(want) {
		t.Fatalf("Expected %d field errors, got %v", len(want), fields)
	}
	for field, msg := range want {
		if len(fields[field]) != 1 || fields[field][0] != msg {
			t.Errorf("Expected %s: %q, got %v", field, msg, fields[field])
		}
	}

	complete := CheckoutForm{
		Email:                "a@b.vn",
		Phone:                "0901234567",
		ShippingFullName:     "Nguyễn Văn A",
		ShippingPhone:        "0901234567",
		ShippingAddressLine1: "12 Lê Lợi",
		ShippingCity:         "Hồ Chí Minh",
		PaymentMethod:        PaymentMethodVNPayQR,
	}
	if fields := complete.Validate(); fields != nil {
		t.Errorf("Expected complete form to validate, got %v", fields)
	}
	if got := complete.Payload().ShippingCountry; got != DefaultCountry {
		t.Errorf("Expected default country %q, got %q", DefaultCountry, got)
	}

	complete.PaymentMethod = "momo"
	if fields := complete.Validate(); fields["payment_method"] == nil {
		t.Errorf("Expected unknown payment method to be rejected, got %v", fields)
	}
}

func TestCartTotalsAndShipping(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: 1, Variant: CartVariant{Price: decimal.RequireFromString("500000"), DisplayPrice: decimal.RequireFromString("450000")}, Quantity: 2},
		{ID: 2, Variant: CartVariant{Price: decimal.RequireFromString("199000.50")}, Quantity: 1},
	}}
	if got := cart.LineSubtotal(); !got.Equal(decimal.RequireFromString("1099000.50")) {
		t.Errorf("Expected subtotal 1099000.50, got %s", got)
	}
	if cart.Quantity() != 3 {
		t.Errorf("Expected 3 units, got %d", cart.Quantity())
	}

	policy := ShippingPolicy{Fee: decimal.NewFromInt(30000), FreeShippingThreshold: decimal.NewFromInt(1000000)}
	if got := policy.Estimate(cart.LineSubtotal()); !got.IsZero() {
		t.Errorf("Expected free shipping, got %s", got)
	}
	if got := policy.Estimate(decimal.NewFromInt(500000)); !got.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("Expected 30000 shipping, got %s", got)
	}
}
