package domain

import "testing"

func TestAddressInputValidate(t *testing.T) {
	fields := AddressInput{AddressLine2: "Tầng 3"}.Validate()
	want := map[string]string{
		"recipient_name":  MsgRecipientRequired,
		"recipient_phone": MsgRecipientPhoneRequired,
		"address_line1":   MsgAddressRequired,
		"city":            MsgCityRequired,
	}
	if len(fields) != len(want) {
		t.Fatalf("Expected %d field errors, got %v", len(want), fields)
	}
	for field, msg := range want {
		if len(fields[field]) != 1 || fields[field][0] != msg {
			t.Errorf("Expected %s: %q, got %v", field, msg, fields[field])
		}
	}

	in := AddressInput{RecipientName: " Trần Thị B ", RecipientPhone: "0912345678", AddressLine1: "5 Hàng Bài", City: "Hà Nội"}
	if fields := in.Validate(); fields != nil {
		t.Errorf("Expected complete address to validate, got %v", fields)
	}
	out := in.Normalized()
	if out.RecipientName != "Trần Thị B" || out.Country != DefaultCountry {
		t.Errorf("Expected trimmed name and default country, got %+v", out)
	}
}

func TestPickAddress(t *testing.T) {
	if _, ok := PickAddress(nil); ok {
		t.Error("Expected no address from an empty book")
	}

	book := []Address{{ID: 1, City: "Hà Nội"}, {ID: 2, City: "Đà Nẵng", IsDefault: true}}
	if a, _ := PickAddress(book); a.ID != 2 {
		t.Errorf("Expected default address 2, got %d", a.ID)
	}
	book[1].IsDefault = false
	if a, _ := PickAddress(book); a.ID != 1 {
		t.Errorf("Expected first address when none is default, got %d", a.ID)
	}
	if _, ok := FindAddress(book, 9); ok {
		t.Error("Expected unknown id not found")
	}
}

func TestFillShippingKeepsContactFields(t *testing.T) {
	addr := Address{
		RecipientName:  "Lê Văn C",
		RecipientPhone: "0987654321",
		AddressLine1:   "88 Trần Phú",
		Ward:           "Phường 4",
		District:       "Quận 5",
		City:           "Hồ Chí Minh",
		Country:        "Vietnam",
	}
	form := addr.FillShipping(CheckoutForm{Email: "c@example.vn", Phone: "0900000000", PaymentMethod: PaymentMethodCOD})
	if form.Email != "c@example.vn" || form.Phone != "0900000000" {
		t.Errorf("Expected contact fields untouched, got %+v", form)
	}
	if form.ShippingFullName != "Lê Văn C" || form.ShippingDistrict != "Quận 5" || !form.HasShipping() {
		t.Errorf("Expected shipping filled from address, got %+v", form)
	}
	if fields := form.Validate(); fields != nil {
		t.Errorf("Expected filled form to validate, got %v", fields)
	}
}
