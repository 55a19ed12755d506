package domain

import (
	"strings"
	"time"
)

const (
	MsgAddressIncomplete = "Vui lòng điền đầy đủ thông tin địa chỉ."
	MsgAddressNotFound   = "Địa chỉ đã chọn không tồn tại"
)

// Address is a saved shipping address of the signed-in account
type Address struct {
	ID             int64     `json:"id"`
	Label          string    `json:"label"`
	RecipientName  string    `json:"recipient_name"`
	RecipientPhone string    `json:"recipient_phone"`
	AddressLine1   string    `json:"address_line1"`
	AddressLine2   string    `json:"address_line2"`
	City           string    `json:"city"`
	District       string    `json:"district"`
	Ward           string    `json:"ward"`
	PostalCode     string    `json:"postal_code"`
	Country        string    `json:"country"`
	IsDefault      bool      `json:"is_default"`
	FullAddress    string    `json:"full_address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AddressInput is the body of address create and update. Updates send every
// field so optional lines can be cleared. An empty label is numbered by the shop.
type AddressInput struct {
	Label          string `json:"label,omitempty"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	AddressLine1   string `json:"address_line1"`
	AddressLine2   string `json:"address_line2"`
	City           string `json:"city"`
	District       string `json:"district"`
	Ward           string `json:"ward"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
	IsDefault      bool   `json:"is_default"`
}

// Validate returns per-field messages, nil when the address can be saved
func (in AddressInput) Validate() map[string][]string {
	fields := map[string][]string{}
	required := []struct {
		field, value, msg string
	}{
		{"recipient_name", in.RecipientName, MsgRecipientRequired},
		{"recipient_phone", in.RecipientPhone, MsgRecipientPhoneRequired},
		{"address_line1", in.AddressLine1, MsgAddressRequired},
		{"city", in.City, MsgCityRequired},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields[r.field] = []string{r.msg}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Normalized trims every field and defaults the country
func (in AddressInput) Normalized() AddressInput {
	out := AddressInput{
		Label:          strings.TrimSpace(in.Label),
		RecipientName:  strings.TrimSpace(in.RecipientName),
		RecipientPhone: strings.TrimSpace(in.RecipientPhone),
		AddressLine1:   strings.TrimSpace(in.AddressLine1),
		AddressLine2:   strings.TrimSpace(in.AddressLine2),
		City:           strings.TrimSpace(in.City),
		District:       strings.TrimSpace(in.District),
		Ward:           strings.TrimSpace(in.Ward),
		PostalCode:     strings.TrimSpace(in.PostalCode),
		Country:        strings.TrimSpace(in.Country),
		IsDefault:      in.IsDefault,
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}

// PickAddress returns the default address, else the first one
func PickAddress(list []Address) (Address, bool) {
	for _, a := range list {
		if a.IsDefault {
			return a, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return Address{}, false
}

// FindAddress returns the address with id
func FindAddress(list []Address, id int64) (Address, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// FillShipping returns f with its shipping fields taken from a
func (a Address) FillShipping(f CheckoutForm) CheckoutForm {
	f.ShippingFullName = a.RecipientName
	f.ShippingPhone = a.RecipientPhone
	f.ShippingAddressLine1 = a.AddressLine1
	f.ShippingAddressLine2 = a.AddressLine2
	f.ShippingWard = a.Ward
	f.ShippingDistrict = a.District
	f.ShippingCity = a.City
	f.ShippingPostalCode = a.PostalCode
	f.ShippingCountry = a.Country
	return f
}
