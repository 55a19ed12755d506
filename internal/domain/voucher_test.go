package domain

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeVoucherCodes(t *testing.T) {
	got := NormalizeVoucherCodes([]string{" sale10 ", "", "SALE10", "freeship", "  "})
	if want := []string{"SALE10", "FREESHIP"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := NormalizeVoucherCodes(nil); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}

	form := CheckoutForm{VoucherCodes: []string{"sale10", "Sale10"}}
	if got := form.Payload().VoucherCodes; !reflect.DeepEqual(got, []string{"SALE10"}) {
		t.Errorf("Expected payload codes [SALE10], got %v", got)
	}
}

func TestVoucherEstimateDiscount(t *testing.T) {
	dec := decimal.RequireFromString
	capped := dec("50000")

	tests := []struct {
		name    string
		voucher Voucher
		want    string
	}{
		{"percentage", Voucher{DiscountType: DiscountPercentage, DiscountValue: dec("10")}, "100000"},
		{"percentage capped", Voucher{DiscountType: DiscountPercentage, DiscountValue: dec("10"), MaxDiscountAmount: &capped}, "50000"},
		{"fixed", Voucher{DiscountType: DiscountFixedAmount, DiscountValue: dec("200000")}, "200000"},
		{"fixed above subtotal", Voucher{DiscountType: DiscountFixedAmount, DiscountValue: dec("2000000")}, "1000000"},
		{"free shipping", Voucher{DiscountType: DiscountFreeShipping, DiscountValue: dec("1")}, "30000"},
		{"unknown type", Voucher{DiscountType: "BOGO", DiscountValue: dec("1")}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.voucher.EstimateDiscount(dec("1000000"), dec("30000"))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
