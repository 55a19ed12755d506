package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatVND renders an amount the way the storefront prints prices: rounded to
// whole dong, dot thousands separator, trailing currency sign. 1250000 -> "1.250.000 ₫".
func FormatVND(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().StringFixed(0)

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(" ₫")
	return b.String()
}

// OrderTotal is total = subtotal + shipping - discount.
// The console never overwrites the server's total; this is used only to flag inconsistent payloads.
func OrderTotal(subtotal, shipping, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Sub(discount)
}
