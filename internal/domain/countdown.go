package domain

import "fmt"

// UrgentThresholdSeconds marks the last five minutes of the payment window
const UrgentThresholdSeconds = 300

// Countdown is the payment expiration banner of an unpaid order
type Countdown struct {
	Visible bool   `json:"visible"`
	Seconds int    `json:"seconds"`
	Text    string `json:"text,omitempty"`
	Urgent  bool   `json:"urgent"`
}

// CountdownFor shows the banner while the order is PENDING, unpaid and seconds > 0
func CountdownFor(status OrderStatus, payment PaymentStatus, seconds int) Countdown {
	if status != OrderStatusPending || payment == PaymentStatusPaid || seconds <= 0 {
		return Countdown{}
	}
	return Countdown{
		Visible: true,
		Seconds: seconds,
		Text:    "Hết hạn thanh toán sau: " + FormatCountdown(seconds),
		Urgent:  seconds < UrgentThresholdSeconds,
	}
}

// FormatCountdown renders seconds as MM:SS
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
