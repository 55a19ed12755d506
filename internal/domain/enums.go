package domain

// OrderStatus represents the lifecycle status of an order as reported by the shop API
type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "PENDING"
	OrderStatusProcessing        OrderStatus = "PROCESSING"
	OrderStatusProcessingSuccess OrderStatus = "PROCESSING_SUCCESS"
	OrderStatusProcessingFailed  OrderStatus = "PROCESSING_FAILED"
	OrderStatusConfirming        OrderStatus = "CONFIRMING"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusDelivering        OrderStatus = "DELIVERING"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusRefundRequested   OrderStatus = "REFUND_REQUESTED"
	OrderStatusRefunding         OrderStatus = "REFUNDING"
	OrderStatusRefunded          OrderStatus = "REFUNDED"
	OrderStatusCompleted         OrderStatus = "COMPLETED"
	OrderStatusCanceled          OrderStatus = "CANCELED"
)

// AllOrderStatuses lists every status the API has ever reported, including
// PROCESSING_SUCCESS whose reachability on the current backend is unconfirmed.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusProcessingSuccess,
	OrderStatusProcessingFailed,
	OrderStatusConfirming,
	OrderStatusConfirmed,
	OrderStatusDelivering,
	OrderStatusDelivered,
	OrderStatusRefundRequested,
	OrderStatusRefunding,
	OrderStatusRefunded,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusProcessingSuccess,
		OrderStatusProcessingFailed,
		OrderStatusConfirming,
		OrderStatusConfirmed,
		OrderStatusDelivering,
		OrderStatusDelivered,
		OrderStatusRefundRequested,
		OrderStatusRefunding,
		OrderStatusRefunded,
		OrderStatusCompleted,
		OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusRefunded, OrderStatusCompleted, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// PaymentStatus represents the payment sub-state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// Label returns the Vietnamese label shown next to the payment badge
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentStatusPending:
		return "Chờ thanh toán"
	case PaymentStatusPaid:
		return "Đã thanh toán"
	case PaymentStatusFailed:
		return "Thanh toán thất bại"
	case PaymentStatusRefunded:
		return "Đã hoàn tiền"
	default:
		return string(s)
	}
}

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodCOD       PaymentMethod = "cod"
	PaymentMethodVNPayQR   PaymentMethod = "vnpay_qr"
	PaymentMethodVNPayCard PaymentMethod = "vnpay_card"
	PaymentMethodBanking   PaymentMethod = "banking"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodVNPayQR, PaymentMethodVNPayCard, PaymentMethodBanking:
		return true
	default:
		return false
	}
}

// IsVNPay reports whether the method is settled through the VNPAY gateway
func (m PaymentMethod) IsVNPay() bool {
	return m == PaymentMethodVNPayQR || m == PaymentMethodVNPayCard
}

// VNPayType returns the payment_type value expected by the VNPAY create endpoint
func (m PaymentMethod) VNPayType() string {
	switch m {
	case PaymentMethodVNPayQR:
		return "qr"
	case PaymentMethodVNPayCard:
		return "card"
	default:
		return ""
	}
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCOD:
		return "Thanh toán khi nhận hàng (COD)"
	case PaymentMethodVNPayQR:
		return "VNPAY QR"
	case PaymentMethodVNPayCard:
		return "Thẻ ATM/Visa/Master qua VNPAY"
	case PaymentMethodBanking:
		return "Chuyển khoản ngân hàng"
	default:
		return string(m)
	}
}

// TransactionType classifies an inventory ledger entry
type TransactionType string

const (
	TransactionTypeImport     TransactionType = "IMPORT"
	TransactionTypeOrder      TransactionType = "ORDER"
	TransactionTypeRefund     TransactionType = "REFUND"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeImport, TransactionTypeOrder, TransactionTypeRefund, TransactionTypeAdjustment:
		return true
	default:
		return false
	}
}

// ImportNoteStatus is the state of a warehouse import note
type ImportNoteStatus string

const (
	ImportNoteStatusDraft     ImportNoteStatus = "DRAFT"
	ImportNoteStatusCompleted ImportNoteStatus = "COMPLETED"
	ImportNoteStatusCancelled ImportNoteStatus = "CANCELLED"
)

// CanTransitionTo checks if an import note status transition is valid
func (s ImportNoteStatus) CanTransitionTo(newStatus ImportNoteStatus) bool {
	switch s {
	case ImportNoteStatusDraft:
		return newStatus == ImportNoteStatusCompleted ||
			newStatus == ImportNoteStatusCancelled
	case ImportNoteStatusCompleted, ImportNoteStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// Audience selects which action set is offered for an order
type Audience string

const (
	AudienceCustomer Audience = "customer"
	AudienceAdmin    Audience = "admin"
)

// IsValid checks if the audience is valid
func (a Audience) IsValid() bool {
	return a == AudienceCustomer || a == AudienceAdmin
}
