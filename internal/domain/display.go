package domain

// StatusDisplay is the badge rendered for an order status
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// statusDisplays must cover every member of AllOrderStatuses. There is no
// default entry: a missing status is a bug, not something to paper over.
var statusDisplays = map[OrderStatus]StatusDisplay{
	OrderStatusPending:           {Label: "Chờ xác nhận", Color: "yellow"},
	OrderStatusProcessing:        {Label: "Đang xử lý", Color: "blue"},
	OrderStatusProcessingSuccess: {Label: "Xử lý thành công", Color: "green"},
	OrderStatusProcessingFailed:  {Label: "Xử lý thất bại", Color: "red"},
	OrderStatusConfirming:        {Label: "Chờ xác nhận", Color: "orange"},
	OrderStatusConfirmed:         {Label: "Đã xác nhận", Color: "green"},
	OrderStatusDelivering:        {Label: "Đang giao hàng", Color: "blue"},
	OrderStatusDelivered:         {Label: "Giao thành công", Color: "green"},
	OrderStatusRefundRequested:   {Label: "Yêu cầu hoàn tiền", Color: "purple"},
	OrderStatusRefunding:         {Label: "Đang hoàn tiền", Color: "purple"},
	OrderStatusRefunded:          {Label: "Đã hoàn tiền", Color: "gray"},
	OrderStatusCompleted:         {Label: "Hoàn thành", Color: "emerald"},
	OrderStatusCanceled:          {Label: "Đã hủy", Color: "red"},
}

// DisplayFor returns the badge for status. ok is false for statuses without a mapping.
func DisplayFor(status OrderStatus) (StatusDisplay, bool) {
	d, ok := statusDisplays[status]
	return d, ok
}

// MissingDisplays returns the statuses in AllOrderStatuses that have no badge
func MissingDisplays() []OrderStatus {
	var missing []OrderStatus
	for _, s := range AllOrderStatuses {
		if _, ok := statusDisplays[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
