package domain

import (
	"strings"
)

// Action is a named, user-triggered order mutation
type Action string

const (
	ActionConfirm         Action = "confirm"
	ActionShip            Action = "ship"
	ActionDeliver         Action = "deliver"
	ActionCancel          Action = "cancel"
	ActionApproveRefund   Action = "approve_refund"
	ActionRejectRefund    Action = "reject_refund"
	ActionConfirmRefunded Action = "confirm_refunded"
	ActionRequestRefund   Action = "request_refund"
	ActionCancelRefund    Action = "cancel_refund"
	ActionComplete        Action = "complete"
	ActionRetryPayment    Action = "retry_payment"
)

// cancelableStatuses is used only when the server did not send can_cancel
var cancelableStatuses = map[OrderStatus]bool{
	OrderStatusPending:           true,
	OrderStatusConfirmed:         true,
	OrderStatusProcessingSuccess: true,
	OrderStatusConfirming:        true,
}

// OrderState is everything action visibility depends on
type OrderState struct {
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Flags         CapabilityFlags `json:"flags"`
}

// StateOf extracts the visibility inputs from an order
func StateOf(o *OrderDetail) OrderState {
	return OrderState{
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Flags:         o.CapabilityFlags,
	}
}

// ActionSet holds the two independently rendered button groups
type ActionSet struct {
	Financial []Action `json:"financial"`
	Lifecycle []Action `json:"lifecycle"`
}

// Contains reports whether a is offered in either group
func (s ActionSet) Contains(a Action) bool {
	for _, x := range s.Financial {
		if x == a {
			return true
		}
	}
	for _, x := range s.Lifecycle {
		if x == a {
			return true
		}
	}
	return false
}

// All returns financial actions followed by lifecycle actions
func (s ActionSet) All() []Action {
	out := make([]Action, 0, len(s.Financial)+len(s.Lifecycle))
	out = append(out, s.Financial...)
	return append(out, s.Lifecycle...)
}

// IsEmpty reports whether no action is offered
func (s ActionSet) IsEmpty() bool {
	return len(s.Financial) == 0 && len(s.Lifecycle) == 0
}

// CanCancel trusts can_cancel when the server sent it and falls back to the
// status list otherwise.
func CanCancel(st OrderState) bool {
	if st.Flags.CanCancel != nil {
		return *st.Flags.CanCancel
	}
	return cancelableStatuses[st.Status]
}

// AvailableActions computes the actions offered to audience for st.
// The result depends only on its arguments; terminal orders offer nothing.
func AvailableActions(audience Audience, st OrderState) ActionSet {
	set := ActionSet{Financial: []Action{}, Lifecycle: []Action{}}
	if st.Status.IsTerminal() || !st.Status.IsValid() {
		return set
	}

	switch audience {
	case AudienceCustomer:
		if (st.PaymentStatus == PaymentStatusPending || st.PaymentStatus == PaymentStatusFailed) &&
			Flag(st.Flags.CanRetryPayment) {
			set.Financial = append(set.Financial, ActionRetryPayment)
		}
		if st.Status == OrderStatusDelivered && st.PaymentStatus == PaymentStatusPaid &&
			Flag(st.Flags.CanRequestRefund) {
			set.Financial = append(set.Financial, ActionRequestRefund)
		}
		if st.Status == OrderStatusRefundRequested {
			set.Financial = append(set.Financial, ActionCancelRefund)
		}

		if CanCancel(st) {
			set.Lifecycle = append(set.Lifecycle, ActionCancel)
		}
		if st.Status == OrderStatusDelivered {
			set.Lifecycle = append(set.Lifecycle, ActionComplete)
		}

	case AudienceAdmin:
		if st.Status == OrderStatusRefundRequested {
			set.Financial = append(set.Financial, ActionApproveRefund, ActionRejectRefund)
		}
		if st.Status == OrderStatusRefunding {
			set.Financial = append(set.Financial, ActionConfirmRefunded)
		}

		if Flag(st.Flags.CanConfirm) {
			set.Lifecycle = append(set.Lifecycle, ActionConfirm)
		}
		if Flag(st.Flags.CanMarkDelivering) {
			set.Lifecycle = append(set.Lifecycle, ActionShip)
		}
		if Flag(st.Flags.CanMarkDelivered) {
			set.Lifecycle = append(set.Lifecycle, ActionDeliver)
		}
		if CanCancel(st) {
			set.Lifecycle = append(set.Lifecycle, ActionCancel)
		}
	}

	return set
}

// ActionSpec describes the request an action issues
type ActionSpec struct {
	Action           Action
	Audience         Audience
	Label            string
	RequiresReason   bool
	RequiresTracking bool
	AcceptsNote      bool

	// Target is empty when the resulting status depends on history (reject/cancel refund)
	// or when the action does not change status (retry_payment).
	Target OrderStatus
}

var actionSpecs = map[Action]ActionSpec{
	ActionConfirm:         {Action: ActionConfirm, Audience: AudienceAdmin, Label: "Xác nhận đơn hàng", AcceptsNote: true, Target: OrderStatusConfirmed},
	ActionShip:            {Action: ActionShip, Audience: AudienceAdmin, Label: "Giao hàng", AcceptsNote: true, RequiresTracking: true, Target: OrderStatusDelivering},
	ActionDeliver:         {Action: ActionDeliver, Audience: AudienceAdmin, Label: "Đã giao hàng", AcceptsNote: true, Target: OrderStatusDelivered},
	ActionCancel:          {Action: ActionCancel, Label: "Hủy đơn hàng", RequiresReason: true, Target: OrderStatusCanceled},
	ActionApproveRefund:   {Action: ActionApproveRefund, Audience: AudienceAdmin, Label: "Duyệt hoàn tiền", AcceptsNote: true, Target: OrderStatusRefunding},
	ActionRejectRefund:    {Action: ActionRejectRefund, Audience: AudienceAdmin, Label: "Từ chối hoàn tiền", RequiresReason: true},
	ActionConfirmRefunded: {Action: ActionConfirmRefunded, Audience: AudienceAdmin, Label: "Xác nhận đã hoàn tiền", AcceptsNote: true, Target: OrderStatusRefunded},
	ActionRequestRefund:   {Action: ActionRequestRefund, Audience: AudienceCustomer, Label: "Yêu cầu hoàn tiền", RequiresReason: true, Target: OrderStatusRefundRequested},
	ActionCancelRefund:    {Action: ActionCancelRefund, Audience: AudienceCustomer, Label: "Hủy yêu cầu hoàn tiền"},
	ActionComplete:        {Action: ActionComplete, Audience: AudienceCustomer, Label: "Đã nhận hàng", Target: OrderStatusCompleted},
	ActionRetryPayment:    {Action: ActionRetryPayment, Audience: AudienceCustomer, Label: "Thanh toán lại"},
}

// SpecFor looks up the request description of an action
func SpecFor(a Action) (ActionSpec, bool) {
	s, ok := actionSpecs[a]
	return s, ok
}

// ActionInput carries the optional and required fields of an action call
type ActionInput struct {
	Note           string `json:"note"`
	Reason         string `json:"reason"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

// Validate returns per-field messages for missing required inputs, nil when valid
func (s ActionSpec) Validate(in ActionInput) map[string][]string {
	fields := map[string][]string{}
	if s.RequiresReason && strings.TrimSpace(in.Reason) == "" {
		fields["reason"] = []string{"Vui lòng nhập lý do"}
	}
	if s.RequiresTracking {
		if strings.TrimSpace(in.TrackingNumber) == "" {
			fields["tracking_number"] = []string{"Vui lòng nhập mã vận đơn"}
		}
		if strings.TrimSpace(in.Carrier) == "" {
			fields["carrier"] = []string{"Vui lòng nhập đơn vị vận chuyển"}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Body builds the JSON body for the action, nil for actions that send none
func (s ActionSpec) Body(in ActionInput) map[string]string {
	body := map[string]string{}
	if s.RequiresReason {
		body["reason"] = strings.TrimSpace(in.Reason)
	}
	if s.RequiresTracking {
		body["tracking_number"] = strings.TrimSpace(in.TrackingNumber)
		body["carrier"] = strings.TrimSpace(in.Carrier)
	}
	if s.AcceptsNote {
		if note := strings.TrimSpace(in.Note); note != "" {
			body["note"] = note
		}
	}
	if len(body) == 0 && !s.AcceptsNote {
		return nil
	}
	return body
}

// PreviousStatus returns the status the order held before its latest refund request.
// reject_refund and cancel_refund move the order back there.
func PreviousStatus(history []StatusHistory) (OrderStatus, bool) {
	var found *StatusHistory
	for i := range history {
		h := &history[i]
		if h.ToStatus != OrderStatusRefundRequested {
			continue
		}
		if found == nil || h.CreatedAt.After(found.CreatedAt) {
			found = h
		}
	}
	if found == nil {
		return "", false
	}
	return found.FromStatus, true
}

// ExpectedTarget returns the status an action should lead to for o.
// ok is false when the target is unknown or the action does not change status.
func ExpectedTarget(a Action, o *OrderDetail) (OrderStatus, bool) {
	spec, ok := SpecFor(a)
	if !ok {
		return "", false
	}
	if spec.Target != "" {
		return spec.Target, true
	}
	if a == ActionRejectRefund || a == ActionCancelRefund {
		return PreviousStatus(o.StatusHistory)
	}
	return "", false
}
