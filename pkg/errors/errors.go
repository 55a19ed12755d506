package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultMessage is shown when the shop API gives nothing better.
const DefaultMessage = "Có lỗi xảy ra. Vui lòng thử lại."

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when the shop API rejects the session token
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ErrValidation carries per-field messages, keyed by input field name.
// Non-field messages live in Message.
type ErrValidation struct {
	Fields  map[string][]string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return strings.Join(parts, "; ")
}

// Field returns the first message reported for field, or "".
func (e *ErrValidation) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ErrBusinessRule is a server-side rejection that is not tied to one input field.
// Message is shown to the user verbatim.
type ErrBusinessRule struct {
	Status  int
	Message string
}

func (e *ErrBusinessRule) Error() string {
	return e.Message
}

// ErrTransport covers network failures, 5xx responses and undecodable bodies.
type ErrTransport struct {
	Message string
	Err     error
}

func (e *ErrTransport) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "shop API unavailable"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrInvalidStateTransition is returned when a transition is not legal from the current status
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrActionNotAvailable is returned when an order action is not offered for the order's current state
type ErrActionNotAvailable struct {
	Action string
	Status string
}

func (e *ErrActionNotAvailable) Error() string {
	return fmt.Sprintf("action %s is not available for order in status %s", e.Action, e.Status)
}

// ErrActionInFlight is returned when another action on the same order has not finished yet
type ErrActionInFlight struct {
	OrderID string
}

func (e *ErrActionInFlight) Error() string {
	return fmt.Sprintf("an action on order %s is already in progress", e.OrderID)
}

// ErrPartialImport means the import draft was created but could not be completed.
// The draft stays on the server and can be completed or cancelled later.
type ErrPartialImport struct {
	DraftID      int64
	ImportNumber string
	Err          error
}

func (e *ErrPartialImport) Error() string {
	return fmt.Sprintf("import note %s (id %d) created but not completed: %v", e.ImportNumber, e.DraftID, e.Err)
}

func (e *ErrPartialImport) Unwrap() error {
	return e.Err
}

// ErrPaymentLinkFailed means the order was placed but no payment link could be
// obtained. The order stays payable through its retry_payment action.
type ErrPaymentLinkFailed struct {
	OrderID     int64
	OrderNumber string
	Message     string
	Err         error
}

func (e *ErrPaymentLinkFailed) Error() string {
	return fmt.Sprintf("order %s (id %d) placed but payment link failed: %v", e.OrderNumber, e.OrderID, e.Err)
}

func (e *ErrPaymentLinkFailed) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to show for err.
// Business rules and validation summaries are surfaced as-is, everything else gets fallback.
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultMessage
	}
	var business *ErrBusinessRule
	if stderrors.As(err, &business) && business.Message != "" {
		return business.Message
	}
	var validation *ErrValidation
	if stderrors.As(err, &validation) && validation.Message != "" {
		return validation.Message
	}
	var payment *ErrPaymentLinkFailed
	if stderrors.As(err, &payment) && payment.Message != "" {
		return payment.Message
	}
	var transport *ErrTransport
	if stderrors.As(err, &transport) && transport.Message != "" {
		return transport.Message
	}
	return fallback
}
