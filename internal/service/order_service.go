package service

import (
	"context"
	stderrors "errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/metrics"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// OrderAPI is the part of the shop API the order gateway uses
type OrderAPI interface {
	ListOrders(ctx context.Context, filter backend.OrderFilter) (*backend.Page[domain.OrderSummary], error)
	GetOrder(ctx context.Context, id int64) (*domain.OrderDetail, error)
	GetOrderStats(ctx context.Context) (*domain.OrderStats, error)
	PostOrderAction(ctx context.Context, id int64, action domain.Action, body map[string]string) (*backend.ActionResult, error)
	RetryPayment(ctx context.Context, id int64) (*backend.PaymentLink, error)
}

const (
	msgRetryPaymentFailed = "Không thể tạo link thanh toán. Vui lòng thử lại."
	msgActionFailed       = "Không thể thực hiện thao tác. Vui lòng thử lại sau."
)

// OrderGateway is what callers outside this package use of the order gateway
type OrderGateway interface {
	List(ctx context.Context, filter backend.OrderFilter) (*backend.Page[domain.OrderSummary], error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
	View(ctx context.Context, id int64, audience domain.Audience) (*OrderView, error)
	Perform(ctx context.Context, req ActionRequest) (*ActionOutcome, error)
}

// OrderMemory keeps the state each order was last projected with, so an
// action can be gated on what the user was shown.
type OrderMemory interface {
	RememberOrder(ctx context.Context, id int64, st domain.OrderState) error
	ObservedOrder(id int64) (domain.OrderState, bool)
	ForgetOrder(ctx context.Context, id int64) error
}

type orderGateway struct {
	api    OrderAPI
	guard  *InFlightGuard
	memory OrderMemory
	logger *zap.Logger
}

// NewOrderGateway creates the order action gateway. guard is shared by every
// session. memory may be nil, in which case every action reads the order first.
func NewOrderGateway(api OrderAPI, guard *InFlightGuard, memory OrderMemory, logger *zap.Logger) *orderGateway {
	return &orderGateway{
		api:    api,
		guard:  guard,
		memory: memory,
		logger: logger,
	}
}

// Project builds the view of an order for audience. It is pure.
func Project(order *domain.OrderDetail, audience domain.Audience) *OrderView {
	display, _ := domain.DisplayFor(order.Status)
	return &OrderView{
		Order:              order,
		Display:            display,
		PaymentStatusLabel: order.PaymentStatus.Label(),
		PaymentMethodLabel: order.PaymentMethod.Label(),
		TotalText:          domain.FormatVND(order.Total),
		Actions:            domain.AvailableActions(audience, domain.StateOf(order)),
		Countdown:          domain.CountdownFor(order.Status, order.PaymentStatus, order.ExpirationSeconds()),
	}
}

func (g *orderGateway) List(ctx context.Context, filter backend.OrderFilter) (*backend.Page[domain.OrderSummary], error) {
	return g.api.ListOrders(ctx, filter)
}

func (g *orderGateway) Stats(ctx context.Context) (*domain.OrderStats, error) {
	return g.api.GetOrderStats(ctx)
}

// View fetches the order and projects it for audience
func (g *orderGateway) View(ctx context.Context, id int64, audience domain.Audience) (*OrderView, error) {
	order, err := g.api.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := domain.DisplayFor(order.Status); !ok {
		g.logger.Warn("Order has a status without display mapping",
			zap.Int64("order_id", id),
			zap.String("status", string(order.Status)),
		)
	}
	if !order.TotalConsistent() {
		g.logger.Warn("Order total does not match subtotal, shipping and discount",
			zap.Int64("order_id", id),
			zap.String("total", order.Total.String()),
		)
	}
	if g.memory != nil {
		if err := g.memory.RememberOrder(ctx, id, domain.StateOf(order)); err != nil {
			g.logger.Warn("Failed to remember projected order", zap.Int64("order_id", id), zap.Error(err))
		}
	}
	return Project(order, audience), nil
}

// gate checks action against the state the order was last projected with.
// The order is read only when no state is remembered or the remembered one
// does not offer action, since that view may be stale.
func (g *orderGateway) gate(ctx context.Context, req ActionRequest) error {
	if g.memory != nil {
		if st, ok := g.memory.ObservedOrder(req.OrderID); ok && domain.AvailableActions(req.Audience, st).Contains(req.Action) {
			return nil
		}
	}
	order, err := g.api.GetOrder(ctx, req.OrderID)
	if err != nil {
		return err
	}
	if !domain.AvailableActions(req.Audience, domain.StateOf(order)).Contains(req.Action) {
		return &errors.ErrActionNotAvailable{Action: string(req.Action), Status: string(order.Status)}
	}
	return nil
}

// forget drops the remembered state after the server disagreed with it
func (g *orderGateway) forget(ctx context.Context, id int64) {
	if g.memory == nil {
		return
	}
	if err := g.memory.ForgetOrder(ctx, id); err != nil {
		g.logger.Warn("Failed to forget projected order", zap.Int64("order_id", id), zap.Error(err))
	}
}

// Perform runs one action: validate the input, gate it on the order state the
// user last saw, issue the single call, then re-fetch the order. Nothing is
// retried. Without a remembered state the order is read before the call.
func (g *orderGateway) Perform(ctx context.Context, req ActionRequest) (*ActionOutcome, error) {
	spec, ok := domain.SpecFor(req.Action)
	if !ok || (spec.Audience != "" && spec.Audience != req.Audience) {
		metrics.RecordOrderAction(string(req.Action), "unavailable")
		return nil, &errors.ErrActionNotAvailable{Action: string(req.Action)}
	}
	if fields := spec.Validate(req.Input); fields != nil {
		metrics.RecordOrderAction(string(req.Action), "invalid")
		return nil, &errors.ErrValidation{Fields: fields}
	}

	release, ok := g.guard.Acquire(req.OrderID)
	if !ok {
		metrics.RecordOrderAction(string(req.Action), "in_flight")
		return nil, &errors.ErrActionInFlight{OrderID: strconv.FormatInt(req.OrderID, 10)}
	}
	defer release()

	if err := g.gate(ctx, req); err != nil {
		if _, ok := err.(*errors.ErrActionNotAvailable); ok {
			metrics.RecordOrderAction(string(req.Action), "unavailable")
		} else {
			metrics.RecordOrderAction(string(req.Action), outcomeOf(err))
		}
		return nil, err
	}

	if req.Action == domain.ActionRetryPayment {
		outcome, err := g.retryPayment(ctx, req.OrderID)
		if err != nil {
			g.forget(ctx, req.OrderID)
		}
		return outcome, err
	}

	result, err := g.api.PostOrderAction(ctx, req.OrderID, req.Action, spec.Body(req.Input))
	if err != nil {
		metrics.RecordOrderAction(string(req.Action), outcomeOf(err))
		g.forget(ctx, req.OrderID)
		g.logger.Info("Order action rejected",
			zap.Int64("order_id", req.OrderID),
			zap.String("action", string(req.Action)),
			zap.Error(err),
		)
		return nil, withFallback(err, msgActionFailed)
	}
	metrics.RecordOrderAction(string(req.Action), "ok")

	outcome := &ActionOutcome{Action: req.Action, Message: result.Message}
	view, err := g.View(ctx, req.OrderID, req.Audience)
	if err != nil {
		g.logger.Warn("Failed to re-fetch order after action",
			zap.Int64("order_id", req.OrderID),
			zap.String("action", string(req.Action)),
			zap.Error(err),
		)
		outcome.Stale = true
		g.forget(ctx, req.OrderID)
		return outcome, nil
	}
	outcome.Order = view
	return outcome, nil
}

// retryPayment asks for a fresh payment URL. A refusal carries the server's error verbatim.
func (g *orderGateway) retryPayment(ctx context.Context, orderID int64) (*ActionOutcome, error) {
	link, err := g.api.RetryPayment(ctx, orderID)
	if err != nil {
		metrics.RecordOrderAction(string(domain.ActionRetryPayment), outcomeOf(err))
		return nil, withFallback(err, msgRetryPaymentFailed)
	}
	if !link.Success || link.PaymentURL == "" {
		metrics.RecordOrderAction(string(domain.ActionRetryPayment), "rejected")
		msg := link.Error
		if msg == "" {
			msg = msgRetryPaymentFailed
		}
		return nil, &errors.ErrBusinessRule{Message: msg}
	}
	metrics.RecordOrderAction(string(domain.ActionRetryPayment), "ok")
	return &ActionOutcome{Action: domain.ActionRetryPayment, PaymentURL: link.PaymentURL}, nil
}

// outcomeOf labels an error for the action metrics
func outcomeOf(err error) string {
	switch err.(type) {
	case nil:
		return "ok"
	case *errors.ErrValidation:
		return "invalid"
	case *errors.ErrBusinessRule:
		return "rejected"
	case *errors.ErrUnauthorized:
		return "unauthorized"
	case *errors.ErrNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// withFallback sets the operation's Vietnamese fallback on transport errors
func withFallback(err error, fallback string) error {
	var transport *errors.ErrTransport
	if stderrors.As(err, &transport) && transport.Message == "" {
		return &errors.ErrTransport{Message: fallback, Err: transport.Err}
	}
	return err
}
