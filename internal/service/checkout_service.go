package service

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/metrics"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// CheckoutAPI is the part of the shop API used to place and pay orders
type CheckoutAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	CreateOrder(ctx context.Context, form domain.CheckoutForm) (*backend.CreateOrderResult, error)
	CreateVNPayPayment(ctx context.Context, orderID int64, paymentType string) (*backend.PaymentLink, error)
	VerifyVNPayReturn(ctx context.Context, query url.Values) (*backend.PaymentReturn, error)
}

const (
	MsgVNPayLinkFailed   = "Không thể tạo liên kết thanh toán VNPAY. Vui lòng thử lại."
	MsgPaymentSucceeded  = "Thanh toán thành công! Đơn hàng của bạn đã được xác nhận."
	MsgPaymentFailed     = "Thanh toán thất bại."
	MsgPaymentVerifyFail = "Có lỗi xảy ra khi xác thực thanh toán."
)

type checkoutService struct {
	api    CheckoutAPI
	state  CartState
	logger *zap.Logger
}

// NewCheckoutService creates the checkout service for one session
func NewCheckoutService(api CheckoutAPI, state CartState, logger *zap.Logger) *checkoutService {
	return &checkoutService{
		api:    api,
		state:  state,
		logger: logger,
	}
}

// Checkout validates the form, places the order and, for VNPAY methods,
// obtains the gateway URL the shopper must be sent to.
func (s *checkoutService) Checkout(ctx context.Context, form domain.CheckoutForm) (*CheckoutResult, error) {
	method := string(form.PaymentMethod)

	form, err := s.withSavedAddress(ctx, form)
	if err != nil {
		metrics.RecordCheckout(method, outcomeOf(err))
		return nil, err
	}
	if fields := form.Validate(); fields != nil {
		metrics.RecordCheckout(method, "invalid")
		return nil, &errors.ErrValidation{Fields: fields, Message: domain.MsgCheckoutIncomplete}
	}

	cart, err := s.api.GetCart(ctx)
	if err != nil {
		metrics.RecordCheckout(method, outcomeOf(err))
		return nil, err
	}
	if len(cart.Items) == 0 {
		metrics.RecordCheckout(method, "empty_cart")
		return nil, &errors.ErrBusinessRule{Message: domain.MsgCartEmpty}
	}

	created, err := s.api.CreateOrder(ctx, form.Payload())
	if err != nil {
		metrics.RecordCheckout(method, outcomeOf(err))
		s.logger.Error("Failed to create order", zap.String("payment_method", method), zap.Error(err))
		return nil, err
	}
	orderID, orderNumber := created.OrderRef()

	// The server consumed the cart either way.
	if err := s.state.ClearCart(ctx); err != nil {
		s.logger.Warn("Failed to clear session cart", zap.Error(err))
	}

	result := &CheckoutResult{OrderID: orderID, OrderNumber: orderNumber}
	if !form.PaymentMethod.IsVNPay() {
		metrics.RecordCheckout(method, "ok")
		result.Message = fmt.Sprintf("Đặt hàng thành công! Mã đơn hàng: %s", orderNumber)
		return result, nil
	}

	if created.PaymentURL != "" {
		metrics.RecordCheckout(method, "ok")
		result.PaymentURL = created.PaymentURL
		return result, nil
	}

	link, err := s.api.CreateVNPayPayment(ctx, orderID, form.PaymentMethod.VNPayType())
	if err == nil && (!link.Success || link.PaymentURL == "") {
		err = fmt.Errorf("payment link refused: %s", link.Error)
	}
	if err != nil {
		metrics.RecordCheckout(method, "payment_link_failed")
		s.logger.Error("Failed to create VNPAY payment",
			zap.Int64("order_id", orderID),
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
		return nil, &errors.ErrPaymentLinkFailed{
			OrderID:     orderID,
			OrderNumber: orderNumber,
			Message:     MsgVNPayLinkFailed,
			Err:         err,
		}
	}

	metrics.RecordCheckout(method, "ok")
	result.PaymentURL = link.PaymentURL
	return result, nil
}

// withSavedAddress fills the shipping fields from the address book: the chosen
// address when AddressID is set, else the default or first one when the
// shopper typed no shipping address.
func (s *checkoutService) withSavedAddress(ctx context.Context, form domain.CheckoutForm) (domain.CheckoutForm, error) {
	if form.AddressID == 0 && form.HasShipping() {
		return form, nil
	}
	list, err := s.api.ListAddresses(ctx)
	if err != nil {
		if form.AddressID != 0 {
			return form, err
		}
		s.logger.Warn("Failed to load address book for checkout", zap.Error(err))
		return form, nil
	}

	if form.AddressID != 0 {
		addr, ok := domain.FindAddress(list, form.AddressID)
		if !ok {
			return form, &errors.ErrValidation{
				Fields:  map[string][]string{"address_id": {domain.MsgAddressNotFound}},
				Message: domain.MsgAddressNotFound,
			}
		}
		return addr.FillShipping(form), nil
	}
	if addr, ok := domain.PickAddress(list); ok {
		s.logger.Debug("Using saved address for checkout", zap.Int64("address_id", addr.ID))
		return addr.FillShipping(form), nil
	}
	return form, nil
}

// VerifyReturn forwards the VNPAY redirect query for verification
func (s *checkoutService) VerifyReturn(ctx context.Context, query url.Values) *PaymentReturnResult {
	ret, err := s.api.VerifyVNPayReturn(ctx, query)
	if err != nil {
		s.logger.Warn("Failed to verify VNPAY return", zap.String("txn_ref", query.Get("vnp_TxnRef")), zap.Error(err))
		return &PaymentReturnResult{Message: errors.UserMessage(err, MsgPaymentVerifyFail)}
	}
	if ret.Success {
		return &PaymentReturnResult{Success: true, Message: MsgPaymentSucceeded, OrderNumber: ret.OrderNumber}
	}
	msg := ret.Message
	if msg == "" {
		msg = MsgPaymentFailed
	}
	return &PaymentReturnResult{Message: msg, OrderNumber: ret.OrderNumber}
}
