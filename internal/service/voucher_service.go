package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// VoucherAPI is the voucher part of the shop API
type VoucherAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	ActiveVouchers(ctx context.Context) ([]domain.Voucher, error)
	ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal) (*domain.VoucherCheck, error)
}

type voucherService struct {
	api    VoucherAPI
	policy domain.ShippingPolicy
	logger *zap.Logger
}

func NewVoucherService(api VoucherAPI, policy domain.ShippingPolicy, logger *zap.Logger) *voucherService {
	return &voucherService{
		api:    api,
		policy: policy,
		logger: logger,
	}
}

func (s *voucherService) Active(ctx context.Context) ([]domain.Voucher, error) {
	return s.api.ActiveVouchers(ctx)
}

// Validate checks code against orderTotal, or against the cart subtotal when
// orderTotal is nil. A valid check carries the estimated discount.
func (s *voucherService) Validate(ctx context.Context, code string, orderTotal *decimal.Decimal) (*domain.VoucherCheck, error) {
	code = domain.NormalizeVoucherCode(code)
	if code == "" {
		return nil, &errors.ErrValidation{
			Fields:  map[string][]string{"code": {domain.MsgVoucherCodeRequired}},
			Message: domain.MsgVoucherCodeRequired,
		}
	}

	var subtotal decimal.Decimal
	if orderTotal != nil {
		subtotal = *orderTotal
	} else {
		cart, err := s.api.GetCart(ctx)
		if err != nil {
			return nil, err
		}
		subtotal = cart.LineSubtotal()
	}

	check, err := s.api.ValidateVoucher(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}
	if !check.Valid || check.Voucher == nil {
		s.logger.Debug("Voucher refused", zap.String("code", code), zap.String("reason", check.Error))
		return check, nil
	}
	check.EstimatedDiscount = check.Voucher.EstimateDiscount(subtotal, s.policy.Estimate(subtotal))
	check.EstimatedText = domain.FormatVND(check.EstimatedDiscount)
	return check, nil
}
