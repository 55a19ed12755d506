package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// CartAPI is the part of the shop API behind the cart
type CartAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	GetVariant(ctx context.Context, id int64) (*domain.CartVariant, error)
	AddCartItem(ctx context.Context, variantID int64, quantity int) error
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
}

// CartState is the session-side copy of the cart
type CartState interface {
	SetCart(ctx context.Context, cart *domain.Cart) error
	ClearCart(ctx context.Context) error
}

// AddItemRequest adds a variant to the cart. Stock is the availability the
// shopper saw; it can only tighten the clamp, never loosen the shop's stock.
type AddItemRequest struct {
	VariantID int64 `json:"variant_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity"`
	Stock     *int  `json:"stock,omitempty"`
}

type cartService struct {
	api    CartAPI
	state  CartState
	policy domain.ShippingPolicy
	logger *zap.Logger
}

// NewCartService creates the cart service for one session
func NewCartService(api CartAPI, state CartState, policy domain.ShippingPolicy, logger *zap.Logger) *cartService {
	return &cartService{
		api:    api,
		state:  state,
		policy: policy,
		logger: logger,
	}
}

// Get fetches the cart and refreshes the session copy
func (s *cartService) Get(ctx context.Context) (*CartView, error) {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.state.SetCart(ctx, cart); err != nil {
		s.logger.Warn("Failed to store cart in session", zap.Error(err))
	}
	return s.view(cart), nil
}

// Add clamps the requested quantity against the variant's live stock less what is already in the cart
func (s *cartService) Add(ctx context.Context, req AddItemRequest) (*CartView, error) {
	variant, err := s.api.GetVariant(ctx, req.VariantID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, &errors.ErrNotFound{Resource: "variant", ID: strconv.FormatInt(req.VariantID, 10)}
		}
		return nil, err
	}
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return nil, err
	}

	stock := variant.Stock
	if !variant.IsActive {
		stock = 0
	}
	if req.Stock != nil && *req.Stock < stock {
		stock = *req.Stock
	}
	inCart := 0
	for _, item := range cart.Items {
		if item.Variant.ID == req.VariantID {
			inCart += item.Quantity
		}
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if !domain.CanIncrement(inCart, stock) {
		return nil, &errors.ErrBusinessRule{Message: domain.MsgOutOfStock}
	}
	clamped := domain.ClampQuantity(inCart+quantity, stock) - inCart
	if clamped != quantity {
		s.logger.Debug("Clamped add to cart",
			zap.Int64("variant_id", req.VariantID),
			zap.Int("requested", quantity),
			zap.Int("clamped", clamped),
			zap.Int("stock", stock),
		)
	}

	if err := s.api.AddCartItem(ctx, req.VariantID, clamped); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// Update sets an item's quantity, clamped to [1, stock]
func (s *cartService) Update(ctx context.Context, itemID int64, quantity int) (*CartView, error) {
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := cart.Item(itemID)
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cart item", ID: strconv.FormatInt(itemID, 10)}
	}

	clamped := domain.ClampQuantity(quantity, item.Variant.Stock)
	if clamped == 0 {
		return nil, &errors.ErrBusinessRule{Message: domain.MsgOutOfStock}
	}
	if clamped != quantity {
		s.logger.Debug("Clamped cart quantity",
			zap.Int64("item_id", itemID),
			zap.Int("requested", quantity),
			zap.Int("clamped", clamped),
		)
	}
	if clamped == item.Quantity {
		return s.view(cart), nil
	}

	if err := s.api.UpdateCartItem(ctx, itemID, clamped); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *cartService) Remove(ctx context.Context, itemID int64) (*CartView, error) {
	if err := s.api.RemoveCartItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *cartService) Clear(ctx context.Context) (*CartView, error) {
	if err := s.api.ClearCart(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *cartService) view(cart *domain.Cart) *CartView {
	subtotal := cart.LineSubtotal()
	shipping := s.policy.Estimate(subtotal)
	controls := make([]QuantityControls, 0, len(cart.Items))
	for _, item := range cart.Items {
		controls = append(controls, QuantityControls{
			ItemID:       item.ID,
			CanIncrement: domain.CanIncrement(item.Quantity, item.Variant.Stock),
			CanDecrement: domain.CanDecrement(item.Quantity),
		})
	}
	return &CartView{
		Cart:     cart,
		Controls: controls,
		Subtotal: domain.FormatVND(subtotal),
		Shipping: domain.FormatVND(shipping),
		Total:    domain.FormatVND(subtotal.Add(shipping)),
	}
}
