package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
)

const msgLoginFailed = "Đăng nhập thất bại"

// AuthAPI is the part of the shop API used to open and close sessions
type AuthAPI interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
}

// AccountAPI is the part of the shop API tied to a signed-in account
type AccountAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	GetWishlist(ctx context.Context) (*domain.Wishlist, error)
	AddWishlistItem(ctx context.Context, productID int64) error
	RemoveWishlistItem(ctx context.Context, productID int64) error
	ClearWishlist(ctx context.Context) error
}

// SessionState is the session store as seen by the session service
type SessionState interface {
	Token() string
	SetAuth(ctx context.Context, user domain.User, token string) error
	ClearAuth(ctx context.Context) error
	UpdateUser(ctx context.Context, user domain.User) error
	SetCart(ctx context.Context, cart *domain.Cart) error
	ReplaceWishlist(ctx context.Context, productIDs []int64) error
	ToggleWishlist(ctx context.Context, productID int64) (bool, error)
	ClearWishlist(ctx context.Context) error
}

type sessionService struct {
	auth    AuthAPI
	account func(token string) AccountAPI
	state   SessionState
	logger  *zap.Logger
}

// NewSessionService creates the session service. account returns a client
// authenticated with token.
func NewSessionService(auth AuthAPI, account func(token string) AccountAPI, state SessionState, logger *zap.Logger) *sessionService {
	return &sessionService{
		auth:    auth,
		account: account,
		state:   state,
		logger:  logger,
	}
}

// Login authenticates, stores the token, replaces the local wishlist with the
// server copy and reloads the cart, which is when the shop merges the guest
// cart into the account. Sync failures do not fail the login.
func (s *sessionService) Login(ctx context.Context, creds backend.Credentials) (*domain.User, error) {
	result, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, withFallback(err, msgLoginFailed)
	}
	if err := s.state.SetAuth(ctx, result.User, result.Token); err != nil {
		return nil, err
	}

	account := s.account(result.Token)
	s.syncWishlist(ctx, account)
	s.syncCart(ctx, account)
	return &result.User, nil
}

func (s *sessionService) syncCart(ctx context.Context, account AccountAPI) {
	cart, err := account.GetCart(ctx)
	if err != nil {
		s.logger.Warn("Failed to load cart after login", zap.Error(err))
		return
	}
	if err := s.state.SetCart(ctx, cart); err != nil {
		s.logger.Warn("Failed to store cart after login", zap.Error(err))
	}
}

func (s *sessionService) syncWishlist(ctx context.Context, account AccountAPI) {
	w, err := account.GetWishlist(ctx)
	if err != nil {
		s.logger.Warn("Failed to sync wishlist after login", zap.Error(err))
		return
	}
	if err := s.state.ReplaceWishlist(ctx, w.ProductIDs()); err != nil {
		s.logger.Warn("Failed to store synced wishlist", zap.Error(err))
	}
}

// Logout tells the API on a best effort basis and always clears local auth
func (s *sessionService) Logout(ctx context.Context) error {
	if s.state.Token() != "" {
		if err := s.auth.Logout(ctx); err != nil {
			s.logger.Warn("Logout call failed, clearing session anyway", zap.Error(err))
		}
	}
	return s.state.ClearAuth(ctx)
}

// Refresh reloads the current user
func (s *sessionService) Refresh(ctx context.Context) (*domain.User, error) {
	user, err := s.auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.state.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleWishlist flips a product in the wishlist. Signed-in sessions update
// the server first so a refused call leaves local state untouched.
func (s *sessionService) ToggleWishlist(ctx context.Context, productID int64, currentlyIn bool) (bool, error) {
	if token := s.state.Token(); token != "" {
		api := s.account(token)
		var err error
		if currentlyIn {
			err = api.RemoveWishlistItem(ctx, productID)
		} else {
			err = api.AddWishlistItem(ctx, productID)
		}
		if err != nil {
			return currentlyIn, err
		}
	}
	return s.state.ToggleWishlist(ctx, productID)
}

// ClearWishlist empties the wishlist, server side first when signed in
func (s *sessionService) ClearWishlist(ctx context.Context) error {
	if token := s.state.Token(); token != "" {
		if err := s.account(token).ClearWishlist(ctx); err != nil {
			return err
		}
	}
	return s.state.ClearWishlist(ctx)
}
