package state

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

const (
	// MaxRecentlyViewed bounds the recently viewed list
	MaxRecentlyViewed = 10
	// MaxObservedOrders bounds how many projected order states a session keeps
	MaxObservedOrders = 20
)

// ObservedOrder is the state an order was last shown with
type ObservedOrder struct {
	OrderID int64             `json:"order_id"`
	State   domain.OrderState `json:"state"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Persister stores opaque session blobs. Load returns *errors.ErrNotFound for unknown ids.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
}

type Auth struct {
	User  *domain.User `json:"user,omitempty"`
	Token string       `json:"-"`
}

type UI struct {
	Theme          Theme `json:"theme"`
	EffectsEnabled bool  `json:"effects_enabled"`
}

// Snapshot is the whole client state of one session
type Snapshot struct {
	Auth           Auth            `json:"auth"`
	Cart           *domain.Cart    `json:"cart,omitempty"`
	Wishlist       []int64         `json:"wishlist"`
	UI             UI              `json:"ui"`
	RecentlyViewed []int64         `json:"recently_viewed"`
	ObservedOrders []ObservedOrder `json:"observed_orders,omitempty"`

	// ShopSession is the shop API's session cookie. It keys the guest cart
	// until login, when the shop merges that cart into the account.
	ShopSession string `json:"-"`
}

// IsAuthenticated reports whether the session holds a token
func (s Snapshot) IsAuthenticated() bool {
	return s.Auth.Token != ""
}

func (s Snapshot) InWishlist(productID int64) bool {
	for _, id := range s.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		Wishlist:       []int64{},
		UI:             UI{Theme: ThemeLight, EffectsEnabled: true},
		RecentlyViewed: []int64{},
	}
}

// persisted is the at-rest form; the token only ever leaves memory sealed
type persisted struct {
	Snapshot
	SealedToken       []byte `json:"sealed_token,omitempty"`
	SealedShopSession []byte `json:"sealed_shop_session,omitempty"`
}

// Store is the typed session container. State changes only through its
// named actions and every change is flushed to the persister.
type Store struct {
	mu        sync.RWMutex
	id        string
	snap      Snapshot
	persister Persister
	sealer    *Sealer
	logger    *zap.Logger

	// hydrated is set when the state came from the persister
	hydrated bool
}

// Open hydrates the session id from persister, starting fresh when it is unknown
func Open(ctx context.Context, id string, persister Persister, sealer *Sealer, logger *zap.Logger) (*Store, error) {
	s := &Store{
		id:        id,
		snap:      defaultSnapshot(),
		persister: persister,
		sealer:    sealer,
		logger:    logger,
	}

	data, err := persister.Load(ctx, id)
	if err != nil {
		var nf *errors.ErrNotFound
		if stderrors.As(err, &nf) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn("Discarding unreadable session state", zap.String("session_id", id), zap.Error(err))
		return s, nil
	}
	s.hydrated = true
	s.snap = p.Snapshot
	if s.snap.Wishlist == nil {
		s.snap.Wishlist = []int64{}
	}
	if s.snap.RecentlyViewed == nil {
		s.snap.RecentlyViewed = []int64{}
	}
	if !s.snap.UI.Theme.IsValid() {
		s.snap.UI.Theme = ThemeLight
	}
	if len(p.SealedToken) > 0 {
		token, err := sealer.Open(p.SealedToken)
		if err != nil {
			// A rotated STATE_SECRET logs everyone out rather than failing the request.
			logger.Warn("Failed to unseal session token", zap.String("session_id", id), zap.Error(err))
			s.snap.Auth = Auth{}
		} else {
			s.snap.Auth.Token = string(token)
		}
	}
	if len(p.SealedShopSession) > 0 {
		if cookie, err := sealer.Open(p.SealedShopSession); err == nil {
			s.snap.ShopSession = string(cookie)
		}
	}
	return s, nil
}

func (s *Store) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snap)
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Auth.Token
}

func (s *Store) ShopSession() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ShopSession
}

func cloneSnapshot(in Snapshot) Snapshot {
	out := in
	if in.Auth.User != nil {
		u := *in.Auth.User
		out.Auth.User = &u
	}
	if in.Cart != nil {
		c := *in.Cart
		c.Items = append([]domain.CartItem(nil), in.Cart.Items...)
		out.Cart = &c
	}
	out.Wishlist = append([]int64{}, in.Wishlist...)
	out.RecentlyViewed = append([]int64{}, in.RecentlyViewed...)
	out.ObservedOrders = append([]ObservedOrder(nil), in.ObservedOrders...)
	return out
}

// mutate applies fn under the lock and flushes the result
func (s *Store) mutate(ctx context.Context, fn func(*Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	p := persisted{Snapshot: s.snap}
	if s.snap.Auth.Token != "" {
		sealed, err := s.sealer.Seal([]byte(s.snap.Auth.Token))
		if err != nil {
			return fmt.Errorf("failed to seal token: %w", err)
		}
		p.SealedToken = sealed
	}
	if s.snap.ShopSession != "" {
		sealed, err := s.sealer.Seal([]byte(s.snap.ShopSession))
		if err != nil {
			return fmt.Errorf("failed to seal shop session: %w", err)
		}
		p.SealedShopSession = sealed
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.persister.Save(ctx, s.id, data); err != nil {
		s.logger.Error("Failed to persist session state", zap.String("session_id", s.id), zap.Error(err))
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (s *Store) SetAuth(ctx context.Context, user domain.User, token string) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Auth = Auth{User: &user, Token: token}
	})
}

// ClearAuth drops the token and user. Cart, wishlist and the shop session
// are cleared too since they belong to the account.
func (s *Store) ClearAuth(ctx context.Context) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Auth = Auth{}
		snap.ShopSession = ""
		snap.Cart = nil
		snap.Wishlist = []int64{}
		snap.ObservedOrders = nil
	})
}

// SetShopSession records the session cookie the shop API issued
func (s *Store) SetShopSession(ctx context.Context, id string) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.ShopSession = id
	})
}

func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Auth.User = &user
	})
}

func (s *Store) SetCart(ctx context.Context, cart *domain.Cart) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Cart = cart
	})
}

func (s *Store) ClearCart(ctx context.Context) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Cart = nil
	})
}

func (s *Store) AddToWishlist(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		if !snap.InWishlist(productID) {
			snap.Wishlist = append(snap.Wishlist, productID)
		}
	})
}

func (s *Store) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Wishlist = without(snap.Wishlist, productID)
	})
}

// ToggleWishlist flips membership and reports whether the product is now in the wishlist
func (s *Store) ToggleWishlist(ctx context.Context, productID int64) (bool, error) {
	var added bool
	err := s.mutate(ctx, func(snap *Snapshot) {
		if snap.InWishlist(productID) {
			snap.Wishlist = without(snap.Wishlist, productID)
			return
		}
		snap.Wishlist = append(snap.Wishlist, productID)
		added = true
	})
	return added, err
}

// ReplaceWishlist swaps the local wishlist for the server copy
func (s *Store) ReplaceWishlist(ctx context.Context, productIDs []int64) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Wishlist = []int64{}
		for _, id := range productIDs {
			if !snap.InWishlist(id) {
				snap.Wishlist = append(snap.Wishlist, id)
			}
		}
	})
}

func (s *Store) ClearWishlist(ctx context.Context) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.Wishlist = []int64{}
	})
}

func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	if !theme.IsValid() {
		return &errors.ErrValidation{Fields: map[string][]string{"theme": {fmt.Sprintf("unknown theme %q", theme)}}}
	}
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.UI.Theme = theme
	})
}

func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	var theme Theme
	err := s.mutate(ctx, func(snap *Snapshot) {
		if snap.UI.Theme == ThemeDark {
			snap.UI.Theme = ThemeLight
		} else {
			snap.UI.Theme = ThemeDark
		}
		theme = snap.UI.Theme
	})
	return theme, err
}

func (s *Store) SetEffectsEnabled(ctx context.Context, enabled bool) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.UI.EffectsEnabled = enabled
	})
}

// AddRecentlyViewed moves productID to the front, keeping at most MaxRecentlyViewed entries
func (s *Store) AddRecentlyViewed(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		list := append([]int64{productID}, without(snap.RecentlyViewed, productID)...)
		if len(list) > MaxRecentlyViewed {
			list = list[:MaxRecentlyViewed]
		}
		snap.RecentlyViewed = list
	})
}

// RememberOrder records the state order id was just projected with, most recent first
func (s *Store) RememberOrder(ctx context.Context, id int64, st domain.OrderState) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		list := append([]ObservedOrder{{OrderID: id, State: st}}, withoutOrder(snap.ObservedOrders, id)...)
		if len(list) > MaxObservedOrders {
			list = list[:MaxObservedOrders]
		}
		snap.ObservedOrders = list
	})
}

// ObservedOrder returns the state order id was last projected with
func (s *Store) ObservedOrder(id int64) (domain.OrderState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.snap.ObservedOrders {
		if o.OrderID == id {
			return o.State, true
		}
	}
	return domain.OrderState{}, false
}

func (s *Store) ForgetOrder(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(snap *Snapshot) {
		snap.ObservedOrders = withoutOrder(snap.ObservedOrders, id)
	})
}

// Destroy removes the persisted session entirely
func (s *Store) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = defaultSnapshot()
	return s.persister.Delete(ctx, s.id)
}

func without(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func withoutOrder(list []ObservedOrder, id int64) []ObservedOrder {
	out := make([]ObservedOrder, 0, len(list))
	for _, o := range list {
		if o.OrderID != id {
			out = append(out, o)
		}
	}
	return out
}
