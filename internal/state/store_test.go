package state

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

type fakePersister struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
	fail  error
}

func newFakePersister() *fakePersister {
	return &fakePersister{data: map[string][]byte{}}
}

func (p *fakePersister) Load(ctx context.Context, id string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.data[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "session", ID: id}
	}
	return data, nil
}

func (p *fakePersister) Save(ctx context.Context, id string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.saves++
	p.data[id] = append([]byte(nil), data...)
	return nil
}

func (p *fakePersister) Delete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, id)
	return nil
}

const testSessionID = "5f0c5a8e-4c1e-4a53-9a57-0d6f1c1d2e3f"

func openTestStore(t *testing.T, p *fakePersister) *Store {
	store, err := Open(context.Background(), testSessionID, p, NewSealer("test-secret"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	return store
}

func TestOpenUnknownSessionStartsFresh(t *testing.T) {
	store := openTestStore(t, newFakePersister())
	snap := store.Snapshot()
	if snap.IsAuthenticated() {
		t.Error("Expected fresh session to be anonymous")
	}
	if snap.UI.Theme != ThemeLight || !snap.UI.EffectsEnabled {
		t.Errorf("Expected light theme with effects, got %+v", snap.UI)
	}
}

func TestEveryMutationFlushes(t *testing.T) {
	p := newFakePersister()
	store := openTestStore(t, p)
	ctx := context.Background()

	_ = store.AddToWishlist(ctx, 1)
	_ = store.SetTheme(ctx, ThemeDark)
	_ = store.AddRecentlyViewed(ctx, 9)

	if p.saves != 3 {
		t.Errorf("Expected 3 flushes, got %d", p.saves)
	}
}

func TestTokenIsSealedAtRest(t *testing.T) {
	p := newFakePersister()
	store := openTestStore(t, p)
	ctx := context.Background()

	if err := store.SetAuth(ctx, domain.User{ID: 4, Email: "lan@example.vn"}, "tok-secret-value"); err != nil {
		t.Fatalf("Expected SetAuth to succeed, got %v", err)
	}
	if bytes.Contains(p.data[testSessionID], []byte("tok-secret-value")) {
		t.Error("Expected token to be sealed in persisted state")
	}

	rehydrated := openTestStore(t, p)
	if rehydrated.Token() != "tok-secret-value" {
		t.Errorf("Expected token to survive hydrate, got %q", rehydrated.Token())
	}
	if rehydrated.Snapshot().Auth.User.Email != "lan@example.vn" {
		t.Error("Expected user to survive hydrate")
	}
}

func TestWrongSecretDropsAuth(t *testing.T) {
	p := newFakePersister()
	store := openTestStore(t, p)
	_ = store.SetAuth(context.Background(), domain.User{ID: 1}, "tok")

	other, err := Open(context.Background(), testSessionID, p, NewSealer("rotated"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Expected open to succeed, got %v", err)
	}
	if other.Snapshot().IsAuthenticated() {
		t.Error("Expected auth to be dropped when the token cannot be unsealed")
	}
}

func TestClearAuthClearsAccountState(t *testing.T) {
	store := openTestStore(t, newFakePersister())
	ctx := context.Background()
	_ = store.SetAuth(ctx, domain.User{ID: 1}, "tok")
	_ = store.SetCart(ctx, &domain.Cart{ID: "c1"})
	_ = store.AddToWishlist(ctx, 3)
	_ = store.SetTheme(ctx, ThemeDark)

	_ = store.ClearAuth(ctx)
	snap := store.Snapshot()
	if snap.IsAuthenticated() || snap.Cart != nil || len(snap.Wishlist) != 0 {
		t.Errorf("Expected account state cleared, got %+v", snap)
	}
	if snap.UI.Theme != ThemeDark {
		t.Error("Expected UI preferences to survive logout")
	}
}

func TestWishlistActions(t *testing.T) {
	store := openTestStore(t, newFakePersister())
	ctx := context.Background()

	_ = store.AddToWishlist(ctx, 1)
	_ = store.AddToWishlist(ctx, 1)
	added, _ := store.ToggleWishlist(ctx, 2)
	if !added {
		t.Error("Expected toggle to add product 2")
	}
	added, _ = store.ToggleWishlist(ctx, 1)
	if added {
		t.Error("Expected toggle to remove product 1")
	}
	if got := fmt.Sprint(store.Snapshot().Wishlist); got != "[2]" {
		t.Errorf("Expected [2], got %s", got)
	}

	_ = store.ReplaceWishlist(ctx, []int64{7, 8, 7})
	if got := fmt.Sprint(store.Snapshot().Wishlist); got != "[7 8]" {
		t.Errorf("Expected [7 8], got %s", got)
	}
}

func TestRecentlyViewedBounded(t *testing.T) {
	store := openTestStore(t, newFakePersister())
	ctx := context.Background()
	for i := int64(1); i <= 12; i++ {
		_ = store.AddRecentlyViewed(ctx, i)
	}
	_ = store.AddRecentlyViewed(ctx, 5)

	list := store.Snapshot().RecentlyViewed
	if len(list) != MaxRecentlyViewed {
		t.Fatalf("Expected %d entries, got %d", MaxRecentlyViewed, len(list))
	}
	if list[0] != 5 || list[1] != 12 {
		t.Errorf("Expected 5 then 12 first, got %v", list[:2])
	}
	seen := map[int64]bool{}
	for _, id := range list {
		if seen[id] {
			t.Errorf("Expected no duplicates, got %v", list)
		}
		seen[id] = true
	}
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	store := openTestStore(t, newFakePersister())
	if err := store.SetTheme(context.Background(), "sepia"); err == nil {
		t.Error("Expected unknown theme to be rejected")
	}
	theme, _ := store.ToggleTheme(context.Background())
	if theme != ThemeDark {
		t.Errorf("Expected dark after toggle, got %s", theme)
	}
}

func TestFlushFailureIsReported(t *testing.T) {
	p := newFakePersister()
	p.fail = fmt.Errorf("disk full")
	store := openTestStore(t, p)
	if err := store.AddToWishlist(context.Background(), 1); err == nil {
		t.Error("Expected persist failure to surface")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := openTestStore(t, newFakePersister())
	_ = store.AddToWishlist(context.Background(), 1)
	snap := store.Snapshot()
	snap.Wishlist[0] = 99
	if store.Snapshot().Wishlist[0] != 1 {
		t.Error("Expected snapshot mutation not to leak into the store")
	}
}

func TestManagerCachesAndValidates(t *testing.T) {
	m := NewManager(newFakePersister(), NewSealer("k"), time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := m.Get(ctx, "not-a-uuid"); err == nil {
		t.Error("Expected invalid session id to be rejected")
	}

	created, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}
	again, _ := m.Get(ctx, created.ID())
	if again != created {
		t.Error("Expected the cached store to be returned")
	}

	if err := m.Forget(ctx, created.ID()); err != nil {
		t.Fatalf("Expected forget to succeed, got %v", err)
	}
	fresh, _ := m.Get(ctx, created.ID())
	if fresh == created {
		t.Error("Expected a new store after forget")
	}
}

func TestManagerDoesNotCacheUnknownIDs(t *testing.T) {
	m := NewManager(newFakePersister(), NewSealer("k"), time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		if _, err := m.Get(ctx, uuid.NewString()); err != nil {
			t.Fatalf("Expected unknown id to open fresh, got %v", err)
		}
	}
	if n := m.Cached(); n != 0 {
		t.Errorf("Expected no cached stores for unknown ids, got %d", n)
	}

	store, _ := m.Get(ctx, testSessionID)
	_ = store.SetTheme(ctx, ThemeDark)
	_, _ = m.Get(ctx, testSessionID)
	if m.Cached() != 1 {
		t.Errorf("Expected the persisted session to be cached, got %d", m.Cached())
	}
}

func TestManagerDropsSessionsExpiredInStorage(t *testing.T) {
	p := newFakePersister()
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	m := NewManager(p, NewSealer("k"), 50*time.Millisecond, zaptest.NewLogger(t))
	m.now = func() time.Time { return now }
	ctx := context.Background()

	created, err := m.Create(ctx)
	if err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}
	_ = created.SetAuth(ctx, domain.User{ID: 1}, "tok")

	// the persister expires the session on its own schedule
	_ = p.Delete(ctx, created.ID())
	now = now.Add(120 * time.Millisecond)

	store, err := m.Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("Expected get to succeed, got %v", err)
	}
	if store.Token() != "" || store.Snapshot().IsAuthenticated() {
		t.Errorf("Expected expired session to lose its token, got %q", store.Token())
	}
	if m.Cached() != 0 {
		t.Errorf("Expected expired store evicted, got %d cached", m.Cached())
	}
}

func TestManagerKeepsLiveSessionsAfterRevalidation(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	m := NewManager(newFakePersister(), NewSealer("k"), time.Hour, zaptest.NewLogger(t))
	m.now = func() time.Time { return now }
	ctx := context.Background()

	created, _ := m.Create(ctx)
	now = now.Add(time.Minute)
	again, err := m.Get(ctx, created.ID())
	if err != nil || again != created {
		t.Errorf("Expected the live cached store after revalidation, got %v (%v)", again, err)
	}
}

func TestManagerSweepDropsIdleStores(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	m := NewManager(newFakePersister(), NewSealer("k"), time.Hour, zaptest.NewLogger(t))
	m.now = func() time.Time { return now }
	ctx := context.Background()

	idle, _ := m.Create(ctx)
	now = now.Add(40 * time.Minute)
	_, _ = m.Create(ctx)
	now = now.Add(30 * time.Minute)

	if n := m.Sweep(); n != 1 {
		t.Errorf("Expected one idle store swept, got %d", n)
	}
	if m.Cached() != 1 {
		t.Errorf("Expected the active store kept, got %d cached", m.Cached())
	}
	if _, err := m.Get(ctx, idle.ID()); err != nil {
		t.Errorf("Expected swept session to rehydrate from storage, got %v", err)
	}
}

func TestShopSessionIsSealedAndClearedOnLogout(t *testing.T) {
	p := newFakePersister()
	store := openTestStore(t, p)
	ctx := context.Background()

	if err := store.SetShopSession(ctx, "guestcookie"); err != nil {
		t.Fatalf("Expected shop session stored, got %v", err)
	}
	if bytes.Contains(p.data[testSessionID], []byte("guestcookie")) {
		t.Error("Expected shop session sealed at rest")
	}
	reopened := openTestStore(t, p)
	if reopened.ShopSession() != "guestcookie" {
		t.Errorf("Expected shop session restored, got %q", reopened.ShopSession())
	}

	_ = reopened.ClearAuth(ctx)
	if reopened.ShopSession() != "" {
		t.Error("Expected shop session cleared with auth")
	}
}

func TestSealerRoundTrip(t *testing.T) {
	s := NewSealer("k")
	sealed, err := s.Seal([]byte("abc"))
	if err != nil {
		t.Fatalf("Expected seal to succeed, got %v", err)
	}
	plain, err := s.Open(sealed)
	if err != nil || string(plain) != "abc" {
		t.Errorf("Expected abc, got %q (%v)", plain, err)
	}
	if _, err := s.Open([]byte("short")); err == nil {
		t.Error("Expected short input to fail")
	}
}
