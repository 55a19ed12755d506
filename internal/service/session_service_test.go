package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/internal/repository/memory"
	"github.com/eyewearvn/storefront/internal/state"
	"github.com/eyewearvn/storefront/pkg/errors"
)

func openStore(t *testing.T) *state.Store {
	store, err := state.Open(context.Background(), "9b2f3a1c-6d4e-4f5a-8b7c-1d2e3f4a5b6c",
		memory.NewSessionStore(time.Hour), state.NewSealer("test"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Expected store, got %v", err)
	}
	return store
}

func cartJSON(items ...map[string]interface{}) map[string]interface{} {
	if items == nil {
		items = []map[string]interface{}{}
	}
	return map[string]interface{}{"id": "c-1", "items": items, "total_items": len(items), "subtotal": "0"}
}

func cartItemJSON(id, variant int64, quantity, stock int, price string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"quantity": quantity,
		"variant": map[string]interface{}{
			"id": variant, "sku": "RB-3025", "price": price, "stock": stock, "is_active": true,
		},
		"total_price":  price,
		"product_name": "Ray-Ban Aviator",
	}
}

func TestLoginSyncsWishlist(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /auth/login/", http.StatusOK, map[string]interface{}{
		"token": "new-token",
		"user":  map[string]interface{}{"id": 3, "username": "lan", "email": "lan@example.vn"},
	})
	shop.json("GET /wishlist/", http.StatusOK, map[string]interface{}{
		"id": 1,
		"items": []map[string]interface{}{
			{"id": 1, "product": map[string]interface{}{"id": 40}},
			{"id": 2, "product": map[string]interface{}{"id": 41}},
		},
		"total_items": 2,
	})

	store := openStore(t)
	_ = store.AddToWishlist(context.Background(), 99)

	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))
	user, err := svc.Login(context.Background(), backend.Credentials{Username: "lan", Password: "x"})
	if err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}
	if user.Email != "lan@example.vn" {
		t.Errorf("Expected user email, got %q", user.Email)
	}

	snap := store.Snapshot()
	if store.Token() != "new-token" {
		t.Error("Expected token stored")
	}
	if len(snap.Wishlist) != 2 || snap.Wishlist[0] != 40 || snap.Wishlist[1] != 41 {
		t.Errorf("Expected wishlist replaced with [40 41], got %v", snap.Wishlist)
	}
}

func TestLoginSurvivesWishlistSyncFailure(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /auth/login/", http.StatusOK, map[string]interface{}{"token": "t", "user": map[string]interface{}{"id": 1}})
	shop.handle("GET /wishlist/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store := openStore(t)
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))
	if _, err := svc.Login(context.Background(), backend.Credentials{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("Expected login to succeed despite sync failure, got %v", err)
	}
	if !store.Snapshot().IsAuthenticated() {
		t.Error("Expected session to be authenticated")
	}
}

func TestLoginFailureMessage(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /auth/login/", http.StatusBadRequest, map[string]interface{}{
		"non_field_errors": []string{"Sai tên đăng nhập hoặc mật khẩu"},
	})

	svc := NewSessionService(client, func(string) AccountAPI { return client }, openStore(t), zaptest.NewLogger(t))
	_, err := svc.Login(context.Background(), backend.Credentials{Username: "a", Password: "b"})
	if got := errors.UserMessage(err, msgLoginFailed); got != "Sai tên đăng nhập hoặc mật khẩu" {
		t.Errorf("Expected server message, got %q", got)
	}
}

func TestLogoutIsBestEffort(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.handle("POST /auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	store := openStore(t)
	_ = store.SetAuth(context.Background(), domain.User{ID: 1}, "t")
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Expected logout to succeed, got %v", err)
	}
	if store.Snapshot().IsAuthenticated() {
		t.Error("Expected auth cleared")
	}
}

func TestToggleWishlistSignedIn(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /wishlist/add_item/", http.StatusCreated, map[string]string{"message": "ok"})
	shop.json("DELETE /wishlist/remove_item/", http.StatusOK, map[string]string{"message": "ok"})

	store := openStore(t)
	_ = store.SetAuth(context.Background(), domain.User{ID: 1}, "t")
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))

	added, err := svc.ToggleWishlist(context.Background(), 7, false)
	if err != nil || !added {
		t.Fatalf("Expected product added, got %v (%v)", added, err)
	}
	added, err = svc.ToggleWishlist(context.Background(), 7, true)
	if err != nil || added {
		t.Fatalf("Expected product removed, got %v (%v)", added, err)
	}

	calls := shop.mutations()
	if len(calls) != 2 || calls[1].Method != http.MethodDelete {
		t.Fatalf("Expected add then delete, got %+v", calls)
	}
	if body := decodeBody(t, calls[1].Body); body["product_id"] != float64(7) {
		t.Errorf("Expected product_id 7 in delete body, got %v", body)
	}
}

func TestToggleWishlistAnonymousIsLocal(t *testing.T) {
	shop, client := newFakeShop(t)
	store := openStore(t)
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))

	added, err := svc.ToggleWishlist(context.Background(), 7, false)
	if err != nil || !added {
		t.Fatalf("Expected local add, got %v (%v)", added, err)
	}
	if len(shop.recorded()) != 0 {
		t.Error("Expected no shop calls for an anonymous session")
	}
}

func TestClearWishlistSignedIn(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /wishlist/clear/", http.StatusOK, map[string]string{"message": "ok"})

	store := openStore(t)
	_ = store.SetAuth(context.Background(), domain.User{ID: 1}, "t")
	_ = store.ReplaceWishlist(context.Background(), []int64{4, 5})
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))

	if err := svc.ClearWishlist(context.Background()); err != nil {
		t.Fatalf("Expected wishlist cleared, got %v", err)
	}
	if n := len(store.Snapshot().Wishlist); n != 0 {
		t.Errorf("Expected empty wishlist, got %d items", n)
	}
	if len(shop.mutations()) != 1 {
		t.Errorf("Expected one clear call, got %+v", shop.mutations())
	}
}

func TestClearWishlistKeepsLocalOnRefusal(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /wishlist/clear/", http.StatusBadRequest, map[string]string{"error": "Không thể xoá danh sách"})

	store := openStore(t)
	_ = store.SetAuth(context.Background(), domain.User{ID: 1}, "t")
	_ = store.ReplaceWishlist(context.Background(), []int64{4})
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))

	err := svc.ClearWishlist(context.Background())
	if _, ok := err.(*errors.ErrBusinessRule); !ok {
		t.Fatalf("Expected business rule error, got %v", err)
	}
	if n := len(store.Snapshot().Wishlist); n != 1 {
		t.Errorf("Expected local wishlist untouched, got %d items", n)
	}
}

func TestLoginLoadsMergedCart(t *testing.T) {
	shop, client := newFakeShop(t)
	shop.json("POST /auth/login/", http.StatusOK, map[string]interface{}{"token": "t", "user": map[string]interface{}{"id": 1}})
	shop.json("GET /wishlist/", http.StatusOK, map[string]interface{}{"id": 1, "items": []interface{}{}})
	shop.json("GET /cart/", http.StatusOK, cartJSON(cartItemJSON(1, 5, 2, 4, "500000")))

	store := openStore(t)
	svc := NewSessionService(client, func(string) AccountAPI { return client }, store, zaptest.NewLogger(t))
	if _, err := svc.Login(context.Background(), backend.Credentials{Username: "a", Password: "b"}); err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}

	cart := store.Snapshot().Cart
	if cart == nil || len(cart.Items) != 1 {
		t.Fatalf("Expected merged cart with one line, got %+v", cart)
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if shop.count("GET", "/cart/") != 1 {
		t.Errorf("Expected one cart fetch, got %d", shop.count("GET", "/cart/"))
	}
}
