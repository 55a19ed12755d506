package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/config"
)

type shopCall struct {
	Method string
	Path   string
	Body   string
}

// fakeShop is an in-process shop API. Routes are keyed by "METHOD /path".
type fakeShop struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []shopCall
}

func newFakeShop(t *testing.T) (*fakeShop, *backend.Client) {
	shop := &fakeShop{routes: map[string]http.HandlerFunc{}}
	server := httptest.NewServer(shop)
	t.Cleanup(server.Close)
	client := backend.NewClient(config.BackendConfig{BaseURL: server.URL}, zaptest.NewLogger(t))
	return shop, client.WithToken("test-token", nil)
}

func (f *fakeShop) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fakeShop) json(route string, status int, body interface{}) {
	f.handle(route, func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, status, body)
	})
}

func (f *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	route := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, shopCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	h, ok := f.routes[route]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		return
	}
	h(w, r)
}

func (f *fakeShop) recorded() []shopCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shopCall(nil), f.calls...)
}

// mutations returns every non-GET call
func (f *fakeShop) mutations() []shopCall {
	var out []shopCall
	for _, c := range f.recorded() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeShop) count(method, path string) int {
	n := 0
	for _, c := range f.recorded() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func decodeBody(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("Expected JSON body, got %q", body)
	}
	return out
}
