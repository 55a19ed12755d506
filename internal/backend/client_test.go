package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

// requestLog is shared between the test server goroutine and the test
type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) add(r recordedRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) at(i int) recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reqs[i]
}

func setupClientTest(t *testing.T, handler http.HandlerFunc) (*Client, *requestLog) {
	requests := &requestLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests.add(recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(config.BackendConfig{BaseURL: server.URL + "/api/"}, zaptest.NewLogger(t))
	return client, requests
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientSendsTokenHeader(t *testing.T) {
	client, requests := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "status": "PENDING"})
	})

	order, err := client.WithToken("abc123", nil).GetOrder(context.Background(), 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Errorf("Expected PENDING, got %s", order.Status)
	}
	got := requests.at(0)
	if got.Auth != "Token abc123" {
		t.Errorf("Expected Token auth header, got %q", got.Auth)
	}
	if got.Path != "/api/orders/7/" {
		t.Errorf("Expected /api/orders/7/, got %s", got.Path)
	}
}

func TestClientUnauthorizedRunsHook(t *testing.T) {
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
	})

	cleared := false
	_, err := client.WithToken("stale", func() { cleared = true }).GetCart(context.Background())
	if _, ok := err.(*errors.ErrUnauthorized); !ok {
		t.Fatalf("Expected ErrUnauthorized, got %T", err)
	}
	if !cleared {
		t.Error("Expected unauthorized hook to run")
	}
}

func TestClientErrorDecoding(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "business error surfaced verbatim",
			status: http.StatusBadRequest,
			body:   `{"error":"Không thể hủy đơn hàng ở trạng thái hiện tại"}`,
			check: func(t *testing.T, err error) {
				br, ok := err.(*errors.ErrBusinessRule)
				if !ok {
					t.Fatalf("Expected ErrBusinessRule, got %T", err)
				}
				if br.Message != "Không thể hủy đơn hàng ở trạng thái hiện tại" {
					t.Errorf("Expected server message, got %q", br.Message)
				}
			},
		},
		{
			name:   "field errors",
			status: http.StatusBadRequest,
			body:   `{"shipping_phone":["Số điện thoại không hợp lệ"]}`,
			check: func(t *testing.T, err error) {
				ve, ok := err.(*errors.ErrValidation)
				if !ok {
					t.Fatalf("Expected ErrValidation, got %T", err)
				}
				if len(ve.Field("shipping_phone")) != 1 {
					t.Errorf("Expected one shipping_phone message, got %v", ve.Fields)
				}
			},
		},
		{
			name:   "server error with message",
			status: http.StatusInternalServerError,
			body:   `{"error":"Không thể tạo liên kết thanh toán"}`,
			check: func(t *testing.T, err error) {
				if _, ok := err.(*errors.ErrBusinessRule); !ok {
					t.Fatalf("Expected ErrBusinessRule, got %T", err)
				}
			},
		},
		{
			name:   "server error html",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				if _, ok := err.(*errors.ErrTransport); !ok {
					t.Fatalf("Expected ErrTransport, got %T", err)
				}
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"detail":"Not found."}`,
			check: func(t *testing.T, err error) {
				nf, ok := err.(*errors.ErrNotFound)
				if !ok {
					t.Fatalf("Expected ErrNotFound, got %T", err)
				}
				if nf.Resource != "order" || nf.ID != "42" {
					t.Errorf("Expected order 42, got %s %s", nf.Resource, nf.ID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.GetOrder(context.Background(), 42)
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestPostOrderActionBody(t *testing.T) {
	client, requests := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Đã hủy đơn hàng",
			"order":   map[string]interface{}{"id": 9, "status": "CANCELED"},
		})
	})

	result, err := client.PostOrderAction(context.Background(), 9, domain.ActionCancel, map[string]string{"reason": "Đổi ý"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Order == nil || result.Order.Status != domain.OrderStatusCanceled {
		t.Errorf("Expected canceled order in result, got %+v", result.Order)
	}

	got := requests.at(0)
	if got.Method != http.MethodPost || got.Path != "/api/orders/9/cancel/" {
		t.Errorf("Expected POST /api/orders/9/cancel/, got %s %s", got.Method, got.Path)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(got.Body), &body); err != nil {
		t.Fatalf("Expected JSON body, got %q", got.Body)
	}
	if len(body) != 1 || body["reason"] != "Đổi ý" {
		t.Errorf("Expected body {reason}, got %v", body)
	}
}

func TestPostOrderActionWithoutBody(t *testing.T) {
	client, requests := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	if _, err := client.PostOrderAction(context.Background(), 3, domain.ActionComplete, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if requests.at(0).Body != "" {
		t.Errorf("Expected empty body, got %q", requests.at(0).Body)
	}
}

func TestListOrdersAcceptsBothShapes(t *testing.T) {
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   12,
			"results": []map[string]interface{}{{"id": 1}, {"id": 2}},
		})
	})
	page, err := client.ListOrders(context.Background(), OrderFilter{Status: domain.OrderStatusPending})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.Count != 12 || len(page.Results) != 2 {
		t.Errorf("Expected count 12 with 2 results, got %d/%d", page.Count, len(page.Results))
	}

	bare, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": 1}})
	})
	page, err = bare.ListOrders(context.Background(), OrderFilter{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.Count != 1 {
		t.Errorf("Expected count 1 for bare list, got %d", page.Count)
	}
}

func TestListImportNotesFiltersStatus(t *testing.T) {
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "status": "DRAFT"},
			{"id": 2, "status": "COMPLETED"},
		})
	})

	notes, err := client.ListImportNotes(context.Background(), domain.ImportNoteStatusDraft)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(notes) != 1 || notes[0].ID != 1 {
		t.Errorf("Expected only the draft note, got %+v", notes)
	}
}

func TestCompleteImportNoteDecodesEnvelope(t *testing.T) {
	client, requests := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":     "Import note completed",
			"import_note": map[string]interface{}{"id": 5, "import_number": "IMP-20261015-0001", "status": "COMPLETED"},
		})
	})

	note, err := client.CompleteImportNote(context.Background(), 5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if note.Status != domain.ImportNoteStatusCompleted || note.ImportNumber != "IMP-20261015-0001" {
		t.Errorf("Expected completed note, got %+v", note)
	}
	if requests.at(0).Path != "/api/warehouse/import-notes/5/complete/" {
		t.Errorf("Unexpected path %s", requests.at(0).Path)
	}
}

func TestClientCarriesShopSessionCookie(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		value := ""
		if ck, err := r.Cookie(ShopSessionCookie); err == nil {
			value = ck.Value
		}
		mu.Lock()
		seen = append(seen, value)
		mu.Unlock()
		if value == "" {
			http.SetCookie(w, &http.Cookie{Name: ShopSessionCookie, Value: "guest-1", Path: "/"})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "items": []interface{}{}})
	})

	var issued []string
	guest := client.WithToken("", nil).WithShopSession("", func(id string) { issued = append(issued, id) })
	ctx := context.Background()
	if _, err := guest.GetCart(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := guest.GetCart(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "" || seen[1] != "guest-1" {
		t.Errorf("Expected cookie issued on first call and sent on second, got %v", seen)
	}
	if len(issued) != 1 || issued[0] != "guest-1" {
		t.Errorf("Expected one issued cookie guest-1, got %v", issued)
	}
}

func TestClientWithoutShopSessionSendsNoCookie(t *testing.T) {
	var cookies int
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		cookies = len(r.Cookies())
		http.SetCookie(w, &http.Cookie{Name: ShopSessionCookie, Value: "ignored"})
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 1, "items": []interface{}{}})
	})

	if _, err := client.WithToken("abc", nil).GetCart(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cookies != 0 {
		t.Errorf("Expected no cookies, got %d", cookies)
	}
}
