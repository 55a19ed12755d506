package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/config"
	"github.com/eyewearvn/storefront/internal/metrics"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// ShopSessionCookie is the shop API's session cookie. Anonymous carts hang off it.
const ShopSessionCookie = "sessionid"

// Client talks to the shop REST API. A Client is safe for concurrent use;
// WithToken derives a per-session copy sharing the same transport.
type Client struct {
	baseURL        string
	token          string
	httpClient     *http.Client
	logger         *zap.Logger
	onUnauthorized func()
	session        *shopSession
}

// shopSession carries the shop session cookie across the calls of one
// request, so a cookie issued by the first call is sent on the next.
type shopSession struct {
	mu       sync.Mutex
	id       string
	onIssued func(id string)
}

func (s *shopSession) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *shopSession) capture(cookies []*http.Cookie) {
	for _, ck := range cookies {
		if ck.Name != ShopSessionCookie || ck.Value == "" {
			continue
		}
		s.mu.Lock()
		changed := ck.Value != s.id
		s.id = ck.Value
		s.mu.Unlock()
		if changed && s.onIssued != nil {
			s.onIssued(ck.Value)
		}
	}
}

// NewClient creates a new shop API client
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewClientWithHTTP creates a client on top of an existing http.Client
func NewClientWithHTTP(cfg config.BackendConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// WithToken returns a copy authenticated with token. onUnauthorized, when
// non-nil, runs whenever the API answers 401 so the caller can drop its credentials.
func (c *Client) WithToken(token string, onUnauthorized func()) *Client {
	cp := *c
	cp.token = token
	cp.onUnauthorized = onUnauthorized
	return &cp
}

// WithShopSession returns a copy that sends the shop session cookie id, when
// set, and reports any new cookie the shop issues through onIssued.
func (c *Client) WithShopSession(id string, onIssued func(id string)) *Client {
	cp := *c
	cp.session = &shopSession{id: id, onIssued: onIssued}
	return &cp
}

// Authenticated reports whether the client carries a token
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Do sends one request and decodes a 2xx body into out. It never retries.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	if c.session != nil {
		if id := c.session.current(); id != "" {
			req.AddCookie(&http.Cookie{Name: ShopSessionCookie, Value: id})
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendCall(method, path, "transport_error", time.Since(start))
		c.logger.Warn("Shop API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &errors.ErrTransport{Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()
	if c.session != nil {
		c.session.capture(resp.Cookies())
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordBackendCall(method, path, "transport_error", time.Since(start))
		return &errors.ErrTransport{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	metrics.RecordBackendCall(method, path, outcomeOf(resp.StatusCode), time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info("Shop API rejected token, clearing session auth", zap.String("path", path))
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &errors.ErrUnauthorized{Message: detailOf(respBody)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, path, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &errors.ErrTransport{Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	return nil
}

func outcomeOf(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "ok"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status >= 500:
		return "server_error"
	default:
		return "rejected"
	}
}

// decodeError maps a non-2xx response onto the error taxonomy.
// Bodies carrying error/message/detail are business rules whatever the
// status, field maps are validation errors, anything else from a 5xx or an
// unreadable body is a transport failure.
func decodeError(status int, path string, body []byte) error {
	if status == http.StatusNotFound {
		return &errors.ErrNotFound{Resource: "resource", ID: path}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return &errors.ErrTransport{Err: fmt.Errorf("shop API error: status %d, body: %s", status, truncate(body))}
	}

	for _, key := range []string{"error", "message", "detail"} {
		if msg := stringField(payload, key); msg != "" {
			return &errors.ErrBusinessRule{Status: status, Message: msg}
		}
	}
	if status >= 500 {
		return &errors.ErrTransport{Err: fmt.Errorf("shop API error: status %d, body: %s", status, truncate(body))}
	}

	fields := map[string][]string{}
	var summary string
	for key, raw := range payload {
		msgs := messagesOf(raw)
		if len(msgs) == 0 {
			continue
		}
		if key == "non_field_errors" {
			summary = strings.Join(msgs, " ")
			continue
		}
		fields[key] = msgs
	}
	if len(fields) == 0 && summary != "" {
		return &errors.ErrBusinessRule{Status: status, Message: summary}
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Fields: fields, Message: summary}
	}

	return &errors.ErrBusinessRule{Status: status}
}

func stringField(payload map[string]json.RawMessage, key string) string {
	raw, ok := payload[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// messagesOf accepts "msg", ["msg", ...] and nested {"field": ["msg"]} shapes
func messagesOf(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, item := range list {
			out = append(out, messagesOf(item)...)
		}
		return out
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		var out []string
		for _, v := range nested {
			out = append(out, messagesOf(v)...)
		}
		return out
	}
	return nil
}

func detailOf(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := stringField(payload, "detail"); msg != "" {
		return msg
	}
	return stringField(payload, "error")
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
