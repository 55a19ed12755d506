package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// ListAddresses returns the account's saved addresses. The endpoint answers
// either a page or a bare array; every address fits on one page.
func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, PathAddresses, nil, nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[domain.Address](raw)
	if err != nil {
		return nil, &errors.ErrTransport{Err: fmt.Errorf("failed to decode address list: %w", err)}
	}
	if page.Results == nil {
		return []domain.Address{}, nil
	}
	return page.Results, nil
}

func (c *Client) GetAddress(ctx context.Context, id int64) (*domain.Address, error) {
	return c.addressCall(ctx, http.MethodGet, AddressPath(id), id, nil)
}

func (c *Client) CreateAddress(ctx context.Context, in domain.AddressInput) (*domain.Address, error) {
	var addr domain.Address
	if err := c.Do(ctx, http.MethodPost, PathAddresses, nil, in, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id int64, in domain.AddressInput) (*domain.Address, error) {
	return c.addressCall(ctx, http.MethodPatch, AddressPath(id), id, in)
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	_, err := c.addressCall(ctx, http.MethodDelete, AddressPath(id), id, nil)
	return err
}

// SetDefaultAddress makes id the default; the shop clears the previous one
func (c *Client) SetDefaultAddress(ctx context.Context, id int64) (*domain.Address, error) {
	return c.addressCall(ctx, http.MethodPost, AddressDefaultPath(id), id, nil)
}

func (c *Client) addressCall(ctx context.Context, method, path string, id int64, body interface{}) (*domain.Address, error) {
	var addr domain.Address
	var out interface{} = &addr
	if method == http.MethodDelete {
		out = nil
	}
	if err := c.Do(ctx, method, path, nil, body, out); err != nil {
		if nf, ok := err.(*errors.ErrNotFound); ok {
			nf.Resource = "address"
			nf.ID = strconv.FormatInt(id, 10)
		}
		return nil, err
	}
	return &addr, nil
}
