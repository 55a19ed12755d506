package backend

import (
	"context"
	"net/http"

	"github.com/eyewearvn/storefront/internal/domain"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the body of a successful login
type LoginResult struct {
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
	Message string      `json:"message,omitempty"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	if err := c.Do(ctx, http.MethodPost, PathLogin, nil, creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, PathLogout, nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.Do(ctx, http.MethodGet, PathMe, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
