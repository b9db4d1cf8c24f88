package client

import (
	"net/http"
	"time"
)

// User is the public profile the API returns.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsDriver  bool   `json:"is_driver"`
	IsAdmin   bool   `json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenPair is an access/refresh pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterParams creates an account.
type RegisterParams struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsDriver  *bool  `json:"is_driver,omitempty"`
}

func (c *Client) Register(params RegisterParams) (*User, error) {
	u := &User{}
	if err := c.call(http.MethodPost, "/api/auth/register", params, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login obtains a token pair and installs the access token on the
// client.
func (c *Client) Login(username, password string) (*TokenPair, error) {
	pair := &TokenPair{}

	in := map[string]string{"username": username, "password": password}
	if err := c.call(http.MethodPost, "/api/auth/login", in, pair); err != nil {
		return nil, err
	}

	c.Token = pair.Access

	return pair, nil
}

// Refresh rotates the refresh token and installs the new access token.
func (c *Client) Refresh(refresh string) (*TokenPair, error) {
	pair := &TokenPair{}

	in := map[string]string{"refresh": refresh}
	if err := c.call(http.MethodPost, "/api/auth/refresh", in, pair); err != nil {
		return nil, err
	}

	c.Token = pair.Access

	return pair, nil
}

func (c *Client) Me() (*User, error) {
	u := &User{}
	if err := c.call(http.MethodGet, "/api/auth/me", nil, u); err != nil {
		return nil, err
	}

	return u, nil
}
