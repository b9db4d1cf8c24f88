package auth

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/spotterai/spotter/internal/model"
)

const minPasswordLen = 8

// RegisterRequest is the request payload for account creation.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsDriver  *bool  `json:"is_driver"`
}

func (p *RegisterRequest) Bind(r *http.Request) error {
	if p.Username == "" {
		return errors.New("username is required")
	}

	if p.Email == "" {
		return errors.New("email is required")
	}

	if len(p.Password) < minPasswordLen {
		return errors.Errorf("password must be at least %d characters", minPasswordLen)
	}

	return nil
}

// LoginRequest is the request payload for credential login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p *LoginRequest) Bind(r *http.Request) error {
	if p.Username == "" || p.Password == "" {
		return errors.New("username and password are required")
	}

	return nil
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (p *RefreshRequest) Bind(r *http.Request) error {
	if p.Refresh == "" {
		return errors.New("refresh token is required")
	}

	return nil
}

// TokenResponse is the issued pair, in the shape login clients expect.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (p *TokenResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// UserResponse is the public profile; the embedded model never exposes
// the password hash.
type UserResponse struct {
	*model.User
}

func NewUserResponse(u *model.User) *UserResponse {
	return &UserResponse{User: u}
}

func (p *UserResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
