package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/spotterai/spotter/internal/model"
)

// Token types carried in the typ claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims are the JWT claims issued by the service. Access tokens carry
// the full identity; refresh tokens only the subject and jti.
type Claims struct {
	UID       int64  `json:"uid"`
	Username  string `json:"username,omitempty"`
	IsDriver  bool   `json:"is_driver,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the HS256 token pairs.
type Tokens struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair mints an access/refresh pair for the user. Each token gets a
// fresh UUID jti; the refresh jti is what the revocation store tracks.
func (t *Tokens) IssuePair(u *model.User) (access, refresh string, err error) {
	now := time.Now().UTC()

	access, err = t.sign(Claims{
		UID:       u.ID,
		Username:  u.Username,
		IsDriver:  u.IsDriver,
		IsAdmin:   u.IsAdmin,
		TokenType: TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.AccessTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}

	refresh, err = t.sign(Claims{
		UID:       u.ID,
		TokenType: TokenRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.RefreshTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

func (t *Tokens) sign(c Claims) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.Secret)

	return s, errors.Wrap(err, "sign token")
}

// Parse verifies signature, expiry and token type.
func (t *Tokens) Parse(raw, wantType string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}

	if claims.TokenType != wantType {
		return nil, errors.Errorf("token type %q, want %q", claims.TokenType, wantType)
	}

	return claims, nil
}
