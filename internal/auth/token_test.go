package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spotterai/spotter/internal/model"
)

func testTokens() *Tokens {
	return &Tokens{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestIssueAndParsePair(t *testing.T) {
	r := require.New(t)
	tk := testTokens()

	u := &model.User{ID: 7, Username: "alice", IsDriver: true}

	access, refresh, err := tk.IssuePair(u)
	r.NoError(err)
	r.NotEqual(access, refresh)

	claims, err := tk.Parse(access, TokenAccess)
	r.NoError(err)
	r.Equal(int64(7), claims.UID)
	r.Equal("alice", claims.Username)
	r.True(claims.IsDriver)
	r.False(claims.IsAdmin)
	r.NotEmpty(claims.ID)

	rc, err := tk.Parse(refresh, TokenRefresh)
	r.NoError(err)
	r.Equal(int64(7), rc.UID)
	r.Empty(rc.Username)
	r.NotEqual(claims.ID, rc.ID)
}

func TestParseRejectsWrongType(t *testing.T) {
	r := require.New(t)
	tk := testTokens()

	access, refresh, err := tk.IssuePair(&model.User{ID: 1})
	r.NoError(err)

	_, err = tk.Parse(refresh, TokenAccess)
	r.Error(err)

	_, err = tk.Parse(access, TokenRefresh)
	r.Error(err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	r := require.New(t)
	tk := testTokens()

	access, _, err := tk.IssuePair(&model.User{ID: 1})
	r.NoError(err)

	other := testTokens()
	other.Secret = []byte("ffffffffffffffffffffffffffffffff")

	_, err = other.Parse(access, TokenAccess)
	r.Error(err)
}

func TestParseRejectsExpired(t *testing.T) {
	r := require.New(t)
	tk := testTokens()
	tk.AccessTTL = -time.Minute

	access, _, err := tk.IssuePair(&model.User{ID: 1})
	r.NoError(err)

	_, err = tk.Parse(access, TokenAccess)
	r.Error(err)
}
