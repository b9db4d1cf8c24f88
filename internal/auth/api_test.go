package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/database"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.Open("file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	revoked, err := auth.OpenRevocationStore(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { revoked.Close() })

	rs := &auth.Resource{
		DB: db,
		Tokens: &auth.Tokens{
			Secret:     []byte("0123456789abcdef0123456789abcdef"),
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Revoked: revoked,
		Log:     zap.NewNop().Sugar(),
	}

	ts := httptest.NewServer(rs.Routes())
	t.Cleanup(ts.Close)

	return ts
}

func post(t *testing.T, ts *httptest.Server, path, token string, body, out interface{}) int {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}

	return res.StatusCode
}

func registerAlice(t *testing.T, ts *httptest.Server) {
	t.Helper()

	code := post(t, ts, "/register", "", map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "swordfish9",
	}, nil)
	require.Equal(t, http.StatusCreated, code)
}

func TestRegister(t *testing.T) {
	r := require.New(t)
	ts := testServer(t)

	var profile struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		IsDriver bool   `json:"is_driver"`
	}

	code := post(t, ts, "/register", "", map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "swordfish9",
	}, &profile)
	r.Equal(http.StatusCreated, code)
	r.NotZero(profile.ID)
	r.Equal("alice", profile.Username)
	r.True(profile.IsDriver)

	// Same username again.
	code = post(t, ts, "/register", "", map[string]interface{}{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "swordfish9",
	}, nil)
	r.Equal(http.StatusConflict, code)

	// Password too short.
	code = post(t, ts, "/register", "", map[string]interface{}{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "short",
	}, nil)
	r.Equal(http.StatusBadRequest, code)
}

func TestLogin(t *testing.T) {
	r := require.New(t)
	ts := testServer(t)
	registerAlice(t, ts)

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	code := post(t, ts, "/login", "", map[string]string{
		"username": "alice",
		"password": "swordfish9",
	}, &pair)
	r.Equal(http.StatusOK, code)
	r.NotEmpty(pair.Access)
	r.NotEmpty(pair.Refresh)

	code = post(t, ts, "/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	r.Equal(http.StatusUnauthorized, code)

	code = post(t, ts, "/login", "", map[string]string{
		"username": "nobody",
		"password": "swordfish9",
	}, nil)
	r.Equal(http.StatusUnauthorized, code)
}

func TestRefreshRotation(t *testing.T) {
	r := require.New(t)
	ts := testServer(t)
	registerAlice(t, ts)

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	code := post(t, ts, "/login", "", map[string]string{
		"username": "alice",
		"password": "swordfish9",
	}, &pair)
	r.Equal(http.StatusOK, code)

	first := pair.Refresh

	var next struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	code = post(t, ts, "/refresh", "", map[string]string{"refresh": first}, &next)
	r.Equal(http.StatusOK, code)
	r.NotEmpty(next.Access)
	r.NotEqual(first, next.Refresh)

	// The presented token is single-use.
	code = post(t, ts, "/refresh", "", map[string]string{"refresh": first}, nil)
	r.Equal(http.StatusUnauthorized, code)

	// The rotated one still works.
	code = post(t, ts, "/refresh", "", map[string]string{"refresh": next.Refresh}, nil)
	r.Equal(http.StatusOK, code)

	// An access token is not a refresh token.
	code = post(t, ts, "/refresh", "", map[string]string{"refresh": next.Access}, nil)
	r.Equal(http.StatusUnauthorized, code)
}

func TestMe(t *testing.T) {
	r := require.New(t)
	ts := testServer(t)
	registerAlice(t, ts)

	var pair struct {
		Access string `json:"access"`
	}

	code := post(t, ts, "/login", "", map[string]string{
		"username": "alice",
		"password": "swordfish9",
	}, &pair)
	r.Equal(http.StatusOK, code)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/me", nil)
	r.NoError(err)
	req.Header.Set("Authorization", "Bearer "+pair.Access)

	res, err := ts.Client().Do(req)
	r.NoError(err)
	defer res.Body.Close()
	r.Equal(http.StatusOK, res.StatusCode)

	var profile struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	r.NoError(json.NewDecoder(res.Body).Decode(&profile))
	r.Equal("alice", profile.Username)
	r.Equal("alice@example.com", profile.Email)

	// No token, no profile.
	res, err = ts.Client().Get(ts.URL + "/me")
	r.NoError(err)
	res.Body.Close()
	r.Equal(http.StatusUnauthorized, res.StatusCode)
}
