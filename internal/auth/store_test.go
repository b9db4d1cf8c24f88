package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *RevocationStore {
	t.Helper()

	s, err := OpenRevocationStore(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestRevokeAndCheck(t *testing.T) {
	r := require.New(t)
	s := testStore(t)

	revoked, err := s.IsRevoked("jti-1")
	r.NoError(err)
	r.False(revoked)

	r.NoError(s.Revoke("jti-1", time.Now().Add(time.Hour)))

	revoked, err = s.IsRevoked("jti-1")
	r.NoError(err)
	r.True(revoked)

	revoked, err = s.IsRevoked("jti-2")
	r.NoError(err)
	r.False(revoked)
}

func TestSweepDropsExpired(t *testing.T) {
	r := require.New(t)
	s := testStore(t)

	now := time.Now()

	r.NoError(s.Revoke("stale", now.Add(-time.Minute)))
	r.NoError(s.Revoke("live", now.Add(time.Hour)))

	s.sweep(now)

	revoked, err := s.IsRevoked("stale")
	r.NoError(err)
	r.False(revoked)

	revoked, err = s.IsRevoked("live")
	r.NoError(err)
	r.True(revoked)
}

func TestStoreSurvivesReopen(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "tokens.db")

	s, err := OpenRevocationStore(path)
	r.NoError(err)
	r.NoError(s.Revoke("jti-1", time.Now().Add(time.Hour)))
	r.NoError(s.Close())

	s, err = OpenRevocationStore(path)
	r.NoError(err)
	defer s.Close()

	revoked, err := s.IsRevoked("jti-1")
	r.NoError(err)
	r.True(revoked)
}
