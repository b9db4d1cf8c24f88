package auth

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var revokedBucket = []byte("revoked")

const sweepInterval = time.Hour

// RevocationStore is the bbolt-backed set of burned refresh-token jtis.
// A refresh token is single-use: presenting one revokes its jti, and a
// revoked jti is refused from then on. A background sweeper drops entries
// whose tokens have expired anyway.
type RevocationStore struct {
	db   *bolt.DB
	done chan struct{}
}

// OpenRevocationStore opens (or creates) the store at path and starts
// the sweeper.
func OpenRevocationStore(path string) (*RevocationStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open token store %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(revokedBucket)

		return err
	})
	if err != nil {
		db.Close()

		return nil, errors.Wrap(err, "create revoked bucket")
	}

	s := &RevocationStore{
		db:   db,
		done: make(chan struct{}),
	}

	go s.sweepLoop()

	return s, nil
}

// Revoke records the jti with the token's expiry, after which the entry
// is garbage.
func (s *RevocationStore) Revoke(jti string, expiresAt time.Time) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		var v [8]byte

		binary.BigEndian.PutUint64(v[:], uint64(expiresAt.Unix()))

		return tx.Bucket(revokedBucket).Put([]byte(jti), v[:])
	})

	return errors.Wrap(err, "revoke token")
}

// IsRevoked reports whether the jti has been burned.
func (s *RevocationStore) IsRevoked(jti string) (bool, error) {
	var revoked bool

	err := s.db.View(func(tx *bolt.Tx) error {
		revoked = tx.Bucket(revokedBucket).Get([]byte(jti)) != nil

		return nil
	})

	return revoked, errors.Wrap(err, "check token")
}

// Close stops the sweeper and closes the database.
func (s *RevocationStore) Close() error {
	close(s.done)

	return s.db.Close()
}

func (s *RevocationStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep removes entries whose expiry has passed; an expired token fails
// signature validation regardless, so the record is dead weight.
func (s *RevocationStore) sweep(now time.Time) {
	// nolint
	s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(revokedBucket).Cursor()

		cutoff := uint64(now.Unix())

		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) == 8 && binary.BigEndian.Uint64(v) < cutoff {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}

		return nil
	})
}
